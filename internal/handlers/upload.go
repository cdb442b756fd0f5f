package handlers

import (
	"net/http"

	"github.com/theratreat/therabook-backend/internal/config"
	"github.com/theratreat/therabook-backend/internal/services"
)

var cloudinaryService *services.CloudinaryService

// InitCloudinaryService constructs the upload client once at startup.
func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

// Folders documents are allowed into; anything else falls back to the default.
var uploadFolders = map[string]string{
	"license": "therabook/licenses",
	"degree":  "therabook/degrees",
}

// UploadDocument handles therapist verification document uploads.
func UploadDocument(w http.ResponseWriter, r *http.Request) {
	if cloudinaryService == nil {
		writeError(w, http.StatusServiceUnavailable, "Document uploads are not available")
		return
	}

	// Max 10MB
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided: "+err.Error())
		return
	}
	defer file.Close()

	folder, ok := uploadFolders[r.URL.Query().Get("kind")]
	if !ok {
		folder = "therabook/documents"
	}

	url, err := cloudinaryService.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upload file: "+err.Error())
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{"url": url})
}
