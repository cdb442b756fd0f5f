package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/theratreat/therabook-backend/internal/handlers"
	"github.com/theratreat/therabook-backend/internal/middleware"
	"github.com/theratreat/therabook-backend/internal/models"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.With(middleware.RequireAuth).Get("/api/auth/me", handlers.GetMe)

	// Public therapist directory and availability
	r.Get("/api/therapists", handlers.ListTherapists)
	r.Get("/api/therapists/{id}", handlers.GetTherapist)
	r.Get("/api/therapists/{id}/availability", handlers.GetTherapistAvailability)

	// Therapist onboarding (therapist role)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireRole(models.RoleTherapist))
		r.Post("/api/therapist/onboarding", handlers.SubmitOnboarding)
		r.Get("/api/therapist/onboarding/status", handlers.GetOnboardingStatus)
		r.Post("/api/upload", handlers.UploadDocument)
	})

	// Bookings
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(middleware.RequireRole(models.RolePatient)).Post("/api/bookings", handlers.CreateBooking)
		r.Get("/api/bookings", handlers.ListBookings)
		r.Put("/api/bookings/{id}/confirm", handlers.ConfirmBooking)
		r.Put("/api/bookings/{id}/cancel", handlers.CancelBooking)
		r.Put("/api/bookings/{id}/complete", handlers.CompleteBooking)
	})

	// Admin review routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth, middleware.RequireRole(models.RoleAdmin))
		r.Get("/api/admin/therapists/pending", handlers.GetPendingTherapists)
		r.Get("/api/admin/therapists/approved", handlers.GetApprovedTherapists)
		r.Put("/api/admin/therapists/approve", handlers.ApproveTherapist)
		r.Delete("/api/admin/therapists/reject", handlers.RejectTherapist)
		r.Get("/api/admin/violations", handlers.GetViolations)
		r.Put("/api/admin/unblock-ip", handlers.UnblockIP)
	})

	// WebSocket endpoint for real-time booking updates
	r.Get("/ws/bookings", handlers.BookingUpdatesWS)
}
