package services

import (
	"context"

	"github.com/theratreat/therabook-backend/internal/database"
	"github.com/theratreat/therabook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes configures the MongoDB indexes the booking path relies on.
// Called on startup from main after Mongo has connected.
//
// The partial unique index on (therapist_id, appointment_date,
// appointment_time) for active statuses is what actually guarantees "at
// most one active booking per slot"; the application-level conflict check
// only exists for the friendly error message.
func EnsureIndexes(ctx context.Context) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
	}
	if err := createIndexes(ctx, UsersCollection, userIndexes); err != nil {
		return err
	}

	profileIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user_id_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "is_approved", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_approved_created"),
		},
	}
	if err := createIndexes(ctx, TherapistProfilesCollection, profileIndexes); err != nil {
		return err
	}

	bookingIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "therapist_id", Value: 1},
				{Key: "appointment_date", Value: 1},
				{Key: "appointment_time", Value: 1},
			},
			Options: options.Index().
				SetName("idx_active_slot_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": models.ActiveBookingStatuses},
				}),
		},
		{
			Keys: bson.D{
				{Key: "patient_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_patient_created"),
		},
		{
			Keys: bson.D{
				{Key: "therapist_id", Value: 1},
				{Key: "appointment_date_label", Value: 1},
			},
			Options: options.Index().SetName("idx_therapist_date_label"),
		},
	}
	return createIndexes(ctx, BookingsCollection, bookingIndexes)
}

func createIndexes(ctx context.Context, collection string, indexes []mongo.IndexModel) error {
	col := database.DB.Collection(collection)
	for _, m := range indexes {
		if _, err := col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
