package services

import (
	"context"
	"time"

	"github.com/theratreat/therabook-backend/internal/database"
	"github.com/theratreat/therabook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	UsersCollection             = "users"
	TherapistProfilesCollection = "therapist_profiles"
	BookingsCollection          = "bookings"
)

// MongoStore implements TherapistStore and BookingStore on top of the
// shared database handle.
type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func (m *MongoStore) FindProfileByID(ctx context.Context, id primitive.ObjectID) (*models.TherapistProfile, error) {
	var profile models.TherapistProfile
	err := database.DB.Collection(TherapistProfilesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (m *MongoStore) FindProfileByUserID(ctx context.Context, userID primitive.ObjectID) (*models.TherapistProfile, error) {
	var profile models.TherapistProfile
	err := database.DB.Collection(TherapistProfilesCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (m *MongoStore) FindTherapistUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := database.DB.Collection(UsersCollection).FindOne(ctx, bson.M{"_id": id, "role": models.RoleTherapist}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// activeBookingFilter matches active bookings for a therapist on a date.
// Older documents stored only the YYYY-MM-DD label, so both the
// normalized range and the legacy string shape are matched.
func activeBookingFilter(therapistID primitive.ObjectID, date time.Time) bson.M {
	return bson.M{
		"therapist_id": therapistID,
		"status":       bson.M{"$in": models.ActiveBookingStatuses},
		"$or": []bson.M{
			{"appointment_date": bson.M{"$gte": date, "$lt": date.Add(24 * time.Hour)}},
			{"appointment_date_label": date.Format("2006-01-02")},
		},
	}
}

func (m *MongoStore) FindActiveBookings(ctx context.Context, therapistID primitive.ObjectID, date time.Time) ([]models.Booking, error) {
	cursor, err := database.DB.Collection(BookingsCollection).Find(ctx, activeBookingFilter(therapistID, date))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (m *MongoStore) FindActiveBookingAt(ctx context.Context, therapistID primitive.ObjectID, date time.Time, timeLabel string) (*models.Booking, error) {
	filter := activeBookingFilter(therapistID, date)
	filter["appointment_time"] = timeLabel

	var booking models.Booking
	err := database.DB.Collection(BookingsCollection).FindOne(ctx, filter).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (m *MongoStore) FindBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := database.DB.Collection(BookingsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (m *MongoStore) InsertBooking(ctx context.Context, booking *models.Booking) error {
	_, err := database.DB.Collection(BookingsCollection).InsertOne(ctx, booking)
	return err
}

func (m *MongoStore) UpdateBookingStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := database.DB.Collection(BookingsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	return err
}

func (m *MongoStore) ListBookings(ctx context.Context, filter BookingListFilter) ([]models.Booking, int64, error) {
	query := bson.M{}
	if filter.PatientID != nil {
		query["patient_id"] = *filter.PatientID
	}
	if filter.TherapistID != nil {
		query["therapist_id"] = *filter.TherapistID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	col := database.DB.Collection(BookingsCollection)

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}
