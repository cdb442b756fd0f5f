package services

import (
	"context"
	"sort"
	"time"

	"github.com/theratreat/therabook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDailySlots is the fallback schedule used when a therapist has no
// configured entry for a weekday: hourly slots from 09:00 through 18:00.
var DefaultDailySlots = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00", "18:00",
}

// AvailabilitySlot is one entry of the computed availability for a date.
type AvailabilitySlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// BookingReader is the read side of booking persistence the calculator needs.
type BookingReader interface {
	FindActiveBookings(ctx context.Context, therapistID primitive.ObjectID, date time.Time) ([]models.Booking, error)
}

// AvailabilityService computes per-date slot availability for a therapist.
type AvailabilityService struct {
	resolver *TherapistResolver
	bookings BookingReader
}

func NewAvailabilityService(resolver *TherapistResolver, bookings BookingReader) *AvailabilityService {
	return &AvailabilityService{resolver: resolver, bookings: bookings}
}

// ForDate resolves the therapist and returns the ordered availability for
// the given date string. The date is validated before any lookup happens,
// so a malformed date never touches the database.
func (s *AvailabilityService) ForDate(ctx context.Context, therapistID, dateStr string) ([]AvailabilitySlot, error) {
	date, err := ParseAppointmentDate(dateStr)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, therapistID)
	if err != nil {
		return nil, err
	}

	booked, err := s.bookings.FindActiveBookings(ctx, resolved.UserID, date)
	if err != nil {
		return nil, err
	}

	bookedTimes := make(map[string]bool, len(booked))
	for _, b := range booked {
		bookedTimes[b.AppointmentTime] = true
	}

	return SlotsForDay(resolved.WeeklyAvailability, date.Weekday().String(), bookedTimes), nil
}

// SlotsForDay derives the candidate slots for a weekday from the configured
// weekly schedule (falling back to DefaultDailySlots) and marks a slot
// unavailable iff its time label exactly matches a booked label. The result
// is sorted ascending by label; labels are zero-padded HH:MM so the
// lexicographic order is chronological.
func SlotsForDay(weekly []models.DayAvailability, weekday string, bookedTimes map[string]bool) []AvailabilitySlot {
	var candidates []string
	configured := false
	for _, day := range weekly {
		if day.Day != weekday {
			continue
		}
		if len(day.Slots) > 0 {
			configured = true
		}
		for _, slot := range day.Slots {
			// Slots explicitly marked unavailable are not offered at all.
			if slot.Available {
				candidates = append(candidates, slot.Time)
			}
		}
		break
	}
	// Absent or empty schedule falls back to business hours; a configured
	// day with every slot switched off stays empty.
	if !configured {
		candidates = append(candidates, DefaultDailySlots...)
	}

	slots := make([]AvailabilitySlot, 0, len(candidates))
	for _, t := range candidates {
		slots = append(slots, AvailabilitySlot{
			Time:      t,
			Available: !bookedTimes[t],
		})
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots
}

// ParseAppointmentDate accepts YYYY-MM-DD or a full RFC3339 timestamp and
// normalizes to UTC midnight. Anything else is rejected.
func ParseAppointmentDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC().Truncate(24 * time.Hour), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrInvalidDate
}
