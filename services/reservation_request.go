package services

import (
	"strings"
	"time"

	"reservation-backend/models"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = validator.New()

// ReservationRequest is one public booking request. Exactly one of the item
// blocks is set, matching ItemType.
type ReservationRequest struct {
	ItemType        string
	Guest           GuestInfo
	SpecialRequests string
	Source          string

	Accommodation *AccommodationRequest
	Activity      *ActivityRequest
	Package       *PackageRequest
	Shuttle       *ShuttleRequest
}

type AccommodationRequest struct {
	HotelID    uint
	RoomTypeID uint
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   int
}

type ActivityRequest struct {
	ActivityID       uint
	ScheduleID       uint
	Participants     int
	ParticipantNames []string
	EmergencyContact string
	EmergencyPhone   string
}

type PackageRequest struct {
	PackageID        uint
	StartDate        time.Time
	EndDate          time.Time
	Participants     int
	ParticipantNames []string
}

// ShuttleRequest books seats on a route. Date and departure time describe a
// single service, so no date range applies.
type ShuttleRequest struct {
	RouteID       uint
	Date          time.Time
	DepartureTime string
	Passengers    int
}

// Validate checks the fields of the item block. Guest details are checked
// separately by ValidateGuest because quotes carry no guest.
func (r ReservationRequest) Validate() error {
	switch normalizeItemType(r.ItemType) {
	case models.ItemTypeAccommodation:
		if r.Accommodation == nil {
			return validationError("accommodation details are required")
		}
		return r.Accommodation.validate()
	case models.ItemTypeActivity:
		if r.Activity == nil {
			return validationError("activity details are required")
		}
		return r.Activity.validate()
	case models.ItemTypePackage:
		if r.Package == nil {
			return validationError("package details are required")
		}
		return r.Package.validate()
	case models.ItemTypeShuttle:
		if r.Shuttle == nil {
			return validationError("shuttle details are required")
		}
		return r.Shuttle.validate()
	case "":
		return validationError("itemType is required")
	default:
		return validationError("unsupported itemType %q", r.ItemType)
	}
}

func (r ReservationRequest) ValidateGuest() error {
	g := r.Guest
	var missing []string
	if strings.TrimSpace(g.FirstName) == "" {
		missing = append(missing, "firstName")
	}
	if strings.TrimSpace(g.LastName) == "" {
		missing = append(missing, "lastName")
	}
	if strings.TrimSpace(g.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(g.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return validationError("missing guest fields: %s", strings.Join(missing, ", "))
	}
	if err := fieldValidator.Var(strings.TrimSpace(g.Email), "email"); err != nil {
		return validationError("invalid guest email %q", g.Email)
	}
	return nil
}

func (a *AccommodationRequest) validate() error {
	var missing []string
	if a.HotelID == 0 {
		missing = append(missing, "hotelId")
	}
	if a.RoomTypeID == 0 {
		missing = append(missing, "roomTypeId")
	}
	if a.CheckIn.IsZero() {
		missing = append(missing, "checkInDate")
	}
	if a.CheckOut.IsZero() {
		missing = append(missing, "checkOutDate")
	}
	if len(missing) > 0 {
		return validationError("missing accommodation fields: %s", strings.Join(missing, ", "))
	}
	if !a.CheckOut.After(a.CheckIn) {
		return validationError("checkOutDate must be after checkInDate")
	}
	if a.Adults < 1 {
		return validationError("at least one adult is required")
	}
	if a.Children < 0 {
		return validationError("children cannot be negative")
	}
	return nil
}

func (a *ActivityRequest) validate() error {
	var missing []string
	if a.ActivityID == 0 {
		missing = append(missing, "activityId")
	}
	if a.ScheduleID == 0 {
		missing = append(missing, "scheduleId")
	}
	if len(missing) > 0 {
		return validationError("missing activity fields: %s", strings.Join(missing, ", "))
	}
	if a.Participants < 1 {
		return validationError("participants must be at least 1")
	}
	if len(a.ParticipantNames) > a.Participants {
		return validationError("more participant names than participants")
	}
	return nil
}

func (p *PackageRequest) validate() error {
	var missing []string
	if p.PackageID == 0 {
		missing = append(missing, "packageId")
	}
	if p.StartDate.IsZero() {
		missing = append(missing, "startDate")
	}
	if p.EndDate.IsZero() {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return validationError("missing package fields: %s", strings.Join(missing, ", "))
	}
	if p.EndDate.Before(p.StartDate) {
		return validationError("endDate must not be before startDate")
	}
	if p.Participants < 1 {
		return validationError("participants must be at least 1")
	}
	if len(p.ParticipantNames) > p.Participants {
		return validationError("more participant names than participants")
	}
	return nil
}

func (s *ShuttleRequest) validate() error {
	var missing []string
	if s.RouteID == 0 {
		missing = append(missing, "shuttleRouteId")
	}
	if s.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(s.DepartureTime) == "" {
		missing = append(missing, "departureTime")
	}
	if len(missing) > 0 {
		return validationError("missing shuttle fields: %s", strings.Join(missing, ", "))
	}
	if _, err := time.Parse("15:04", strings.TrimSpace(s.DepartureTime)); err != nil {
		return validationError("departureTime must be HH:MM")
	}
	if s.Passengers < 1 {
		return validationError("passengers must be at least 1")
	}
	return nil
}

func normalizeItemType(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
