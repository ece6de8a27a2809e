package controllers

import (
	"fmt"
	"strings"
	"time"

	"reservation-backend/models"
	"reservation-backend/services"
	"reservation-backend/utils"
)

type GuestInfoPayload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Nationality string `json:"nationality"`
}

// ReservationPayload is the flat public booking body. Which fields are read
// depends on itemType.
type ReservationPayload struct {
	ItemType        string           `json:"itemType" binding:"required"`
	GuestInfo       GuestInfoPayload `json:"guestInfo"`
	SpecialRequests string           `json:"specialRequests"`

	HotelID      uint   `json:"hotelId"`
	RoomTypeID   uint   `json:"roomTypeId"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Adults       int    `json:"adults" binding:"min=0"`
	Children     int    `json:"children" binding:"min=0"`

	ActivityID       uint     `json:"activityId"`
	ScheduleID       uint     `json:"scheduleId"`
	Participants     int      `json:"participants" binding:"min=0"`
	ParticipantNames []string `json:"participantNames"`
	EmergencyContact string   `json:"emergencyContact"`
	EmergencyPhone   string   `json:"emergencyPhone"`

	PackageID uint   `json:"packageId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	ShuttleRouteID uint   `json:"shuttleRouteId"`
	Date           string `json:"date"`
	DepartureTime  string `json:"departureTime"`
	Passengers     int    `json:"passengers" binding:"min=0"`
}

// optionalDate parses a date field; blank stays zero so the service reports
// it as missing.
func optionalDate(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

// ToRequest maps the payload onto a service request of the public source.
func (p ReservationPayload) ToRequest() (services.ReservationRequest, error) {
	req := services.ReservationRequest{
		ItemType: strings.ToUpper(strings.TrimSpace(p.ItemType)),
		Guest: services.GuestInfo{
			FirstName:   p.GuestInfo.FirstName,
			LastName:    p.GuestInfo.LastName,
			Email:       p.GuestInfo.Email,
			Phone:       p.GuestInfo.Phone,
			Nationality: p.GuestInfo.Nationality,
		},
		SpecialRequests: p.SpecialRequests,
		Source:          models.SourcePublic,
	}

	var err error
	switch req.ItemType {
	case models.ItemTypeAccommodation:
		a := &services.AccommodationRequest{
			HotelID:    p.HotelID,
			RoomTypeID: p.RoomTypeID,
			Adults:     p.Adults,
			Children:   p.Children,
		}
		if a.CheckIn, err = optionalDate("checkInDate", p.CheckInDate); err != nil {
			return req, err
		}
		if a.CheckOut, err = optionalDate("checkOutDate", p.CheckOutDate); err != nil {
			return req, err
		}
		req.Accommodation = a
	case models.ItemTypeActivity:
		req.Activity = &services.ActivityRequest{
			ActivityID:       p.ActivityID,
			ScheduleID:       p.ScheduleID,
			Participants:     p.Participants,
			ParticipantNames: p.ParticipantNames,
			EmergencyContact: p.EmergencyContact,
			EmergencyPhone:   p.EmergencyPhone,
		}
	case models.ItemTypePackage:
		pk := &services.PackageRequest{
			PackageID:        p.PackageID,
			Participants:     p.Participants,
			ParticipantNames: p.ParticipantNames,
		}
		if pk.StartDate, err = optionalDate("startDate", p.StartDate); err != nil {
			return req, err
		}
		if pk.EndDate, err = optionalDate("endDate", p.EndDate); err != nil {
			return req, err
		}
		req.Package = pk
	case models.ItemTypeShuttle:
		s := &services.ShuttleRequest{
			RouteID:       p.ShuttleRouteID,
			DepartureTime: p.DepartureTime,
			Passengers:    p.Passengers,
		}
		if s.Date, err = optionalDate("date", p.Date); err != nil {
			return req, err
		}
		req.Shuttle = s
	}
	return req, nil
}

type ReservationCreatedResponse struct {
	Success            bool                        `json:"success"`
	ReservationID      uint                        `json:"reservationId"`
	ConfirmationNumber string                      `json:"confirmationNumber"`
	Message            string                      `json:"message"`
	Status             string                      `json:"status"`
	TotalAmount        string                      `json:"totalAmount"`
	Currency           string                      `json:"currency"`
	Components         *services.PackageComponents `json:"components,omitempty"`
}

type AvailabilityResponse struct {
	Success        bool   `json:"success"`
	Available      bool   `json:"available"`
	Reason         string `json:"reason,omitempty"`
	EstimatedTotal string `json:"estimatedTotal"`
	Currency       string `json:"currency"`
}

type ReservationItemResponse struct {
	ID           uint        `json:"id"`
	ParentItemID *uint       `json:"parentItemId,omitempty"`
	ItemType     string      `json:"itemType"`
	Title        string      `json:"title"`
	Quantity     int         `json:"quantity"`
	UnitPrice    string      `json:"unitPrice"`
	Amount       string      `json:"amount"`
	Currency     string      `json:"currency"`
	Meta         interface{} `json:"meta,omitempty"`
}

type ReservationLookupResponse struct {
	Success            bool                      `json:"success"`
	ConfirmationNumber string                    `json:"confirmationNumber"`
	Status             string                    `json:"status"`
	PaymentStatus      string                    `json:"paymentStatus"`
	GuestName          string                    `json:"guestName"`
	GuestEmail         string                    `json:"guestEmail"`
	CheckInDate        string                    `json:"checkInDate"`
	CheckOutDate       string                    `json:"checkOutDate"`
	TotalAmount        string                    `json:"totalAmount"`
	Currency           string                    `json:"currency"`
	SpecialRequests    string                    `json:"specialRequests,omitempty"`
	Items              []ReservationItemResponse `json:"items"`
}

func newLookupResponse(v *services.ReservationView) ReservationLookupResponse {
	r := v.Reservation
	out := ReservationLookupResponse{
		Success:            true,
		ConfirmationNumber: r.ConfirmationNumber,
		Status:             r.Status,
		PaymentStatus:      r.PaymentStatus,
		GuestName:          r.Guest.FullName(),
		GuestEmail:         utils.MaskEmail(r.Guest.Email),
		CheckInDate:        utils.FormatDate(r.CheckInDate),
		CheckOutDate:       utils.FormatDate(r.CheckOutDate),
		TotalAmount:        r.TotalAmount.StringFixed(2),
		Currency:           r.Currency,
		SpecialRequests:    r.SpecialRequests,
		Items:              make([]ReservationItemResponse, 0, len(v.Items)),
	}
	for _, it := range v.Items {
		out.Items = append(out.Items, ReservationItemResponse{
			ID:           it.Item.ID,
			ParentItemID: it.Item.ParentItemID,
			ItemType:     it.Item.ItemType,
			Title:        it.Item.Title,
			Quantity:     it.Item.Quantity,
			UnitPrice:    it.Item.UnitPrice.StringFixed(2),
			Amount:       it.Item.Amount.StringFixed(2),
			Currency:     it.Item.Currency,
			Meta:         it.Meta,
		})
	}
	return out
}
