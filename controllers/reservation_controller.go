// controllers/reservation_controller.go
package controllers

import (
	"context"
	"net/http"

	"reservation-backend/services"
	"reservation-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReservationBooker is the booking surface the public endpoints need.
type ReservationBooker interface {
	Create(ctx context.Context, req services.ReservationRequest) (*services.ReservationResult, error)
	Quote(ctx context.Context, req services.ReservationRequest) (services.Quote, error)
	GetByConfirmationNumber(ctx context.Context, code string) (*services.ReservationView, error)
}

type ReservationController struct {
	Svc    ReservationBooker
	Errors *utils.ErrorMapper
}

func NewReservationController(svc ReservationBooker) *ReservationController {
	return &ReservationController{Svc: svc, Errors: NewBookingErrorMapper()}
}

// NewBookingErrorMapper maps booking failure kinds to responses. Storage and
// unknown failures get a generic message.
func NewBookingErrorMapper() *utils.ErrorMapper {
	return utils.NewErrorMapper().
		WithMapping(utils.ErrorMapping{Error: services.ErrValidation, Status: http.StatusBadRequest, Code: "validation_error", Expose: true}).
		WithMapping(utils.ErrorMapping{Error: services.ErrNotFound, Status: http.StatusNotFound, Code: "not_found", Expose: true}).
		WithMapping(utils.ErrorMapping{Error: services.ErrCapacity, Status: http.StatusBadRequest, Code: "capacity_exceeded", Expose: true}).
		WithMapping(utils.ErrorMapping{Error: services.ErrStorage, Status: http.StatusInternalServerError, Message: "failed to create reservation", Code: "internal_error"})
}

func (ctrl *ReservationController) bind(c *gin.Context) (services.ReservationRequest, bool) {
	var payload ReservationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error(), "validation_error")
		return services.ReservationRequest{}, false
	}
	req, err := payload.ToRequest()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error(), "validation_error")
		return services.ReservationRequest{}, false
	}
	return req, true
}

// CreateReservation (POST /api/public/reservations)
func (ctrl *ReservationController) CreateReservation(c *gin.Context) {
	req, ok := ctrl.bind(c)
	if !ok {
		return
	}

	res, err := ctrl.Svc.Create(c.Request.Context(), req)
	if err != nil {
		utils.AbortWithMappedError(c, ctrl.Errors, err)
		return
	}

	c.JSON(http.StatusCreated, ReservationCreatedResponse{
		Success:            true,
		ReservationID:      res.ReservationID,
		ConfirmationNumber: res.ConfirmationNumber,
		Message:            "Reservation created successfully",
		Status:             res.Status,
		TotalAmount:        res.TotalAmount.StringFixed(2),
		Currency:           res.Currency,
		Components:         res.Components,
	})
}

// CheckAvailability (POST /api/public/availability) answers without booking.
func (ctrl *ReservationController) CheckAvailability(c *gin.Context) {
	req, ok := ctrl.bind(c)
	if !ok {
		return
	}

	q, err := ctrl.Svc.Quote(c.Request.Context(), req)
	if err != nil {
		utils.AbortWithMappedError(c, ctrl.Errors, err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		Success:        true,
		Available:      q.Available,
		Reason:         q.Reason,
		EstimatedTotal: q.EstimatedTotal.StringFixed(2),
		Currency:       q.Currency,
	})
}

// GetReservation (GET /api/public/reservations/:confirmationNumber)
func (ctrl *ReservationController) GetReservation(c *gin.Context) {
	code := utils.NormalizeConfirmationNumber(c.Param("confirmationNumber"))
	if !utils.IsValidConfirmationNumber(code) {
		utils.JSONError(c, http.StatusBadRequest, "invalid confirmation number", "validation_error")
		return
	}

	view, err := ctrl.Svc.GetByConfirmationNumber(c.Request.Context(), code)
	if err != nil {
		utils.AbortWithMappedError(c, ctrl.Errors, err)
		return
	}
	c.JSON(http.StatusOK, newLookupResponse(view))
}
