// services/reservation_service.go
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"reservation-backend/metrics"
	"reservation-backend/models"
	"reservation-backend/queue"
	"reservation-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const notificationTimeout = 15 * time.Second

// Counts taken after a room-type lock is granted must see the stays committed
// by the previous holder, which a REPEATABLE READ snapshot would hide.
var bookingTxOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// Notifier receives reservation events after the booking has committed.
type Notifier interface {
	NotifyReservationCreated(ctx context.Context, event queue.ReservationCreatedEvent) error
}

// ReservationConfig carries the booking policy read from the environment.
type ReservationConfig struct {
	DefaultNationality    string
	DefaultCurrency       string
	ConfirmationPrefix    string
	InitialStatus         string
	PaymentStatus         string
	EnforceRoomCapacity   bool
	NotificationTransport string
}

// AccommodationComponent is a hotel stay produced by package decomposition.
type AccommodationComponent struct {
	ItemID       uint            `json:"itemId"`
	HotelName    string          `json:"hotelName"`
	RoomTypeName string          `json:"roomTypeName"`
	CheckInDate  string          `json:"checkInDate"`
	CheckOutDate string          `json:"checkOutDate"`
	Nights       int             `json:"nights"`
	Amount       decimal.Decimal `json:"amount"`
}

// ActivityComponent is an activity produced by package decomposition.
type ActivityComponent struct {
	ItemID       uint            `json:"itemId"`
	ActivityName string          `json:"activityName"`
	Date         string          `json:"date"`
	StartTime    string          `json:"startTime,omitempty"`
	Scheduled    bool            `json:"scheduled"`
	Amount       decimal.Decimal `json:"amount"`
}

type PackageComponents struct {
	Accommodations []AccommodationComponent `json:"accommodations"`
	Activities     []ActivityComponent      `json:"activities"`
	TotalAmount    decimal.Decimal          `json:"totalAmount"`
}

// ReservationResult is returned for a committed reservation.
type ReservationResult struct {
	ReservationID      uint
	ConfirmationNumber string
	ItemType           string
	Status             string
	TotalAmount        decimal.Decimal
	Currency           string
	Components         *PackageComponents
}

// Quote answers an availability request without writing anything.
type Quote struct {
	Availability
	EstimatedTotal decimal.Decimal
	Currency       string
}

// ReservationItemView is a stored item with its decoded meta.
type ReservationItemView struct {
	Item models.ReservationItem
	Meta models.ItemMeta
}

type ReservationView struct {
	Reservation models.Reservation
	Items       []ReservationItemView
}

// ReservationService composes reservations: it validates a request, checks
// inventory, prices it and writes the header, line items and detail rows in
// one transaction, decomposing packages into their components.
type ReservationService struct {
	DB            *gorm.DB
	Guests        *GuestService
	Availability  *AvailabilityChecker
	Pricing       *PricingCalculator
	Confirmations *ConfirmationGenerator
	Notifier      Notifier
	Config        ReservationConfig
	Logger        *slog.Logger

	notifications sync.WaitGroup
}

func NewReservationService(db *gorm.DB, cfg ReservationConfig, notifier Notifier, logger *slog.Logger) *ReservationService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.InitialStatus == "" {
		cfg.InitialStatus = models.ReservationStatusConfirmed
	}
	if cfg.PaymentStatus == "" {
		cfg.PaymentStatus = models.PaymentStatusPending
	}
	return &ReservationService{
		DB:            db,
		Guests:        NewGuestService(db, cfg.DefaultNationality),
		Availability:  NewAvailabilityChecker(NewCatalogService(db), cfg.EnforceRoomCapacity),
		Pricing:       NewPricingCalculator(cfg.DefaultCurrency),
		Confirmations: NewConfirmationGenerator(cfg.ConfirmationPrefix),
		Notifier:      notifier,
		Config:        cfg,
		Logger:        logger,
	}
}

// Create books a request. Validation, not-found and capacity failures leave no
// rows behind; any failure inside the transaction rolls everything back. The
// notification is dispatched after commit and never fails the booking.
func (s *ReservationService) Create(ctx context.Context, req ReservationRequest) (*ReservationResult, error) {
	req.ItemType = normalizeItemType(req.ItemType)

	result, event, err := s.create(ctx, req)
	if err != nil {
		kind := ErrorKind(err)
		metrics.IncReservationFailed(req.ItemType, kind)
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrCapacity) {
			s.Logger.InfoContext(ctx, "reservation rejected", "item_type", req.ItemType, "kind", kind, "reason", err.Error())
		} else {
			s.Logger.ErrorContext(ctx, "reservation failed", "item_type", req.ItemType, "kind", kind, "error", err, "cause", errors.Unwrap(err))
		}
		return nil, err
	}

	metrics.IncReservationCreated(result.ItemType)
	s.Logger.InfoContext(ctx, "reservation created",
		"reservation_id", result.ReservationID,
		"confirmation", result.ConfirmationNumber,
		"item_type", result.ItemType,
		"total", result.TotalAmount.StringFixed(2),
		"currency", result.Currency,
	)

	s.dispatchNotification(ctx, event)
	return result, nil
}

func (s *ReservationService) create(ctx context.Context, req ReservationRequest) (*ReservationResult, queue.ReservationCreatedEvent, error) {
	var none queue.ReservationCreatedEvent

	if err := req.Validate(); err != nil {
		return nil, none, err
	}
	if err := req.ValidateGuest(); err != nil {
		return nil, none, err
	}
	source, err := normalizeSource(req.Source)
	if err != nil {
		return nil, none, err
	}

	// เช็คก่อนแบบไม่ล็อก: ref ผิดหรือเต็มแล้วไม่ต้องเปิด transaction
	pre, err := s.Availability.Check(ctx, req)
	if err != nil {
		return nil, none, err
	}
	if !pre.Available {
		return nil, none, capacityError("%s", pre.Reason)
	}

	started := time.Now()
	var c *composition
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// เช็คซ้ำใน transaction
		checker := s.Availability.WithTx(tx)
		checked, err := checker.Check(ctx, req)
		if err != nil {
			return err
		}
		if !checked.Available {
			return capacityError("%s", checked.Reason)
		}

		guest, err := s.Guests.Resolve(ctx, tx, req.Guest)
		if err != nil {
			return err
		}

		code, err := s.Confirmations.Reserve(ctx, tx)
		if err != nil {
			return err
		}

		c = &composition{
			ctx:           ctx,
			tx:            tx,
			checker:       checker,
			pricing:       s.Pricing,
			confirmations: s.Confirmations,
			cfg:           s.Config,
			req:           req,
			guest:         guest,
			code:          code,
			source:        source,
		}
		switch {
		case checked.Accommodation != nil:
			return c.accommodation(*checked.Accommodation)
		case checked.Activity != nil:
			return c.activity(*checked.Activity)
		case checked.Package != nil:
			return c.pkg(*checked.Package)
		case checked.Shuttle != nil:
			return c.shuttle(*checked.Shuttle)
		}
		return validationError("unsupported itemType %q", req.ItemType)
	}, bookingTxOptions)
	metrics.ObserveCompose(req.ItemType, time.Since(started))
	if err != nil {
		return nil, none, storageError("create reservation", err)
	}

	return c.result(), c.event(), nil
}

// Quote checks availability and estimates the final price of a request.
func (s *ReservationService) Quote(ctx context.Context, req ReservationRequest) (Quote, error) {
	req.ItemType = normalizeItemType(req.ItemType)
	if err := req.Validate(); err != nil {
		return Quote{}, err
	}
	checked, err := s.Availability.Check(ctx, req)
	if err != nil {
		return Quote{}, err
	}
	price := s.Pricing.Estimate(checked, req)
	return Quote{Availability: checked.Availability, EstimatedTotal: price.Amount, Currency: price.Currency}, nil
}

// GetByConfirmationNumber loads a reservation with its guest and items.
func (s *ReservationService) GetByConfirmationNumber(ctx context.Context, code string) (*ReservationView, error) {
	code = utils.NormalizeConfirmationNumber(code)
	if code == "" {
		return nil, validationError("confirmation number is required")
	}

	var r models.Reservation
	err := s.DB.WithContext(ctx).
		Preload("Guest").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("confirmation_number = ?", code).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("reservation %s not found", code)
	}
	if err != nil {
		return nil, storageError("load reservation", err)
	}

	view := &ReservationView{Reservation: r, Items: make([]ReservationItemView, 0, len(r.Items))}
	for _, item := range r.Items {
		meta, err := models.DecodeItemMeta(item)
		if err != nil {
			return nil, storageError("decode reservation item", err)
		}
		view.Items = append(view.Items, ReservationItemView{Item: item, Meta: meta})
	}
	return view, nil
}

// WaitNotifications blocks until dispatched notifications finish or ctx ends.
func (s *ReservationService) WaitNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifications.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ReservationService) dispatchNotification(ctx context.Context, event queue.ReservationCreatedEvent) {
	if s.Notifier == nil {
		return
	}
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
		defer cancel()

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("notifier panic: %v", r)
				}
			}()
			return s.Notifier.NotifyReservationCreated(nctx, event)
		}()
		if err != nil {
			err = &BookingError{Kind: ErrNotification, Message: "notification failed", Err: err}
			metrics.IncNotificationFailed(s.Config.NotificationTransport)
			s.Logger.Warn("reservation notification failed",
				"reservation_id", event.ReservationID,
				"confirmation", event.ConfirmationNumber,
				"error", err,
				"cause", errors.Unwrap(err),
			)
		}
	}()
}

func normalizeSource(raw string) (string, error) {
	switch s := strings.ToUpper(strings.TrimSpace(raw)); s {
	case "":
		return models.SourcePublic, nil
	case models.SourcePublic, models.SourceStaff:
		return s, nil
	default:
		return "", validationError("unsupported source %q", raw)
	}
}

// composition is the state of one reservation being written inside the
// booking transaction.
type composition struct {
	ctx           context.Context
	tx            *gorm.DB
	checker       *AvailabilityChecker
	pricing       *PricingCalculator
	confirmations *ConfirmationGenerator
	cfg           ReservationConfig
	req           ReservationRequest
	guest         models.Guest
	code          string
	source        string

	reservation models.Reservation
	items       []models.ReservationItem
	components  *PackageComponents
}

func (c *composition) header(checkIn, checkOut time.Time, price LinePrice) error {
	c.reservation = models.Reservation{
		GuestID:            c.guest.ID,
		ConfirmationNumber: c.code,
		CheckInDate:        utils.DateOnly(checkIn),
		CheckOutDate:       utils.DateOnly(checkOut),
		TotalAmount:        price.Amount,
		Currency:           price.Currency,
		Status:             c.cfg.InitialStatus,
		PaymentStatus:      c.cfg.PaymentStatus,
		Source:             c.source,
		SpecialRequests:    strings.TrimSpace(c.req.SpecialRequests),
	}
	for attempt := 1; ; attempt++ {
		err := c.tx.Omit(clause.Associations).Create(&c.reservation).Error
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) || attempt >= confirmationAttempts {
			return storageError("create reservation", err)
		}
		// lost a race for the confirmation number against a concurrent booking
		code, err := c.confirmations.Reserve(c.ctx, c.tx)
		if err != nil {
			return err
		}
		c.code = code
		c.reservation.ID = 0
		c.reservation.ConfirmationNumber = code
	}
}

func (c *composition) addItem(parent *models.ReservationItem, itemType, title string, price LinePrice, meta models.ItemMeta) (models.ReservationItem, error) {
	raw, err := models.EncodeItemMeta(meta)
	if err != nil {
		return models.ReservationItem{}, storageError("encode item meta", err)
	}
	item := models.ReservationItem{
		ReservationID: c.reservation.ID,
		ItemType:      itemType,
		Title:         title,
		Quantity:      price.Quantity,
		UnitPrice:     price.UnitPrice,
		Amount:        price.Amount,
		Currency:      price.Currency,
		Meta:          raw,
	}
	if parent != nil {
		item.ParentItemID = &parent.ID
	}
	if err := c.tx.Create(&item).Error; err != nil {
		return models.ReservationItem{}, storageError("create reservation item", err)
	}
	c.items = append(c.items, item)
	return item, nil
}

func (c *composition) create(row interface{}, what string) error {
	if err := c.tx.Omit(clause.Associations).Create(row).Error; err != nil {
		return storageError("create "+what, err)
	}
	return nil
}

func (c *composition) accommodation(t AccommodationTarget) error {
	req := c.req.Accommodation
	price := c.pricing.Accommodation(t.RoomType, t.Nights)
	if err := c.header(t.CheckIn, t.CheckOut, price); err != nil {
		return err
	}

	item, err := c.addItem(nil, models.ItemTypeAccommodation, t.Hotel.Name+" - "+t.RoomType.Name, price, models.AccommodationMeta{
		HotelName:    t.Hotel.Name,
		RoomTypeName: t.RoomType.Name,
		CheckInDate:  utils.FormatDate(t.CheckIn),
		CheckOutDate: utils.FormatDate(t.CheckOut),
		Nights:       t.Nights,
		Adults:       req.Adults,
		Children:     req.Children,
	})
	if err != nil {
		return err
	}

	return c.create(&models.AccommodationStay{
		ReservationItemID: item.ID,
		HotelID:           t.Hotel.ID,
		RoomTypeID:        t.RoomType.ID,
		CheckInDate:       t.CheckIn,
		CheckOutDate:      t.CheckOut,
		Nights:            t.Nights,
		GuestName:         c.guest.FullName(),
		Adults:            req.Adults,
		Children:          req.Children,
	}, "accommodation stay")
}

func (c *composition) activity(t ActivityTarget) error {
	req := c.req.Activity
	if err := c.checker.ClaimSpots(c.ctx, t.Activity, t.Schedule, req.Participants); err != nil {
		return err
	}

	price := c.pricing.Activity(t.Activity, req.Participants)
	if err := c.header(t.Schedule.Date, t.Schedule.Date, price); err != nil {
		return err
	}

	item, err := c.addItem(nil, models.ItemTypeActivity, t.Activity.Name, price, models.ActivityMeta{
		ActivityName:     t.Activity.Name,
		Date:             utils.FormatDate(t.Schedule.Date),
		StartTime:        t.Schedule.StartTime,
		Participants:     req.Participants,
		ParticipantNames: req.ParticipantNames,
	})
	if err != nil {
		return err
	}

	scheduleID := t.Schedule.ID
	return c.create(&models.ActivityBooking{
		ReservationItemID: item.ID,
		ActivityID:        t.Activity.ID,
		ScheduleID:        &scheduleID,
		Date:              utils.DateOnly(t.Schedule.Date),
		StartTime:         t.Schedule.StartTime,
		Participants:      req.Participants,
		ParticipantNames:  namesJSON(req.ParticipantNames),
		EmergencyContact:  strings.TrimSpace(req.EmergencyContact),
		EmergencyPhone:    strings.TrimSpace(req.EmergencyPhone),
	}, "activity booking")
}

// pkg writes the package line at its provisional price, decomposes it into
// one line per embedded hotel and activity, then reconciles the package line
// and the reservation total to the sum of the components.
func (c *composition) pkg(t PackageTarget) error {
	req := c.req.Package
	n := req.Participants
	provisional := c.pricing.PackageProvisional(t.Package, n)
	if err := c.header(t.StartDate, t.EndDate, provisional); err != nil {
		return err
	}

	parent, err := c.addItem(nil, models.ItemTypePackage, t.Package.Name, provisional, models.PackageMeta{
		PackageName:      t.Package.Name,
		StartDate:        utils.FormatDate(t.StartDate),
		EndDate:          utils.FormatDate(t.EndDate),
		Participants:     n,
		ParticipantNames: req.ParticipantNames,
		ProvisionalTotal: provisional.Amount.StringFixed(2),
	})
	if err != nil {
		return err
	}
	err = c.create(&models.PackageBooking{
		ReservationItemID: parent.ID,
		PackageID:         t.Package.ID,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
		Participants:      n,
		ParticipantNames:  namesJSON(req.ParticipantNames),
	}, "package booking")
	if err != nil {
		return err
	}

	c.components = &PackageComponents{
		Accommodations: []AccommodationComponent{},
		Activities:     []ActivityComponent{},
	}
	var priced []LinePrice

	for _, plan := range t.Hotels {
		h := plan.Component
		// component ก่อนหน้าของแพ็กเกจนี้ถูกนับด้วย
		verdict, err := c.checker.RoomCapacity(c.ctx, h.Hotel, h.RoomTypeID, plan.CheckIn, plan.CheckOut)
		if err != nil {
			return err
		}
		if !verdict.Available {
			return capacityError("%s", verdict.Reason)
		}

		price := c.pricing.PackageHotel(h, n)
		item, err := c.addItem(&parent, models.ItemTypeAccommodation, h.Hotel.Name+" - "+h.RoomType.Name, price, models.PackageHotelMeta{
			PackageName:  t.Package.Name,
			HotelName:    h.Hotel.Name,
			RoomTypeName: h.RoomType.Name,
			CheckInDate:  utils.FormatDate(plan.CheckIn),
			CheckOutDate: utils.FormatDate(plan.CheckOut),
			Nights:       h.Nights,
			Participants: n,
		})
		if err != nil {
			return err
		}
		err = c.create(&models.AccommodationStay{
			ReservationItemID: item.ID,
			HotelID:           h.HotelID,
			RoomTypeID:        h.RoomTypeID,
			CheckInDate:       plan.CheckIn,
			CheckOutDate:      plan.CheckOut,
			Nights:            h.Nights,
			GuestName:         c.guest.FullName(),
			Adults:            n,
		}, "accommodation stay")
		if err != nil {
			return err
		}

		priced = append(priced, price)
		c.components.Accommodations = append(c.components.Accommodations, AccommodationComponent{
			ItemID:       item.ID,
			HotelName:    h.Hotel.Name,
			RoomTypeName: h.RoomType.Name,
			CheckInDate:  utils.FormatDate(plan.CheckIn),
			CheckOutDate: utils.FormatDate(plan.CheckOut),
			Nights:       h.Nights,
			Amount:       price.Amount,
		})
	}

	for _, plan := range t.Activities {
		a := plan.Component
		var scheduleID *uint
		startTime := ""
		if plan.Schedule != nil {
			if err := c.checker.ClaimSpots(c.ctx, a.Activity, *plan.Schedule, n); err != nil {
				return err
			}
			id := plan.Schedule.ID
			scheduleID = &id
			startTime = plan.Schedule.StartTime
		}

		price := c.pricing.PackageActivity(a, n)
		item, err := c.addItem(&parent, models.ItemTypeActivity, a.Activity.Name, price, models.PackageActivityMeta{
			PackageName:  t.Package.Name,
			ActivityName: a.Activity.Name,
			Date:         utils.FormatDate(plan.Date),
			DayNumber:    a.DayNumber,
			Participants: n,
			Scheduled:    scheduleID != nil,
		})
		if err != nil {
			return err
		}
		err = c.create(&models.ActivityBooking{
			ReservationItemID: item.ID,
			ActivityID:        a.ActivityID,
			ScheduleID:        scheduleID,
			Date:              plan.Date,
			StartTime:         startTime,
			Participants:      n,
			ParticipantNames:  namesJSON(req.ParticipantNames),
		}, "activity booking")
		if err != nil {
			return err
		}

		priced = append(priced, price)
		c.components.Activities = append(c.components.Activities, ActivityComponent{
			ItemID:       item.ID,
			ActivityName: a.Activity.Name,
			Date:         utils.FormatDate(plan.Date),
			StartTime:    startTime,
			Scheduled:    scheduleID != nil,
			Amount:       price.Amount,
		})
	}

	final := c.pricing.Reconcile(provisional, priced)
	c.components.TotalAmount = final.Amount
	if final.Amount.Equal(provisional.Amount) {
		return nil
	}

	if err := c.tx.Model(&models.ReservationItem{}).Where("id = ?", parent.ID).
		Update("amount", final.Amount).Error; err != nil {
		return storageError("reconcile package amount", err)
	}
	if err := c.tx.Model(&models.Reservation{}).Where("id = ?", c.reservation.ID).
		Update("total_amount", final.Amount).Error; err != nil {
		return storageError("reconcile reservation total", err)
	}
	c.reservation.TotalAmount = final.Amount
	for i := range c.items {
		if c.items[i].ID == parent.ID {
			c.items[i].Amount = final.Amount
		}
	}
	return nil
}

// shuttle has no detail row and no seat counter; the route maximum was
// enforced by the checker.
func (c *composition) shuttle(t ShuttleTarget) error {
	req := c.req.Shuttle
	price := c.pricing.Shuttle(t.Route, req.Passengers)
	if err := c.header(req.Date, req.Date, price); err != nil {
		return err
	}
	_, err := c.addItem(nil, models.ItemTypeShuttle, t.Route.Name, price, models.ShuttleMeta{
		RouteName:     t.Route.Name,
		Origin:        t.Route.Origin,
		Destination:   t.Route.Destination,
		Date:          utils.FormatDate(req.Date),
		DepartureTime: strings.TrimSpace(req.DepartureTime),
		Passengers:    req.Passengers,
	})
	return err
}

func (c *composition) result() *ReservationResult {
	return &ReservationResult{
		ReservationID:      c.reservation.ID,
		ConfirmationNumber: c.reservation.ConfirmationNumber,
		ItemType:           c.req.ItemType,
		Status:             c.reservation.Status,
		TotalAmount:        c.reservation.TotalAmount,
		Currency:           c.reservation.Currency,
		Components:         c.components,
	}
}

func (c *composition) event() queue.ReservationCreatedEvent {
	items := make([]queue.EventItem, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, queue.EventItem{
			ItemType:  it.ItemType,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Amount:    it.Amount.StringFixed(2),
			Component: it.ParentItemID != nil,
		})
	}
	return queue.ReservationCreatedEvent{
		EventID:            queue.NewEventID(),
		ReservationID:      c.reservation.ID,
		ConfirmationNumber: c.reservation.ConfirmationNumber,
		ItemType:           c.req.ItemType,
		GuestEmail:         c.guest.Email,
		GuestName:          c.guest.FullName(),
		CheckInDate:        utils.FormatDate(c.reservation.CheckInDate),
		CheckOutDate:       utils.FormatDate(c.reservation.CheckOutDate),
		TotalAmount:        c.reservation.TotalAmount.StringFixed(2),
		Currency:           c.reservation.Currency,
		Items:              items,
		CreatedAt:          time.Now().UTC(),
	}
}

func namesJSON(names []string) datatypes.JSON {
	clean := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			clean = append(clean, n)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
