package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"reservation-backend/models"
	"reservation-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Availability is the checker's answer. Reason is set when Available is false.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func available() Availability { return Availability{Available: true} }

func denied(format string, args ...any) Availability {
	return Availability{Available: false, Reason: fmt.Sprintf(format, args...)}
}

type AccommodationTarget struct {
	Hotel    models.Hotel
	RoomType models.RoomType
	CheckIn  time.Time
	CheckOut time.Time
	Nights   int
}

type ActivityTarget struct {
	Activity models.Activity
	Schedule models.ActivitySchedule
}

// PackageHotelPlan is a package hotel placed on the calendar.
type PackageHotelPlan struct {
	Component models.PackageHotel
	CheckIn   time.Time
	CheckOut  time.Time
}

// PackageActivityPlan is a package activity placed on the calendar. Schedule
// is nil when the activity has no departure that day.
type PackageActivityPlan struct {
	Component models.PackageActivity
	Date      time.Time
	Schedule  *models.ActivitySchedule
}

type PackageTarget struct {
	Package    models.Package
	StartDate  time.Time
	EndDate    time.Time
	Hotels     []PackageHotelPlan
	Activities []PackageActivityPlan
}

type ShuttleTarget struct {
	Route models.ShuttleRoute
}

// CheckResult holds the resolved references of a request and the verdict.
// Only the target matching the item type is set.
type CheckResult struct {
	Availability
	ItemType      string
	Accommodation *AccommodationTarget
	Activity      *ActivityTarget
	Package       *PackageTarget
	Shuttle       *ShuttleTarget
}

// AvailabilityChecker resolves referenced inventory and decides whether the
// requested capacity exists. Bound to a transaction with WithTx it also takes
// row locks on room types before counting stays.
type AvailabilityChecker struct {
	Catalog             *CatalogService
	EnforceRoomCapacity bool

	tx *gorm.DB
}

func NewAvailabilityChecker(catalog *CatalogService, enforceRoomCapacity bool) *AvailabilityChecker {
	return &AvailabilityChecker{Catalog: catalog, EnforceRoomCapacity: enforceRoomCapacity}
}

func (c *AvailabilityChecker) WithTx(tx *gorm.DB) *AvailabilityChecker {
	return &AvailabilityChecker{
		Catalog:             c.Catalog.WithTx(tx),
		EnforceRoomCapacity: c.EnforceRoomCapacity,
		tx:                  tx,
	}
}

// Check dispatches on the item type of a validated request.
func (c *AvailabilityChecker) Check(ctx context.Context, req ReservationRequest) (CheckResult, error) {
	res := CheckResult{ItemType: normalizeItemType(req.ItemType)}
	var err error
	switch res.ItemType {
	case models.ItemTypeAccommodation:
		var t AccommodationTarget
		t, res.Availability, err = c.CheckAccommodation(ctx, *req.Accommodation)
		res.Accommodation = &t
	case models.ItemTypeActivity:
		var t ActivityTarget
		t, res.Availability, err = c.CheckActivity(ctx, *req.Activity)
		res.Activity = &t
	case models.ItemTypePackage:
		var t PackageTarget
		t, res.Availability, err = c.CheckPackage(ctx, *req.Package)
		res.Package = &t
	case models.ItemTypeShuttle:
		var t ShuttleTarget
		t, res.Availability, err = c.CheckShuttle(ctx, *req.Shuttle)
		res.Shuttle = &t
	default:
		return CheckResult{}, validationError("unsupported itemType %q", req.ItemType)
	}
	if err != nil {
		return CheckResult{}, err
	}
	return res, nil
}

// CheckAccommodation resolves hotel and room type. Room capacity is only
// enforced when EnforceRoomCapacity is set.
func (c *AvailabilityChecker) CheckAccommodation(ctx context.Context, req AccommodationRequest) (AccommodationTarget, Availability, error) {
	hotel, err := c.Catalog.Hotel(ctx, req.HotelID)
	if err != nil {
		return AccommodationTarget{}, Availability{}, err
	}
	rt, err := c.Catalog.RoomType(ctx, hotel.ID, req.RoomTypeID)
	if err != nil {
		return AccommodationTarget{}, Availability{}, err
	}

	checkIn, checkOut := utils.DateOnly(req.CheckIn), utils.DateOnly(req.CheckOut)
	target := AccommodationTarget{
		Hotel:    hotel,
		RoomType: rt,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Nights:   utils.NightsBetween(checkIn, checkOut),
	}
	if !c.EnforceRoomCapacity {
		return target, available(), nil
	}

	if err := c.lockRoomTypes(ctx, []uint{rt.ID}); err != nil {
		return AccommodationTarget{}, Availability{}, err
	}
	verdict, err := c.RoomCapacity(ctx, hotel, rt.ID, checkIn, checkOut)
	return target, verdict, err
}

func (c *AvailabilityChecker) CheckActivity(ctx context.Context, req ActivityRequest) (ActivityTarget, Availability, error) {
	activity, err := c.Catalog.Activity(ctx, req.ActivityID)
	if err != nil {
		return ActivityTarget{}, Availability{}, err
	}
	schedule, err := c.Catalog.Schedule(ctx, activity.ID, req.ScheduleID)
	if err != nil {
		return ActivityTarget{}, Availability{}, err
	}
	target := ActivityTarget{Activity: activity, Schedule: schedule}
	return target, spotsVerdict(activity, schedule, req.Participants), nil
}

// CheckPackage places every embedded hotel and activity on the calendar and
// checks each against the same rules as a standalone booking. Hotels are
// always capacity checked.
func (c *AvailabilityChecker) CheckPackage(ctx context.Context, req PackageRequest) (PackageTarget, Availability, error) {
	pkg, err := c.Catalog.Package(ctx, req.PackageID)
	if err != nil {
		return PackageTarget{}, Availability{}, err
	}

	target := PackageTarget{
		Package:   pkg,
		StartDate: utils.DateOnly(req.StartDate),
		EndDate:   utils.DateOnly(req.EndDate),
	}

	for _, h := range pkg.Hotels {
		offset := h.CheckInDay - 1
		if offset < 0 {
			offset = 0
		}
		checkIn := utils.AddDays(target.StartDate, offset)
		target.Hotels = append(target.Hotels, PackageHotelPlan{
			Component: h,
			CheckIn:   checkIn,
			CheckOut:  utils.AddDays(checkIn, h.Nights),
		})
	}

	roomTypeIDs := make([]uint, 0, len(target.Hotels))
	for _, plan := range target.Hotels {
		roomTypeIDs = append(roomTypeIDs, plan.Component.RoomTypeID)
	}
	if err := c.lockRoomTypes(ctx, roomTypeIDs); err != nil {
		return PackageTarget{}, Availability{}, err
	}
	for _, plan := range target.Hotels {
		verdict, err := c.RoomCapacity(ctx, plan.Component.Hotel, plan.Component.RoomTypeID, plan.CheckIn, plan.CheckOut)
		if err != nil {
			return PackageTarget{}, Availability{}, err
		}
		if !verdict.Available {
			return target, verdict, nil
		}
	}

	for _, a := range pkg.Activities {
		offset := a.DayNumber - 1
		if offset < 0 {
			offset = 0
		}
		date := utils.AddDays(target.StartDate, offset)
		schedule, err := c.Catalog.ScheduleOn(ctx, a.ActivityID, date)
		if err != nil {
			return PackageTarget{}, Availability{}, err
		}
		target.Activities = append(target.Activities, PackageActivityPlan{Component: a, Date: date, Schedule: schedule})
		if schedule == nil {
			continue
		}
		if verdict := spotsVerdict(a.Activity, *schedule, req.Participants); !verdict.Available {
			return target, verdict, nil
		}
	}

	return target, available(), nil
}

// CheckShuttle enforces the route's passenger maximum only. Seats are not
// tracked per departure.
func (c *AvailabilityChecker) CheckShuttle(ctx context.Context, req ShuttleRequest) (ShuttleTarget, Availability, error) {
	route, err := c.Catalog.ShuttleRoute(ctx, req.RouteID)
	if err != nil {
		return ShuttleTarget{}, Availability{}, err
	}
	target := ShuttleTarget{Route: route}
	if route.MaxPassengers > 0 && req.Passengers > route.MaxPassengers {
		return target, denied("%d passengers exceed the maximum of %d for %s", req.Passengers, route.MaxPassengers, route.Name), nil
	}
	return target, available(), nil
}

// RoomCapacity counts live stays of the hotel and room type overlapping the
// half-open window [checkIn, checkOut) and compares them with the number of
// physical rooms.
func (c *AvailabilityChecker) RoomCapacity(ctx context.Context, hotel models.Hotel, roomTypeID uint, checkIn, checkOut time.Time) (Availability, error) {
	rooms, err := c.Catalog.RoomCount(ctx, hotel.ID, roomTypeID)
	if err != nil {
		return Availability{}, err
	}

	var booked int64
	err = c.Catalog.DB.WithContext(ctx).
		Model(&models.AccommodationStay{}).
		Joins("JOIN reservation_items ON reservation_items.id = accommodation_stays.reservation_item_id").
		Joins("JOIN reservations ON reservations.id = reservation_items.reservation_id").
		Where("accommodation_stays.hotel_id = ? AND accommodation_stays.room_type_id = ?", hotel.ID, roomTypeID).
		Where("reservations.status <> ? AND reservations.deleted_at IS NULL", models.ReservationStatusCancelled).
		Where("((accommodation_stays.check_in_date <= ? AND accommodation_stays.check_out_date > ?)"+
			" OR (accommodation_stays.check_in_date < ? AND accommodation_stays.check_out_date >= ?)"+
			" OR (accommodation_stays.check_in_date >= ? AND accommodation_stays.check_out_date <= ?))",
			checkIn, checkIn, checkOut, checkOut, checkIn, checkOut).
		Count(&booked).Error
	if err != nil {
		return Availability{}, storageError("count overlapping stays", err)
	}

	if booked >= rooms {
		return denied("No rooms available at %s from %s to %s",
			hotel.Name, utils.FormatDate(checkIn), utils.FormatDate(checkOut)), nil
	}
	return available(), nil
}

// ClaimSpots takes n spots from a schedule with one conditional update, so
// concurrent bookings cannot both pass the check and oversell.
func (c *AvailabilityChecker) ClaimSpots(ctx context.Context, activity models.Activity, schedule models.ActivitySchedule, n int) error {
	res := c.Catalog.DB.WithContext(ctx).
		Model(&models.ActivitySchedule{}).
		Where("id = ? AND available_spots >= ?", schedule.ID, n).
		UpdateColumn("available_spots", gorm.Expr("available_spots - ?", n))
	if res.Error != nil {
		return storageError("update activity spots", res.Error)
	}
	if res.RowsAffected == 0 {
		return capacityError("Not enough spots left for %s on %s", activity.Name, utils.FormatDate(schedule.Date))
	}
	return nil
}

// lockRoomTypes takes row locks in ascending id order. Outside a transaction
// it is a no-op.
func (c *AvailabilityChecker) lockRoomTypes(ctx context.Context, ids []uint) error {
	if c.tx == nil || len(ids) == 0 {
		return nil
	}
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var locked []models.RoomType
	err := c.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id ASC").
		Find(&locked).Error
	if err != nil {
		return storageError("lock room types", err)
	}
	return nil
}

func spotsVerdict(activity models.Activity, schedule models.ActivitySchedule, participants int) Availability {
	if schedule.AvailableSpots < participants {
		return denied("Only %d spots left for %s on %s", schedule.AvailableSpots, activity.Name, utils.FormatDate(schedule.Date))
	}
	return available()
}
