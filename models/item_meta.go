package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// ItemMeta is the typed, denormalized display data of a line item. Exactly one
// variant exists per item kind; it becomes JSON only when the item is stored.
type ItemMeta interface {
	Kind() string
}

type AccommodationMeta struct {
	HotelName    string `json:"hotelName"`
	RoomTypeName string `json:"roomTypeName"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Nights       int    `json:"nights"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children,omitempty"`
}

type ActivityMeta struct {
	ActivityName     string   `json:"activityName"`
	Date             string   `json:"date"`
	StartTime        string   `json:"startTime,omitempty"`
	Participants     int      `json:"participants"`
	ParticipantNames []string `json:"participantNames,omitempty"`
}

type PackageMeta struct {
	PackageName      string   `json:"packageName"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Participants     int      `json:"participants"`
	ParticipantNames []string `json:"participantNames,omitempty"`
	ProvisionalTotal string   `json:"provisionalTotal"`
}

// PackageHotelMeta describes a hotel stay produced by package decomposition.
type PackageHotelMeta struct {
	PackageName  string `json:"packageName"`
	HotelName    string `json:"hotelName"`
	RoomTypeName string `json:"roomTypeName"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	Nights       int    `json:"nights"`
	Participants int    `json:"participants"`
}

// PackageActivityMeta describes an activity produced by package decomposition.
type PackageActivityMeta struct {
	PackageName  string `json:"packageName"`
	ActivityName string `json:"activityName"`
	Date         string `json:"date"`
	DayNumber    int    `json:"dayNumber"`
	Participants int    `json:"participants"`
	Scheduled    bool   `json:"scheduled"`
}

type ShuttleMeta struct {
	RouteName     string `json:"routeName"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	Date          string `json:"date"`
	DepartureTime string `json:"departureTime"`
	Passengers    int    `json:"passengers"`
}

func (AccommodationMeta) Kind() string   { return ItemTypeAccommodation }
func (ActivityMeta) Kind() string        { return ItemTypeActivity }
func (PackageMeta) Kind() string         { return ItemTypePackage }
func (PackageHotelMeta) Kind() string    { return ItemTypeAccommodation }
func (PackageActivityMeta) Kind() string { return ItemTypeActivity }
func (ShuttleMeta) Kind() string         { return ItemTypeShuttle }

// EncodeItemMeta serializes meta for the flexible meta column.
func EncodeItemMeta(meta ItemMeta) (datatypes.JSON, error) {
	if meta == nil {
		return datatypes.JSON("{}"), nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode %s meta: %w", meta.Kind(), err)
	}
	return datatypes.JSON(raw), nil
}

// DecodeItemMeta restores the typed meta of a stored item. Component items are
// recognized by the presence of a parent item.
func DecodeItemMeta(item ReservationItem) (ItemMeta, error) {
	if len(item.Meta) == 0 {
		return nil, nil
	}
	var meta ItemMeta
	switch {
	case item.ItemType == ItemTypeAccommodation && item.ParentItemID != nil:
		meta = &PackageHotelMeta{}
	case item.ItemType == ItemTypeAccommodation:
		meta = &AccommodationMeta{}
	case item.ItemType == ItemTypeActivity && item.ParentItemID != nil:
		meta = &PackageActivityMeta{}
	case item.ItemType == ItemTypeActivity:
		meta = &ActivityMeta{}
	case item.ItemType == ItemTypePackage:
		meta = &PackageMeta{}
	case item.ItemType == ItemTypeShuttle:
		meta = &ShuttleMeta{}
	default:
		return nil, fmt.Errorf("unknown item type %q", item.ItemType)
	}
	if err := json.Unmarshal(item.Meta, meta); err != nil {
		return nil, fmt.Errorf("decode %s meta: %w", item.ItemType, err)
	}
	return meta, nil
}
