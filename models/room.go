package models

import (
	"gorm.io/gorm"
)

// Room is one physical room. Rooms are counted per hotel and room type to get
// the capacity used by the overlap check.
type Room struct {
	gorm.Model

	HotelID    uint   `json:"hotelId" gorm:"column:hotel_id;index:idx_room_inventory"`
	RoomTypeID uint   `json:"roomTypeId" gorm:"column:room_type_id;index:idx_room_inventory"`
	RoomNumber string `json:"roomNumber" gorm:"column:room_number;type:varchar(50)"`
	Floor      string `json:"floor" gorm:"type:varchar(10)"`

	RoomType RoomType `gorm:"foreignKey:RoomTypeID" json:"-"`
}
