package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeItemMeta_PicksVariantByParent(t *testing.T) {
	raw, err := EncodeItemMeta(PackageHotelMeta{PackageName: "Northern Escape", HotelName: "Riverside Hotel", Nights: 2})
	require.NoError(t, err)

	parent := uint(1)
	meta, err := DecodeItemMeta(ReservationItem{ItemType: ItemTypeAccommodation, ParentItemID: &parent, Meta: raw})
	require.NoError(t, err)
	hotel, ok := meta.(*PackageHotelMeta)
	require.True(t, ok)
	assert.Equal(t, "Northern Escape", hotel.PackageName)
	assert.Equal(t, 2, hotel.Nights)

	meta, err = DecodeItemMeta(ReservationItem{ItemType: ItemTypeAccommodation, Meta: raw})
	require.NoError(t, err)
	_, ok = meta.(*AccommodationMeta)
	assert.True(t, ok)
}

func TestDecodeItemMeta_Variants(t *testing.T) {
	parent := uint(1)
	tests := []struct {
		item ReservationItem
		kind string
	}{
		{ReservationItem{ItemType: ItemTypeActivity}, ItemTypeActivity},
		{ReservationItem{ItemType: ItemTypeActivity, ParentItemID: &parent}, ItemTypeActivity},
		{ReservationItem{ItemType: ItemTypePackage}, ItemTypePackage},
		{ReservationItem{ItemType: ItemTypeShuttle}, ItemTypeShuttle},
	}
	for _, tt := range tests {
		tt.item.Meta = []byte(`{}`)
		meta, err := DecodeItemMeta(tt.item)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, meta.Kind())
	}
}

func TestDecodeItemMeta_Errors(t *testing.T) {
	meta, err := DecodeItemMeta(ReservationItem{ItemType: ItemTypeShuttle})
	assert.NoError(t, err)
	assert.Nil(t, meta)

	_, err = DecodeItemMeta(ReservationItem{ItemType: "CRUISE", Meta: []byte(`{}`)})
	assert.Error(t, err)

	_, err = DecodeItemMeta(ReservationItem{ItemType: ItemTypeShuttle, Meta: []byte(`[1,2]`)})
	assert.Error(t, err)
}

func TestEncodeItemMetaNil(t *testing.T) {
	raw, err := EncodeItemMeta(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}
