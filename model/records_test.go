package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserIdentityFieldsSkipsUndefined(t *testing.T) {
	level := int64(5)
	fields := UserIdentity{ID: "u1", Nickname: "Ana", Level: &level}.Fields()

	assert.Equal(t, map[string]any{FieldNickname: "Ana", FieldLevel: int64(5)}, fields)
}

func TestSameValueAcrossNumericTypes(t *testing.T) {
	assert.True(t, SameValue(int64(5), float64(5)))
	assert.True(t, SameValue(3, int64(3)))
	assert.False(t, SameValue(int64(5), "5"))
	assert.True(t, SameValue("a", "a"))
	assert.False(t, SameValue(true, false))
	assert.False(t, SameValue("a", nil))
}

func TestProfileFromFields(t *testing.T) {
	seen := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	rec := ProfileFromFields("u1", map[string]any{
		FieldNickname:   "Ana",
		FieldLevel:      float64(7),
		FieldIsLiving:   true,
		FieldLastSeenAt: float64(Millis(seen)),
	})

	assert.Equal(t, "u1", rec.ID)
	assert.Equal(t, "Ana", rec.Nickname)
	if assert.NotNil(t, rec.Level) {
		assert.Equal(t, int64(7), *rec.Level)
	}
	if assert.NotNil(t, rec.IsLiving) {
		assert.True(t, *rec.IsLiving)
	}
	assert.Nil(t, rec.Gender)
	assert.True(t, seen.Equal(rec.LastSeenAt))
	assert.True(t, rec.CreatedAt.IsZero())
}

func TestGiftFromFields(t *testing.T) {
	rec := GiftFromFields("40", map[string]any{
		FieldName:          "Rosa",
		FieldIsPlaceholder: false,
		FieldDiamondValue:  int64(10),
	})

	assert.Equal(t, "Rosa", rec.Name)
	assert.False(t, rec.IsPlaceholder)
	if assert.NotNil(t, rec.DiamondValue) {
		assert.Equal(t, int64(10), *rec.DiamondValue)
	}
}

func TestEventKinds(t *testing.T) {
	events := map[EventKind]Event{
		KindLiveStatus:   LiveStatusUpdate{},
		KindRoomSnapshot: RoomSnapshot{},
		KindGame:         GameEvent{},
		KindGift:         GiftEvent{},
		KindChat:         ChatMessage{},
		KindUserJoin:     UserJoinEvent{},
		KindUnclassified: Unclassified{},
	}
	for kind, ev := range events {
		assert.Equal(t, kind, ev.Kind())
	}
}
