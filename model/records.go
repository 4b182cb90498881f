package model

import "time"

// 集合名
const (
	CollectionProfiles = "profiles"
	CollectionGifts    = "gifts"
)

// 档案字段名
const (
	FieldNickname   = "nickname"
	FieldAvatarURL  = "avatarUrl"
	FieldLevel      = "level"
	FieldNumID      = "numId"
	FieldShowID     = "showId"
	FieldGender     = "gender"
	FieldSignature  = "signature"
	FieldArea       = "area"
	FieldSchool     = "school"
	FieldIsLiving   = "isLiving"
	FieldRoomID     = "roomId"
	FieldCreatedAt  = "createdAt"
	FieldLastSeenAt = "lastSeenAt"
)

// 礼物字段名
const (
	FieldName          = "name"
	FieldImageURL      = "imageUrl"
	FieldDiamondValue  = "diamondValue"
	FieldIsPlaceholder = "isPlaceholder"
	FieldUpdatedAt     = "updatedAt"
)

// ProfileRecord 观众/主播档案，以稳定 id 为键
type ProfileRecord struct {
	ID         string
	Nickname   string
	AvatarURL  string
	Level      *int64
	NumID      string
	ShowID     string
	Gender     *int64
	Signature  string
	Area       string
	School     string
	IsLiving   *bool
	RoomID     string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// GiftRecord 礼物目录条目，以礼物 id 为键
type GiftRecord struct {
	ID            string
	Name          string
	ImageURL      string
	DiamondValue  *int64
	IsPlaceholder bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GiftObservation 一次礼物事件中观察到的礼物信息
type GiftObservation struct {
	ID           string
	Name         string
	ImageURL     string
	DiamondValue *int64
}

// ProfileFromFields 从存储字段还原档案
func ProfileFromFields(id string, fields map[string]any) ProfileRecord {
	return ProfileRecord{
		ID:         id,
		Nickname:   stringField(fields, FieldNickname),
		AvatarURL:  stringField(fields, FieldAvatarURL),
		Level:      intField(fields, FieldLevel),
		NumID:      stringField(fields, FieldNumID),
		ShowID:     stringField(fields, FieldShowID),
		Gender:     intField(fields, FieldGender),
		Signature:  stringField(fields, FieldSignature),
		Area:       stringField(fields, FieldArea),
		School:     stringField(fields, FieldSchool),
		IsLiving:   boolField(fields, FieldIsLiving),
		RoomID:     stringField(fields, FieldRoomID),
		CreatedAt:  TimeField(fields, FieldCreatedAt),
		LastSeenAt: TimeField(fields, FieldLastSeenAt),
	}
}

// GiftFromFields 从存储字段还原礼物
func GiftFromFields(id string, fields map[string]any) GiftRecord {
	placeholder := boolField(fields, FieldIsPlaceholder)
	return GiftRecord{
		ID:            id,
		Name:          stringField(fields, FieldName),
		ImageURL:      stringField(fields, FieldImageURL),
		DiamondValue:  intField(fields, FieldDiamondValue),
		IsPlaceholder: placeholder != nil && *placeholder,
		CreatedAt:     TimeField(fields, FieldCreatedAt),
		UpdatedAt:     TimeField(fields, FieldUpdatedAt),
	}
}

// Millis 时间戳统一以毫秒存储
func Millis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// TimeField 读取毫秒时间戳字段
func TimeField(fields map[string]any, key string) time.Time {
	ms := intField(fields, key)
	if ms == nil {
		return time.Time{}
	}
	return time.UnixMilli(*ms).UTC()
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func boolField(fields map[string]any, key string) *bool {
	b, ok := fields[key].(bool)
	if !ok {
		return nil
	}
	return &b
}

func intField(fields map[string]any, key string) *int64 {
	n, ok := AsNumber(fields[key])
	if !ok {
		return nil
	}
	v := int64(n)
	return &v
}

// AsNumber 把各种数值类型统一成 float64，JSON 往返后类型会变
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// SameValue 比较两个字段值，数值按大小比较
func SameValue(a, b any) bool {
	if an, ok := AsNumber(a); ok {
		bn, ok := AsNumber(b)
		return ok && an == bn
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}
