package model

// UserIdentity 事件中携带的用户信息，除 ID 外均可缺省
type UserIdentity struct {
	ID        string
	Nickname  string
	AvatarURL string
	Level     *int64
	NumID     string
	ShowID    string
	Gender    *int64
	Signature string
	IsLiving  *bool
	RoomID    string
}

// Fields 只返回有值的字段
func (u UserIdentity) Fields() map[string]any {
	fields := make(map[string]any)
	putString(fields, FieldNickname, u.Nickname)
	putString(fields, FieldAvatarURL, u.AvatarURL)
	putString(fields, FieldNumID, u.NumID)
	putString(fields, FieldShowID, u.ShowID)
	putString(fields, FieldSignature, u.Signature)
	putString(fields, FieldRoomID, u.RoomID)
	if u.Level != nil {
		fields[FieldLevel] = *u.Level
	}
	if u.Gender != nil {
		fields[FieldGender] = *u.Gender
	}
	if u.IsLiving != nil {
		fields[FieldIsLiving] = *u.IsLiving
	}
	return fields
}

func putString(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
