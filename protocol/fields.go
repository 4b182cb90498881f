package protocol

import (
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/model"
)

// 帧中的字段路径
const (
	PathAnchorNickname = "anchor.nickname"
	PathOnline         = "online"
	PathLikes          = "likes"
	PathGiftID         = "giftId"
	PathGiftCount      = "giftCount"
	PathUserNickname   = "user.nickname"
	PathGame           = "game"
	PathText           = "text"
	PathCount          = "count"
	PathRoomID         = "roomId"
	PathAmount         = "amount"
)

var (
	idKeys        = []string{"id", "userId", "uid"}
	avatarKeys    = []string{"avatar", "avatarUrl"}
	signatureKeys = []string{"signature", "sign"}

	giftNameKeys    = []string{"giftName", "gift.name"}
	giftImageKeys   = []string{"giftImage", "gift.image", "gift.icon"}
	giftDiamondKeys = []string{"diamond", "gift.diamond"}

	gameNameKeys   = []string{"name", "gameName", "title"}
	gameAmountKeys = []string{"amount"}
)

// present 字段存在且不为 null
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func has(obj gjson.Result, path string) bool {
	return present(obj.Get(path))
}

// first 返回第一个存在的字段
func first(obj gjson.Result, keys []string) gjson.Result {
	for _, key := range keys {
		if r := obj.Get(key); present(r) {
			return r
		}
	}
	return gjson.Result{}
}

func stringOf(r gjson.Result) string {
	if !present(r) || r.IsObject() || r.IsArray() {
		return ""
	}
	return r.String()
}

func intOf(r gjson.Result) (int64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Int(), true
	case gjson.String:
		n, err := strconv.ParseInt(r.Str, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func intPtr(r gjson.Result) *int64 {
	n, ok := intOf(r)
	if !ok {
		return nil
	}
	return &n
}

func floatPtr(r gjson.Result) *float64 {
	switch r.Type {
	case gjson.Number:
		f := r.Float()
		return &f
	case gjson.String:
		f, err := strconv.ParseFloat(r.Str, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func boolPtr(r gjson.Result) *bool {
	var b bool
	switch r.Type {
	case gjson.True:
		b = true
	case gjson.False:
		b = false
	case gjson.Number:
		b = r.Num != 0
	default:
		return nil
	}
	return &b
}

// identityOf 解析 user / anchor 对象
func identityOf(obj gjson.Result) model.UserIdentity {
	return model.UserIdentity{
		ID:        stringOf(first(obj, idKeys)),
		Nickname:  stringOf(obj.Get("nickname")),
		AvatarURL: stringOf(first(obj, avatarKeys)),
		Level:     intPtr(obj.Get("level")),
		NumID:     stringOf(obj.Get("numId")),
		ShowID:    stringOf(obj.Get("showId")),
		Gender:    intPtr(obj.Get("gender")),
		Signature: stringOf(first(obj, signatureKeys)),
		IsLiving:  boolPtr(obj.Get("isLiving")),
		RoomID:    stringOf(obj.Get("roomId")),
	}
}
