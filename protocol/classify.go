package protocol

import (
	"github.com/tidwall/gjson"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/model"
)

// rule 一条分类规则，按顺序匹配，先匹配者胜出
type rule struct {
	kind  model.EventKind
	match func(obj gjson.Result) bool
	build func(obj gjson.Result) model.Event
}

// 顺序即优先级，不要随意调整
var rules = []rule{
	{model.KindLiveStatus, isLiveStatus, buildLiveStatus},
	{model.KindGift, isGift, buildGift},
	{model.KindGame, isGame, buildGame},
	{model.KindChat, isChat, buildChat},
	{model.KindUserJoin, isUserJoin, buildUserJoin},
	{model.KindRoomSnapshot, isRoomSnapshot, buildRoomSnapshot},
}

// Classify 把解码结果归类为领域事件，未命中任何规则时返回 Unclassified
func Classify(p Payload) model.Event {
	switch p.Kind {
	case PayloadStructured:
		for _, r := range rules {
			if r.match(p.Object) {
				return r.build(p.Object)
			}
		}
	case PayloadPlainText:
		if p.Text != "" {
			return model.ChatMessage{
				Text:      p.Text,
				User:      model.UserIdentity{Nickname: model.PlainTextSender},
				Synthetic: true,
			}
		}
	}
	return model.Unclassified{RawText: p.Raw}
}

func isLiveStatus(obj gjson.Result) bool {
	return has(obj, PathAnchorNickname) && has(obj, PathOnline)
}

func buildLiveStatus(obj gjson.Result) model.Event {
	online, _ := intOf(obj.Get(PathOnline))
	likes, _ := intOf(obj.Get(PathLikes))
	ev := model.LiveStatusUpdate{
		OnlineCount:    online,
		LikeCount:      likes,
		AnchorNickname: stringOf(obj.Get(PathAnchorNickname)),
	}
	anchor := identityOf(obj.Get("anchor"))
	if anchor.ID != "" {
		ev.Anchor = &anchor
	}
	return ev
}

func isGift(obj gjson.Result) bool {
	return has(obj, PathGiftID) && has(obj, PathUserNickname)
}

func buildGift(obj gjson.Result) model.Event {
	count, ok := intOf(obj.Get(PathGiftCount))
	if !ok {
		count = 1
	}
	return model.GiftEvent{
		GiftID:       stringOf(obj.Get(PathGiftID)),
		GiftCount:    count,
		User:         identityOf(obj.Get("user")),
		GiftName:     stringOf(first(obj, giftNameKeys)),
		GiftImageURL: stringOf(first(obj, giftImageKeys)),
		DiamondValue: intPtr(first(obj, giftDiamondKeys)),
	}
}

func isGame(obj gjson.Result) bool {
	return obj.Get(PathGame).IsObject() && has(obj, PathUserNickname)
}

func buildGame(obj gjson.Result) model.Event {
	game := obj.Get(PathGame)
	amount := floatPtr(first(game, gameAmountKeys))
	if amount == nil {
		amount = floatPtr(obj.Get(PathAmount))
	}
	return model.GameEvent{
		GameName: stringOf(first(game, gameNameKeys)),
		Amount:   amount,
		User:     identityOf(obj.Get("user")),
	}
}

func isChat(obj gjson.Result) bool {
	return has(obj, PathUserNickname) && has(obj, PathText)
}

func buildChat(obj gjson.Result) model.Event {
	return model.ChatMessage{
		Text: stringOf(obj.Get(PathText)),
		User: identityOf(obj.Get("user")),
	}
}

func isUserJoin(obj gjson.Result) bool {
	return has(obj, PathUserNickname) &&
		obj.Get(PathCount).Type == gjson.Number &&
		!has(obj, PathText) && !has(obj, PathGiftID) && !has(obj, PathGame)
}

func buildUserJoin(obj gjson.Result) model.Event {
	return model.UserJoinEvent{
		User:                 identityOf(obj.Get("user")),
		ViewerCountAfterJoin: obj.Get(PathCount).Int(),
	}
}

func isRoomSnapshot(obj gjson.Result) bool {
	return has(obj, PathRoomID)
}

func buildRoomSnapshot(obj gjson.Result) model.Event {
	extra := make(map[string]any)
	obj.ForEach(func(key, value gjson.Result) bool {
		if key.String() != PathRoomID {
			extra[key.String()] = value.Value()
		}
		return true
	})
	return model.RoomSnapshot{
		RoomID:      stringOf(obj.Get(PathRoomID)),
		ExtraFields: extra,
	}
}
