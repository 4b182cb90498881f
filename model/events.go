package model

import "time"

// EventKind 事件类型标识，用于日志与指标
type EventKind string

const (
	KindLiveStatus   EventKind = "live_status"
	KindRoomSnapshot EventKind = "room_snapshot"
	KindGame         EventKind = "game"
	KindGift         EventKind = "gift"
	KindChat         EventKind = "chat"
	KindUserJoin     EventKind = "user_join"
	KindUnclassified EventKind = "unclassified"
)

// PlainTextSender 纯文本帧的合成发送者昵称
const PlainTextSender = "[texto]"

// Event 分类后的领域事件，只能是本包定义的几种
type Event interface {
	Kind() EventKind
	isEvent()
}

// 直播状态（在线人数、点赞数、主播）
type LiveStatusUpdate struct {
	OnlineCount    int64
	LikeCount      int64
	AnchorNickname string
	// Anchor 仅当帧中带有主播 id 时非空
	Anchor *UserIdentity
}

// 房间快照
type RoomSnapshot struct {
	RoomID      string
	ExtraFields map[string]any
}

// 游戏事件
type GameEvent struct {
	GameName string
	Amount   *float64
	User     UserIdentity
}

// 礼物事件
type GiftEvent struct {
	GiftID    string
	GiftCount int64
	User      UserIdentity
	// 直播流不一定带礼物元数据
	GiftName     string
	GiftImageURL string
	DiamondValue *int64
}

// 聊天消息
type ChatMessage struct {
	Text      string
	User      UserIdentity
	Synthetic bool
}

// 进房事件
type UserJoinEvent struct {
	User                 UserIdentity
	ViewerCountAfterJoin int64
}

// 无法分类的帧，保留原文用于诊断
type Unclassified struct {
	RawText string
}

func (LiveStatusUpdate) Kind() EventKind { return KindLiveStatus }
func (RoomSnapshot) Kind() EventKind     { return KindRoomSnapshot }
func (GameEvent) Kind() EventKind        { return KindGame }
func (GiftEvent) Kind() EventKind        { return KindGift }
func (ChatMessage) Kind() EventKind      { return KindChat }
func (UserJoinEvent) Kind() EventKind    { return KindUserJoin }
func (Unclassified) Kind() EventKind     { return KindUnclassified }

func (LiveStatusUpdate) isEvent() {}
func (RoomSnapshot) isEvent()     {}
func (GameEvent) isEvent()        {}
func (GiftEvent) isEvent()        {}
func (ChatMessage) isEvent()      {}
func (UserJoinEvent) isEvent()    {}
func (Unclassified) isEvent()     {}

// Envelope 事件及其来源房间
type Envelope struct {
	RoomID     string
	ReceivedAt time.Time
	Event      Event
}
