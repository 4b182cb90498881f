package handler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/metric"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/model"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/utils"
)

// Observer 收到每个事件（包括无法分类的）时回调，用于外部展示
type Observer func(env model.Envelope)

// Dispatcher 把事件分发给合并器，合并在后台执行，不阻塞读帧
type Dispatcher struct {
	profiles *ProfileMerger
	gifts    *GiftMerger
	observer Observer
	timeout  time.Duration
	metrics  *metric.Metrics
	queue    *keyedQueue
	wg       sync.WaitGroup
}

// DispatcherOption 分发器选项
type DispatcherOption func(*Dispatcher)

// WithObserver 设置事件观察者
func WithObserver(o Observer) DispatcherOption {
	return func(d *Dispatcher) { d.observer = o }
}

// WithWriteTimeout 单次合并的超时
func WithWriteTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithDispatcherMetrics 记录合并失败次数
func WithDispatcherMetrics(m *metric.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func NewDispatcher(profiles *ProfileMerger, gifts *GiftMerger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		profiles: profiles,
		gifts:    gifts,
		observer: LogObserver,
		timeout:  10 * time.Second,
		queue:    newKeyedQueue(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch 非阻塞地分发一个事件
func (d *Dispatcher) Dispatch(env model.Envelope) {
	if d.observer != nil {
		d.observer(env)
	}

	switch ev := env.Event.(type) {
	case model.LiveStatusUpdate:
		if ev.Anchor != nil {
			anchor := *ev.Anchor
			if anchor.IsLiving == nil {
				living := true
				anchor.IsLiving = &living
			}
			d.mergeProfile(env.RoomID, anchor, MergeOptions{IsAnchor: true, RoomID: env.RoomID})
		}
	case model.GiftEvent:
		d.mergeGift(env.RoomID, model.GiftObservation{
			ID:           ev.GiftID,
			Name:         ev.GiftName,
			ImageURL:     ev.GiftImageURL,
			DiamondValue: ev.DiamondValue,
		})
		d.mergeProfile(env.RoomID, ev.User, MergeOptions{RoomID: env.RoomID})
	case model.GameEvent:
		d.mergeProfile(env.RoomID, ev.User, MergeOptions{RoomID: env.RoomID})
	case model.ChatMessage:
		if !ev.Synthetic {
			d.mergeProfile(env.RoomID, ev.User, MergeOptions{RoomID: env.RoomID})
		}
	case model.UserJoinEvent:
		d.mergeProfile(env.RoomID, ev.User, MergeOptions{RoomID: env.RoomID})
	}
}

// Wait 等待进行中的合并结束
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) mergeProfile(roomID string, identity model.UserIdentity, opts MergeOptions) {
	if d.profiles == nil {
		return
	}
	if identity.ID == "" {
		utils.Logger.Debugf("房间 %s 用户 %s 没有 id，跳过档案合并", roomID, identity.Nickname)
		return
	}
	d.run(model.CollectionProfiles, identity.ID, func(ctx context.Context) (MergeResult, error) {
		return d.profiles.Merge(ctx, identity, opts)
	})
}

func (d *Dispatcher) mergeGift(roomID string, obs model.GiftObservation) {
	if d.gifts == nil {
		return
	}
	if obs.ID == "" {
		utils.Logger.Debugf("房间 %s 礼物没有 id，跳过", roomID)
		return
	}
	d.run(model.CollectionGifts, obs.ID, func(ctx context.Context) (MergeResult, error) {
		return d.gifts.Merge(ctx, obs)
	})
}

// run 同一记录的合并按到达顺序执行；失败只记录日志，不重试，下一次观察会再次合并
func (d *Dispatcher) run(collection, id string, merge func(ctx context.Context) (MergeResult, error)) {
	d.wg.Add(1)
	d.queue.Submit(collection+"/"+id, func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		res, err := merge(ctx)
		log := utils.Logger.WithFields(logrus.Fields{"collection": collection, "id": id})
		if err != nil {
			if d.metrics != nil {
				d.metrics.MergeErrors.WithLabelValues(collection).Inc()
			}
			log.WithError(err).Error("合并写入失败")
			return
		}
		if res.Wrote() {
			log.WithFields(logrus.Fields{"created": res.Created, "fields": res.Fields}).Debug("合并写入")
		}
	})
}

// LogObserver 默认观察者，按事件类型输出日志
func LogObserver(env model.Envelope) {
	switch ev := env.Event.(type) {
	case model.LiveStatusUpdate:
		utils.Logger.Infof("房间%s 状态 - 主播 %s 在线 %d 点赞 %d", env.RoomID, ev.AnchorNickname, ev.OnlineCount, ev.LikeCount)
	case model.GiftEvent:
		utils.Logger.Infof("房间%s 礼物 - %s: %d个 #%s", env.RoomID, ev.User.Nickname, ev.GiftCount, ev.GiftID)
	case model.GameEvent:
		utils.Logger.Infof("房间%s 游戏 - %s: %s", env.RoomID, ev.User.Nickname, ev.GameName)
	case model.ChatMessage:
		utils.Logger.Infof("房间%s 弹幕 - %s: %s", env.RoomID, ev.User.Nickname, ev.Text)
	case model.UserJoinEvent:
		utils.Logger.Infof("房间%s 进房 - %s (在线 %d)", env.RoomID, ev.User.Nickname, ev.ViewerCountAfterJoin)
	case model.RoomSnapshot:
		utils.Logger.Debugf("房间%s 快照 - %d 个字段", env.RoomID, len(ev.ExtraFields))
	case model.Unclassified:
		utils.Logger.Warnf("房间%s 未识别的消息: %s", env.RoomID, ev.RawText)
	}
}
