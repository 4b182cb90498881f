package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/model"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/store"
)

// MergeOptions 档案合并的附加信息
type MergeOptions struct {
	// IsAnchor 只有主播才记录 isLiving / roomId
	IsAnchor bool
	// RoomID 当前连接的房间
	RoomID string
}

// ProfileMerger 把事件中的用户信息合并进档案
type ProfileMerger struct {
	gw    store.Gateway
	locks *keyedMutex
	cfg   mergerConfig
}

func NewProfileMerger(gw store.Gateway, opts ...Option) *ProfileMerger {
	return &ProfileMerger{
		gw:    gw,
		locks: newKeyedMutex(),
		cfg:   newMergerConfig(opts),
	}
}

// Merge 不存在则创建；存在则只写变化的字段并刷新 lastSeenAt，从不删除未提及的字段
func (m *ProfileMerger) Merge(ctx context.Context, identity model.UserIdentity, opts MergeOptions) (MergeResult, error) {
	if identity.ID == "" {
		return MergeResult{}, ErrMissingID
	}

	incoming := store.Fields(identity.Fields())
	if opts.IsAnchor {
		if _, ok := incoming[model.FieldRoomID]; !ok && opts.RoomID != "" {
			incoming[model.FieldRoomID] = opts.RoomID
		}
	} else {
		delete(incoming, model.FieldIsLiving)
		delete(incoming, model.FieldRoomID)
	}

	unlock := m.locks.Lock(identity.ID)
	defer unlock()

	existing, ok, err := m.gw.Get(ctx, model.CollectionProfiles, identity.ID)
	if err != nil {
		return MergeResult{}, fmt.Errorf("get profile %s: %w", identity.ID, err)
	}
	now := m.cfg.now()
	if !ok {
		return m.create(ctx, identity.ID, incoming, model.Millis(now))
	}

	changed := make(store.Fields)
	for k, v := range incoming {
		if !model.SameValue(existing[k], v) {
			changed[k] = v
		}
	}
	mode := modeUpdate
	if len(changed) == 0 {
		mode = modeTouch
	}
	changed[model.FieldLastSeenAt] = laterMillis(now, existing, model.FieldLastSeenAt)

	err = m.gw.Update(ctx, model.CollectionProfiles, identity.ID, changed)
	if errors.Is(err, store.ErrNotFound) {
		// 读写之间被外部删除，按新档案处理
		return m.create(ctx, identity.ID, incoming, model.Millis(now))
	}
	if err != nil {
		return MergeResult{}, fmt.Errorf("update profile %s: %w", identity.ID, err)
	}
	m.cfg.countWrite(model.CollectionProfiles, mode)
	return MergeResult{Fields: fieldNames(changed)}, nil
}

func (m *ProfileMerger) create(ctx context.Context, id string, incoming store.Fields, nowMs int64) (MergeResult, error) {
	fields := incoming.Clone()
	fields[model.FieldCreatedAt] = nowMs
	fields[model.FieldLastSeenAt] = nowMs
	if err := m.gw.Set(ctx, model.CollectionProfiles, id, fields, true); err != nil {
		return MergeResult{}, fmt.Errorf("create profile %s: %w", id, err)
	}
	m.cfg.countWrite(model.CollectionProfiles, modeCreate)
	return MergeResult{Created: true, Fields: fieldNames(fields)}, nil
}

// Get 读取档案
func (m *ProfileMerger) Get(ctx context.Context, id string) (model.ProfileRecord, bool, error) {
	fields, ok, err := m.gw.Get(ctx, model.CollectionProfiles, id)
	if err != nil || !ok {
		return model.ProfileRecord{}, ok, err
	}
	return model.ProfileFromFields(id, fields), true, nil
}
