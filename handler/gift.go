package handler

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/model"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/store"
)

// PlaceholderName 未知礼物的默认名称
func PlaceholderName(id string) string {
	return "Gift " + id
}

// PlaceholderImage 未知礼物的默认图片
func PlaceholderImage(id string) string {
	return "https://placehold.co/96x96?text=" + url.QueryEscape(id)
}

// GiftMerger 维护礼物目录，占位数据只能被真实数据替换，反之不行
type GiftMerger struct {
	gw    store.Gateway
	locks *keyedMutex
	cfg   mergerConfig
}

func NewGiftMerger(gw store.Gateway, opts ...Option) *GiftMerger {
	return &GiftMerger{
		gw:    gw,
		locks: newKeyedMutex(),
		cfg:   newMergerConfig(opts),
	}
}

// Merge 合并一次礼物观察
func (m *GiftMerger) Merge(ctx context.Context, obs model.GiftObservation) (MergeResult, error) {
	if obs.ID == "" {
		return MergeResult{}, ErrMissingID
	}

	unlock := m.locks.Lock(obs.ID)
	defer unlock()

	existing, ok, err := m.gw.Get(ctx, model.CollectionGifts, obs.ID)
	if err != nil {
		return MergeResult{}, fmt.Errorf("get gift %s: %w", obs.ID, err)
	}
	now := m.cfg.now()
	if !ok {
		return m.create(ctx, obs, model.Millis(now))
	}

	current := model.GiftFromFields(obs.ID, existing)
	changed := make(store.Fields)
	if isRealName(obs.ID, obs.Name) && obs.Name != current.Name {
		changed[model.FieldName] = obs.Name
	}
	if isRealImage(obs.ID, obs.ImageURL) && obs.ImageURL != current.ImageURL {
		changed[model.FieldImageURL] = obs.ImageURL
	}
	if obs.DiamondValue != nil && !model.SameValue(existing[model.FieldDiamondValue], *obs.DiamondValue) {
		changed[model.FieldDiamondValue] = *obs.DiamondValue
	}

	promoted := false
	if current.IsPlaceholder {
		name, image := current.Name, current.ImageURL
		if v, ok := changed[model.FieldName].(string); ok {
			name = v
		}
		if v, ok := changed[model.FieldImageURL].(string); ok {
			image = v
		}
		if isRealName(obs.ID, name) && isRealImage(obs.ID, image) {
			changed[model.FieldIsPlaceholder] = false
			promoted = true
		}
	}

	if len(changed) == 0 {
		return MergeResult{}, nil
	}
	changed[model.FieldUpdatedAt] = laterMillis(now, existing, model.FieldUpdatedAt)

	err = m.gw.Update(ctx, model.CollectionGifts, obs.ID, changed)
	if errors.Is(err, store.ErrNotFound) {
		return m.create(ctx, obs, model.Millis(now))
	}
	if err != nil {
		return MergeResult{}, fmt.Errorf("update gift %s: %w", obs.ID, err)
	}
	m.cfg.countWrite(model.CollectionGifts, modeUpdate)
	return MergeResult{Fields: fieldNames(changed), Promoted: promoted}, nil
}

func (m *GiftMerger) create(ctx context.Context, obs model.GiftObservation, nowMs int64) (MergeResult, error) {
	name, image := obs.Name, obs.ImageURL
	placeholder := false
	if !isRealName(obs.ID, name) {
		name = PlaceholderName(obs.ID)
		placeholder = true
	}
	if !isRealImage(obs.ID, image) {
		image = PlaceholderImage(obs.ID)
		placeholder = true
	}

	fields := store.Fields{
		model.FieldName:          name,
		model.FieldImageURL:      image,
		model.FieldDiamondValue:  nil,
		model.FieldIsPlaceholder: placeholder,
		model.FieldCreatedAt:     nowMs,
		model.FieldUpdatedAt:     nowMs,
	}
	if obs.DiamondValue != nil {
		fields[model.FieldDiamondValue] = *obs.DiamondValue
	}
	if err := m.gw.Set(ctx, model.CollectionGifts, obs.ID, fields, true); err != nil {
		return MergeResult{}, fmt.Errorf("create gift %s: %w", obs.ID, err)
	}
	m.cfg.countWrite(model.CollectionGifts, modeCreate)
	return MergeResult{Created: true, Fields: fieldNames(fields)}, nil
}

// Get 读取礼物
func (m *GiftMerger) Get(ctx context.Context, id string) (model.GiftRecord, bool, error) {
	fields, ok, err := m.gw.Get(ctx, model.CollectionGifts, id)
	if err != nil || !ok {
		return model.GiftRecord{}, ok, err
	}
	return model.GiftFromFields(id, fields), true, nil
}

func isRealName(id, name string) bool {
	return name != "" && name != PlaceholderName(id)
}

func isRealImage(id, image string) bool {
	return image != "" && image != PlaceholderImage(id)
}
