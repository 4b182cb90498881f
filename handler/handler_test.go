package handler

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/metric"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/model"
)

func newTestDispatcher(gw *recordingGateway, opts ...DispatcherOption) *Dispatcher {
	return NewDispatcher(NewProfileMerger(gw), NewGiftMerger(gw), opts...)
}

func TestDispatchGiftMergesGiftAndSender(t *testing.T) {
	gw := newRecordingGateway()
	d := newTestDispatcher(gw)

	d.Dispatch(model.Envelope{RoomID: "r1", Event: model.GiftEvent{
		GiftID: "40", GiftCount: 2, User: model.UserIdentity{ID: "u1", Nickname: "Bob"},
	}})
	d.Wait()

	assert.Equal(t, 1, gw.Len(model.CollectionGifts))
	assert.Equal(t, 1, gw.Len(model.CollectionProfiles))
}

func TestDispatchAnchorDefaultsToLiving(t *testing.T) {
	gw := newRecordingGateway()
	d := newTestDispatcher(gw)

	d.Dispatch(model.Envelope{RoomID: "r1", Event: model.LiveStatusUpdate{
		OnlineCount: 3, AnchorNickname: "Host",
		Anchor: &model.UserIdentity{ID: "a1", Nickname: "Host"},
	}})
	d.Wait()

	rec, ok, err := d.profiles.Get(context.Background(), "a1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, rec.IsLiving)
	assert.True(t, *rec.IsLiving)
	assert.Equal(t, "r1", rec.RoomID)
}

func TestDispatchSkipsEventsWithoutMerge(t *testing.T) {
	gw := newRecordingGateway()
	var mu sync.Mutex
	var seen []model.EventKind
	d := newTestDispatcher(gw, WithObserver(func(env model.Envelope) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, env.Event.Kind())
	}))

	events := []model.Event{
		model.Unclassified{RawText: "??"},
		model.RoomSnapshot{RoomID: "r1"},
		model.ChatMessage{Text: "oi", User: model.UserIdentity{Nickname: model.PlainTextSender}, Synthetic: true},
		model.ChatMessage{Text: "oi", User: model.UserIdentity{Nickname: "no id"}},
		model.LiveStatusUpdate{AnchorNickname: "Host"},
	}
	for _, ev := range events {
		d.Dispatch(model.Envelope{RoomID: "r1", Event: ev})
	}
	d.Wait()

	assert.Empty(t, gw.Writes())
	assert.Len(t, seen, len(events))
	assert.Equal(t, model.KindUnclassified, seen[0])
}

func TestDispatchProfileEvents(t *testing.T) {
	gw := newRecordingGateway()
	d := newTestDispatcher(gw, WithObserver(nil))

	d.Dispatch(model.Envelope{Event: model.ChatMessage{Text: "oi", User: model.UserIdentity{ID: "u1", Nickname: "Ana"}}})
	d.Dispatch(model.Envelope{Event: model.GameEvent{GameName: "Roleta", User: model.UserIdentity{ID: "u2", Nickname: "Cai"}}})
	d.Dispatch(model.Envelope{Event: model.UserJoinEvent{User: model.UserIdentity{ID: "u3", Nickname: "Dani"}, ViewerCountAfterJoin: 9}})
	d.Wait()

	assert.Equal(t, 3, gw.Len(model.CollectionProfiles))
}

func TestDispatchWriteFailureIsCounted(t *testing.T) {
	gw := newRecordingGateway()
	gw.fail = errBoom
	m := metric.NewMetrics(nil)
	d := newTestDispatcher(gw, WithDispatcherMetrics(m), WithObserver(nil))

	d.Dispatch(model.Envelope{Event: model.ChatMessage{Text: "oi", User: model.UserIdentity{ID: "u1", Nickname: "Ana"}}})
	d.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MergeErrors.WithLabelValues(model.CollectionProfiles)))
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	k := newKeyedMutex()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("same")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, k.locks)
}

func TestDispatchKeepsPerIDOrder(t *testing.T) {
	gw := newRecordingGateway()
	d := newTestDispatcher(gw, WithObserver(nil))

	for i := 0; i < 20; i++ {
		d.Dispatch(model.Envelope{Event: model.ChatMessage{
			Text: "oi", User: model.UserIdentity{ID: "u1", Nickname: string(rune('a' + i))},
		}})
	}
	d.Wait()

	rec, _, err := d.profiles.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, string(rune('a'+19)), rec.Nickname)
	assert.Len(t, gw.Writes(), 20)
}

func TestKeyedQueueRunsInOrder(t *testing.T) {
	q := newKeyedQueue()
	var wg sync.WaitGroup
	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		q.Submit("k", func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}
