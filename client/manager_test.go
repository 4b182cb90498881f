package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	ff := &fakeFactory{}
	m := NewManager(ff.New, nil)

	require.NoError(t, m.AddRoom("wss://live.example/ws?roomId=2"))
	require.NoError(t, m.AddRoom("wss://live.example/ws?roomId=1"))
	assert.Error(t, m.AddRoom("wss://live.example/ws?roomId=1"), "duplicate")
	assert.ErrorIs(t, m.AddRoom("ftp://live.example"), ErrInvalidAddress)

	assert.Equal(t, []string{"wss://live.example/ws?roomId=1", "wss://live.example/ws?roomId=2"}, m.GetRooms())
	for _, st := range m.GetStatus() {
		assert.Equal(t, StatusIdle, st)
	}

	m.Start()
	assert.Equal(t, 2, ff.count())
	for _, st := range m.GetStatus() {
		assert.Equal(t, StatusConnecting, st)
	}

	require.NoError(t, m.AddRoom("wss://live.example/ws?roomId=3"), "added while running connects")
	assert.Equal(t, 3, ff.count())
	ff.last().open()
	require.NoError(t, m.Send("wss://live.example/ws?roomId=3", "oi"))
	assert.Error(t, m.Send("wss://live.example/ws?roomId=9", "oi"))

	m.RemoveRoom("wss://live.example/ws?roomId=3")
	assert.True(t, ff.last().isClosed())
	assert.Len(t, m.GetRooms(), 2)

	m.Stop()
	for _, st := range m.GetStatus() {
		assert.Equal(t, StatusManuallyClosed, st)
	}
}
