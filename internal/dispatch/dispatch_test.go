package dispatch

import (
	"testing"

	"github.com/gridgate/server/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testPeer struct{ name string }

func TestDispatchRoutesById(t *testing.T) {
	d := NewDispatcher[*testPeer](zap.NewNop())

	var gotPeer *testPeer
	var gotPayload []byte
	d.MustRegister(42, func(p *testPeer, payload []byte, _ uint16) {
		gotPeer = p
		gotPayload = payload
	})

	peer := &testPeer{name: "gw"}
	require.True(t, d.Dispatch(peer, 42, []byte{1, 2}, 2))
	assert.Same(t, peer, gotPeer)
	assert.Equal(t, []byte{1, 2}, gotPayload)
}

func TestDispatchUnknownIdIsNotFatal(t *testing.T) {
	d := NewDispatcher[*testPeer](zap.NewNop())

	assert.False(t, d.Dispatch(&testPeer{}, 99, nil, 0))
	assert.False(t, d.Dispatch(&testPeer{}, protocol.MaxPacketID+1, nil, 0))
}

func TestRegisterRejectsOutOfRangeId(t *testing.T) {
	d := NewDispatcher[*testPeer](zap.NewNop())

	assert.Error(t, d.Register(protocol.MaxPacketID, nil))
	assert.Panics(t, func() {
		d.MustRegister(protocol.MaxPacketID, nil)
	})
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	d := NewDispatcher[*testPeer](zap.NewNop())
	d.MustRegister(7, func(*testPeer, []byte, uint16) {
		panic("bad packet")
	})

	assert.NotPanics(t, func() {
		d.Dispatch(&testPeer{}, 7, nil, 0)
	})
}
