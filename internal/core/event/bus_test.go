package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ping struct{ N int }
type pong struct{ N int }

func TestEventsDeliverAfterSwap(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(ev ping) { got = append(got, ev.N) })

	Emit(b, ping{N: 1})
	Emit(b, ping{N: 2})

	// Nothing moves until the buffers rotate.
	b.DispatchAll()
	assert.Empty(t, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got)

	// A second rotation delivers nothing twice.
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got)
}

func TestEmitDuringDispatchLandsNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(ev ping) {
		got = append(got, ev.N)
		if ev.N < 3 {
			Emit(b, ping{N: ev.N + 1})
		}
	})

	Emit(b, ping{N: 1})
	for i := 0; i < 3; i++ {
		b.SwapBuffers()
		b.DispatchAll()
	}

	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestHandlersAreTypeScoped(t *testing.T) {
	b := NewBus()
	var pings, pongs int
	Subscribe(b, func(ping) { pings++ })
	Subscribe(b, func(pong) { pongs++ })

	Emit(b, ping{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, pings)
	assert.Equal(t, 0, pongs)
}
