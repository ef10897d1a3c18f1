package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	phase Phase
	name  string
	trace *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }

func (s *recordingSystem) Update(time.Duration) {
	*s.trace = append(*s.trace, s.name)
}

func TestRunnerExecutesInPhaseOrder(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseOutput, name: "output", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseEvents, name: "events", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "update", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseInput, name: "input", trace: &trace})

	r.Tick(time.Millisecond)

	assert.Equal(t, []string{"events", "input", "update", "output"}, trace)
}

func TestRunnerRegistrationOrderBreaksTies(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "first", trace: &trace})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "second", trace: &trace})

	r.Tick(time.Millisecond)
	r.Tick(time.Millisecond)

	assert.Equal(t, []string{"first", "second", "first", "second"}, trace)
}

func TestRunnerLateRegistrationResorts(t *testing.T) {
	var trace []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "update", trace: &trace})
	r.Tick(time.Millisecond)

	r.Register(&recordingSystem{phase: PhaseEvents, name: "events", trace: &trace})
	trace = trace[:0]
	r.Tick(time.Millisecond)

	assert.Equal(t, []string{"events", "update"}, trace)
}
