package system

import "time"

// Phase defines execution ordering within a single simulation tick.
type Phase int

const (
	PhaseEvents Phase = iota // 0: deliver last tick's events
	PhaseInput               // 1: drain gateway packet queues
	PhaseUpdate              // 2: monster AI, combat
	PhaseOutput              // 3: periodic state sync to gateways
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
