package service

import (
	"math/rand"
	"sync"
	"time"
)

// BadgeCounter identifies one of the navigation badge counters.
type BadgeCounter string

const (
	BadgeDepartment BadgeCounter = "department"
	BadgeResources  BadgeCounter = "resources"
	BadgeReports    BadgeCounter = "reports"
)

// BadgeStepper yields the delta applied to a counter on each refresh tick.
// Values outside -1..+1 are clamped by the store.
type BadgeStepper interface {
	Step(counter BadgeCounter) int
}

// RandomBadgeStepper draws uniform steps in -1..+1 from a seeded source.
type RandomBadgeStepper struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomBadgeStepper builds a stepper. A zero seed picks a time based one.
func NewRandomBadgeStepper(seed int64) *RandomBadgeStepper {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomBadgeStepper{rnd: rand.New(rand.NewSource(seed))}
}

// Step implements BadgeStepper.
func (s *RandomBadgeStepper) Step(BadgeCounter) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(3) - 1
}

// SequenceBadgeStepper replays fixed steps per counter, repeating the last one once exhausted.
type SequenceBadgeStepper struct {
	mu    sync.Mutex
	steps map[BadgeCounter][]int
	pos   map[BadgeCounter]int
}

// NewSequenceBadgeStepper builds a deterministic stepper.
func NewSequenceBadgeStepper(steps map[BadgeCounter][]int) *SequenceBadgeStepper {
	return &SequenceBadgeStepper{steps: steps, pos: make(map[BadgeCounter]int)}
}

// ConstantBadgeStepper always returns the same step for every counter.
func ConstantBadgeStepper(step int) *SequenceBadgeStepper {
	return NewSequenceBadgeStepper(map[BadgeCounter][]int{
		BadgeDepartment: {step},
		BadgeResources:  {step},
		BadgeReports:    {step},
	})
}

// Step implements BadgeStepper.
func (s *SequenceBadgeStepper) Step(counter BadgeCounter) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.steps[counter]
	if len(seq) == 0 {
		return 0
	}
	i := s.pos[counter]
	if i >= len(seq) {
		return seq[len(seq)-1]
	}
	s.pos[counter] = i + 1
	return seq[i]
}

func clampStep(step int) int {
	switch {
	case step > 1:
		return 1
	case step < -1:
		return -1
	default:
		return step
	}
}

func nextBadgeValue(current, step int) int {
	next := current + clampStep(step)
	if next < 0 {
		return 0
	}
	return next
}
