package models

import "time"

// Provenance tells consumers where a value came from.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceCached   Provenance = "cached"
	ProvenanceFallback Provenance = "fallback"
)

// Sourced wraps a value with its provenance.
type Sourced[T any] struct {
	Value      T          `json:"value"`
	Provenance Provenance `json:"provenance"`
	FetchedAt  time.Time  `json:"fetchedAt"`
	Error      string     `json:"error,omitempty"`
}

// Live reports whether the value came from a successful upstream call.
func (s Sourced[T]) Live() bool {
	return s.Provenance == ProvenanceLive
}
