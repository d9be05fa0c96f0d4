package loading

import (
	"slices"
	"strings"

	"github.com/andrescamacho/supplyload-go/internal/domain/resource"
)

// State is the mutable working copy of a manifest for one session.
//
// Invariants:
// - retryAttempts only decreases, and never below zero (see recordShortage)
// - holdFull never returns to false once set
// - entries at or below the negligible threshold are absent
type State struct {
	mandatoryResources map[resource.ResourceID]float64
	optionalResources  map[resource.ResourceID]float64
	mandatoryEquipment map[resource.EquipmentKind]int
	optionalEquipment  map[resource.EquipmentKind]int

	retryAttempts int
	holdFull      bool
}

// NewState deep-copies the manifest into a fresh working state
func NewState(manifest *Manifest, maxRetryAttempts int) *State {
	if maxRetryAttempts <= 0 {
		maxRetryAttempts = DefaultMaxRetryAttempts
	}
	return &State{
		mandatoryResources: manifest.MandatoryResources(),
		optionalResources:  manifest.OptionalResources(),
		mandatoryEquipment: manifest.MandatoryEquipment(),
		optionalEquipment:  manifest.OptionalEquipment(),
		retryAttempts:      maxRetryAttempts,
	}
}

// IsCompleted reports whether nothing is left to load or the hold is full
func (s *State) IsCompleted() bool {
	if s.holdFull {
		return true
	}
	return len(s.mandatoryResources) == 0 && len(s.optionalResources) == 0 &&
		len(s.mandatoryEquipment) == 0 && len(s.optionalEquipment) == 0
}

// IsFailure reports whether the retry budget for mandatory shortages is spent
func (s *State) IsFailure() bool {
	return s.retryAttempts <= 0
}

func (s *State) RetryAttempts() int { return s.retryAttempts }
func (s *State) HoldFull() bool     { return s.holdFull }

// recordShortage is the only place the retry counter changes
func (s *State) recordShortage() {
	if s.retryAttempts > 0 {
		s.retryAttempts--
	}
}

func (s *State) markHoldFull() {
	s.holdFull = true
}

// resourceIDs snapshots the keys of a resource map in a stable order so the
// map can be mutated while the snapshot is walked
func resourceIDs(m map[resource.ResourceID]float64) []resource.ResourceID {
	ids := make([]resource.ResourceID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b resource.ResourceID) int {
		if a.Kind() != b.Kind() {
			return int(a.Kind()) - int(b.Kind())
		}
		switch {
		case a.Value() < b.Value():
			return -1
		case a.Value() > b.Value():
			return 1
		}
		return 0
	})
	return ids
}

func equipmentKinds(m map[resource.EquipmentKind]int) []resource.EquipmentKind {
	kinds := make([]resource.EquipmentKind, 0, len(m))
	for kind := range m {
		kinds = append(kinds, kind)
	}
	slices.SortFunc(kinds, func(a, b resource.EquipmentKind) int {
		return strings.Compare(string(a), string(b))
	})
	return kinds
}
