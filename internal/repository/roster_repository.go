package repository

import (
	"sync"

	"github.com/noah-isme/bus-tracker-api/internal/models"
)

// RosterRepository is the authoritative in-memory store for the single bus
// served by this instance. State is memory-resident only and resets on
// restart. All reads return deep copies so callers can never mutate owned
// state in place; all writes happen under the write lock so a mutation is
// never partially visible.
type RosterRepository struct {
	mu  sync.RWMutex
	bus models.BusInfo
}

// NewRosterRepository seeds the store with the initial bus info.
func NewRosterRepository(bus models.BusInfo) *RosterRepository {
	return &RosterRepository{bus: bus.Clone()}
}

// Bus returns a deep copy of the current bus state.
func (r *RosterRepository) Bus() models.BusInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bus.Clone()
}

// Students returns a deep copy of the roster.
func (r *RosterRepository) Students() []models.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Student, len(r.bus.Students))
	for i, s := range r.bus.Students {
		out[i] = s.Clone()
	}
	return out
}

// FindStudent returns a copy of the student with the given id.
func (r *RosterRepository) FindStudent(id string) (*models.Student, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.bus.Students {
		if s.ID == id {
			c := s.Clone()
			return &c, true
		}
	}
	return nil, false
}

// MutateStudent applies fn to the stored student under the write lock and
// returns copies of the record before and after the mutation. It is a no-op
// when the id is not on the roster. The store itself performs no validation;
// whatever fn writes is accepted.
func (r *RosterRepository) MutateStudent(id string, fn func(*models.Student)) (before, after *models.Student, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bus.Students {
		if r.bus.Students[i].ID != id {
			continue
		}
		prev := r.bus.Students[i].Clone()
		fn(&r.bus.Students[i])
		next := r.bus.Students[i].Clone()
		return &prev, &next, true
	}
	return nil, nil, false
}

// MutateStudents applies fn to every roster entry under one write lock.
func (r *RosterRepository) MutateStudents(fn func(*models.Student)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bus.Students {
		fn(&r.bus.Students[i])
	}
}

// SetDriverName replaces the driver name unconditionally.
func (r *RosterRepository) SetDriverName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bus.DriverName = name
}

// SetCurrentLocation records the latest known bus position, last wins.
func (r *RosterRepository) SetCurrentLocation(loc models.BusLocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := loc
	r.bus.CurrentLocation = &l
}
