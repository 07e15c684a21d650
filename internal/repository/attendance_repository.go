package repository

import (
	"sync"

	"github.com/noah-isme/bus-tracker-api/internal/models"
)

// AttendanceRepository keeps the immutable boarding/alighting log, newest
// first. Retention is uncapped; callers limit what they display.
type AttendanceRepository struct {
	mu      sync.RWMutex
	records []models.AttendanceRecord
}

// NewAttendanceRepository returns an empty attendance log.
func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{}
}

// Insert prepends the record.
func (r *AttendanceRepository) Insert(rec models.AttendanceRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append([]models.AttendanceRecord{rec}, r.records...)
}

// List returns up to limit records, newest first. A non-positive limit
// returns everything.
func (r *AttendanceRepository) List(limit int) []models.AttendanceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.AttendanceRecord, n)
	copy(out, r.records[:n])
	return out
}

// Count reports how many records are retained.
func (r *AttendanceRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
