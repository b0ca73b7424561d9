package feed

import (
	"sort"
	"sync"

	"astroseva/internal/domain"
	"astroseva/internal/modules/booking"
)

// Mirror is a client-side copy of a booking listing kept current by feed
// events. Events are merged by id; one older than the local row (by
// updated_at) is ignored.
type Mirror struct {
	mu        sync.RWMutex
	rows      map[string]booking.BookingView
	tentative map[string]*Tentative
}

func NewMirror() *Mirror {
	return &Mirror{
		rows:      make(map[string]booking.BookingView),
		tentative: make(map[string]*Tentative),
	}
}

// Load replaces the mirror's contents with a fresh listing.
func (m *Mirror) Load(rows []booking.BookingView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[string]booking.BookingView, len(rows))
	for _, r := range rows {
		m.rows[r.ID] = r
	}
}

// Apply merges one change and reports whether the mirror changed.
func (m *Mirror) Apply(t domain.ChangeType, row booking.BookingView) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	local, exists := m.rows[row.ID]
	if exists && local.UpdatedAt.After(row.UpdatedAt) {
		return false
	}

	switch t {
	case domain.ChangeDelete:
		if !exists {
			return false
		}
		delete(m.rows, row.ID)
		delete(m.tentative, row.ID)
		return true
	case domain.ChangeInsert, domain.ChangeUpdate:
		m.rows[row.ID] = row
		return true
	default:
		return false
	}
}

func (m *Mirror) Get(id string) (booking.BookingView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.overlay(id)
}

func (m *Mirror) overlay(id string) (booking.BookingView, bool) {
	row, ok := m.rows[id]
	if !ok {
		return booking.BookingView{}, false
	}
	if t, ok := m.tentative[id]; ok {
		if s, pending := t.Value(); pending {
			row.Status = s
		}
	}
	return row, true
}

// Snapshot returns the rows newest first, with tentative statuses applied.
func (m *Mirror) Snapshot() []booking.BookingView {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]booking.BookingView, 0, len(m.rows))
	for id := range m.rows {
		row, _ := m.overlay(id)
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Propose shows status for id before the server has answered.
func (m *Mirror) Propose(id string, status domain.BookingStatus) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return false
	}
	t := NewTentative(row.Status)
	t.Propose(status)
	m.tentative[id] = t
	return true
}

// Pending reports whether id has an unanswered proposal.
func (m *Mirror) Pending(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tentative[id]
	if !ok {
		return false
	}
	_, pending := t.Value()
	return pending
}

// Resolve ends a proposal with the server's answer. On success row is the
// updated booking; on failure it is nil and the pre-proposal status returns.
// The answer goes through the same ordering as Apply: it never replaces a
// newer local row and never brings back a deleted one.
func (m *Mirror) Resolve(id string, row *booking.BookingView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tentative[id]; ok {
		if row != nil {
			t.Settle(row.Status)
		} else {
			t.Fail()
		}
		delete(m.tentative, id)
	}
	if row == nil {
		return
	}
	local, exists := m.rows[id]
	if !exists || local.UpdatedAt.After(row.UpdatedAt) {
		return
	}
	m.rows[id] = *row
}
