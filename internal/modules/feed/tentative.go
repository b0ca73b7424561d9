package feed

import (
	"sync"

	"astroseva/internal/domain"
)

// Tentative is a two-phase status value: a proposed status shown while a
// request is in flight, replaced by the authoritative status on response.
type Tentative struct {
	mu            sync.Mutex
	authoritative domain.BookingStatus
	proposed      domain.BookingStatus
	pending       bool
}

func NewTentative(current domain.BookingStatus) *Tentative {
	return &Tentative{authoritative: current}
}

func (t *Tentative) Propose(s domain.BookingStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.proposed = s
	t.pending = true
}

// Settle records the server's answer, whether the request succeeded or not.
func (t *Tentative) Settle(s domain.BookingStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.authoritative = s
	t.proposed = ""
	t.pending = false
}

// Fail drops the proposal and keeps the last authoritative status.
func (t *Tentative) Fail() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.proposed = ""
	t.pending = false
}

// Value returns the status to display and whether it is still tentative.
func (t *Tentative) Value() (domain.BookingStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending {
		return t.proposed, true
	}
	return t.authoritative, false
}
