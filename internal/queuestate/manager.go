// Package queuestate maintains the membership list and derived statistics of a queue.
//
// Every operation works on an already loaded *domain.Queue and either applies fully or
// returns an error with the queue untouched. Loading and saving belong to the caller.
package queuestate

import (
	"math"
	"time"

	"github.com/queuely/queue-service/internal/domain"
)

// DefaultServiceMinutes is used by the wait estimate until an average is known.
const DefaultServiceMinutes = 15

// Manager applies queue operations using its clock for timestamps.
type Manager struct {
	now func() time.Time
}

// NewManager returns a manager using the wall clock.
func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// NewManagerWithClock returns a manager reading time from now.
func NewManagerWithClock(now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{now: now}
}

// Served describes the member removed by CallNext.
type Served struct {
	UserID   string
	Position int
	WaitTime int
	ServedAt time.Time
}

// Summary is the public projection returned by Search.
type Summary struct {
	ID                string
	Name              string
	Description       string
	Category          domain.QueueCategory
	Capacity          int
	Status            domain.QueueStatus
	CurrentUsersCount int
	CreatedAt         time.Time
	Position          int
	EstimatedWaitTime int
	Revision          int64
}

// Join appends userID to the back of the queue and returns the assigned position.
func (m *Manager) Join(q *domain.Queue, userID string) (int, error) {
	if q.Status != domain.QueueStatusActive {
		return 0, ErrNotActive
	}
	if len(q.Members) >= q.Capacity {
		return 0, ErrFull
	}
	if indexOf(q, userID) >= 0 {
		return 0, ErrAlreadyMember
	}

	position := len(q.Members) + 1
	q.Members = append(q.Members, domain.Membership{
		UserID:   userID,
		JoinedAt: m.now(),
		Position: position,
	})
	q.Stats.TotalJoined++
	return position, nil
}

// Leave removes userID wherever it sits and returns its position before removal.
func (m *Manager) Leave(q *domain.Queue, userID string) (int, error) {
	idx := indexOf(q, userID)
	if idx < 0 {
		return 0, ErrNotMember
	}

	previous := q.Members[idx].Position
	q.Members = append(q.Members[:idx:idx], q.Members[idx+1:]...)
	renumber(q)
	return previous, nil
}

// CallNext serves the front member, records its wait and refreshes the average.
func (m *Manager) CallNext(q *domain.Queue) (Served, error) {
	if q.Status != domain.QueueStatusActive {
		return Served{}, ErrNotActive
	}
	if len(q.Members) == 0 {
		return Served{}, ErrEmpty
	}

	now := m.now()
	front := q.Members[0]
	waited := wholeMinutes(now.Sub(front.JoinedAt))

	q.Members = append([]domain.Membership(nil), q.Members[1:]...)
	renumber(q)

	q.Served = append(q.Served, domain.ServedRecord{
		UserID:   front.UserID,
		ServedAt: now,
		WaitTime: waited,
	})
	q.Stats.TotalServed++
	q.Stats.AverageWaitTime = averageWait(q.Served)

	return Served{
		UserID:   front.UserID,
		Position: front.Position,
		WaitTime: waited,
		ServedAt: now,
	}, nil
}

// SetStatus assigns any known status; there is no transition table.
func (m *Manager) SetStatus(q *domain.Queue, status domain.QueueStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	q.Status = status
	return nil
}

// Search projects a queue for outside callers. Queues that are not active are reported
// as ErrNotFound.
func (m *Manager) Search(q *domain.Queue) (Summary, error) {
	if q == nil || q.Status != domain.QueueStatusActive {
		return Summary{}, ErrNotFound
	}
	next := len(q.Members) + 1
	return Summary{
		ID:                q.ID,
		Name:              q.Name,
		Description:       q.Description,
		Category:          q.Category,
		Capacity:          q.Capacity,
		Status:            q.Status,
		CurrentUsersCount: len(q.Members),
		CreatedAt:         q.CreatedAt,
		Position:          next,
		EstimatedWaitTime: EstimatedWaitTime(q, next),
		Revision:          q.Revision,
	}, nil
}

// EstimatedWaitTime is the linear heuristic average * position, in minutes.
func EstimatedWaitTime(q *domain.Queue, position int) int {
	avg := q.Stats.AverageWaitTime
	if avg == 0 {
		avg = DefaultServiceMinutes
	}
	return avg * position
}

// MemberPosition returns the current position of userID, or 0 when absent.
func MemberPosition(q *domain.Queue, userID string) int {
	if idx := indexOf(q, userID); idx >= 0 {
		return q.Members[idx].Position
	}
	return 0
}

func indexOf(q *domain.Queue, userID string) int {
	for i := range q.Members {
		if q.Members[i].UserID == userID {
			return i
		}
	}
	return -1
}

func renumber(q *domain.Queue) {
	for i := range q.Members {
		q.Members[i].Position = i + 1
	}
}

func wholeMinutes(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return roundHalfUp(float64(d.Milliseconds()) / float64(time.Minute/time.Millisecond))
}

func averageWait(records []domain.ServedRecord) int {
	if len(records) == 0 {
		return 0
	}
	total := 0
	for _, r := range records {
		total += r.WaitTime
	}
	return roundHalfUp(float64(total) / float64(len(records)))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
