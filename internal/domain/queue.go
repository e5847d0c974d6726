package domain

import "time"

// QueueStatus enumerates lifecycle states for a queue.
type QueueStatus string

const (
	QueueStatusActive    QueueStatus = "active"
	QueueStatusPaused    QueueStatus = "paused"
	QueueStatusCompleted QueueStatus = "completed"
)

// Valid reports whether the status is one of the known values.
func (s QueueStatus) Valid() bool {
	switch s {
	case QueueStatusActive, QueueStatusPaused, QueueStatusCompleted:
		return true
	}
	return false
}

// QueueCategory classifies the service being queued for.
type QueueCategory string

const (
	CategoryHealth     QueueCategory = "health"
	CategoryEducation  QueueCategory = "education"
	CategoryBanking    QueueCategory = "banking"
	CategoryGovernment QueueCategory = "government"
	CategoryRetail     QueueCategory = "retail"
	CategoryOther      QueueCategory = "other"
)

// Categories lists every accepted category in display order.
var Categories = []QueueCategory{
	CategoryHealth,
	CategoryEducation,
	CategoryBanking,
	CategoryGovernment,
	CategoryRetail,
	CategoryOther,
}

// Valid reports whether the category is one of the known values.
func (c QueueCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Membership is a user currently waiting in a queue.
type Membership struct {
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	Position int       `json:"position"`
}

// ServedRecord is a history entry written when a member is called.
type ServedRecord struct {
	UserID   string    `json:"user_id"`
	ServedAt time.Time `json:"served_at"`
	WaitTime int       `json:"wait_time"` // minutes
}

// QueueStats holds aggregate counters for a queue.
type QueueStats struct {
	TotalJoined     int `json:"total_joined"`
	TotalServed     int `json:"total_served"`
	AverageWaitTime int `json:"average_wait_time"` // minutes
}

// Queue is the aggregate for one line of waiting users.
type Queue struct {
	ID          string
	Name        string
	Description string
	Category    QueueCategory
	Capacity    int
	Status      QueueStatus
	CreatedBy   string
	Members     []Membership
	Served      []ServedRecord
	Stats       QueueStats
	Revision    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (q *Queue) Clone() *Queue {
	if q == nil {
		return nil
	}
	cp := *q
	cp.Members = append([]Membership(nil), q.Members...)
	cp.Served = append([]ServedRecord(nil), q.Served...)
	return &cp
}
