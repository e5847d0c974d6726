package dto

import (
	"time"

	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/queuestate"
	"github.com/queuely/queue-service/internal/service"
)

// CreateQueueRequest payload for POST /api/queues/create.
type CreateQueueRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Capacity    int    `json:"capacity"`
}

// UpdateStatusRequest payload for PATCH /api/queues/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// MemberResponse is one waiting member as shown to the queue owner.
type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Position int       `json:"position"`
	JoinedAt time.Time `json:"joined_at"`
}

// QueueResponse is the owner's view of a queue.
type QueueResponse struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Category          string            `json:"category"`
	Capacity          int               `json:"capacity"`
	Status            string            `json:"status"`
	CreatedBy         string            `json:"created_by"`
	CurrentUsersCount int               `json:"current_users_count"`
	Members           []MemberResponse  `json:"members"`
	Stats             domain.QueueStats `json:"stats"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// QueueSummaryResponse is the public search result.
type QueueSummaryResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Capacity          int       `json:"capacity"`
	Status            string    `json:"status"`
	CurrentUsersCount int       `json:"current_users_count"`
	Position          int       `json:"position"`
	EstimatedWaitTime int       `json:"estimated_wait_time"`
	CreatedAt         time.Time `json:"created_at"`
}

// JoinedQueueResponse is a queue seen by one of its members.
type JoinedQueueResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Status            string    `json:"status"`
	Position          int       `json:"position"`
	PeopleAhead       int       `json:"people_ahead"`
	EstimatedWaitTime int       `json:"estimated_wait_time"`
	JoinedAt          time.Time `json:"joined_at"`
}

// JoinResponse is returned after joining.
type JoinResponse struct {
	QueueID           string `json:"queue_id"`
	Position          int    `json:"position"`
	EstimatedWaitTime int    `json:"estimated_wait_time"`
}

// LeaveResponse is returned after leaving.
type LeaveResponse struct {
	QueueID          string `json:"queue_id"`
	PreviousPosition int    `json:"previous_position"`
}

// CallNextResponse describes the member who was served.
type CallNextResponse struct {
	QueueID  string    `json:"queue_id"`
	UserID   string    `json:"user_id"`
	Position int       `json:"position"`
	WaitTime int       `json:"wait_time"`
	ServedAt time.Time `json:"served_at"`
}

func NewQueueResponse(q *domain.Queue) QueueResponse {
	members := make([]MemberResponse, 0, len(q.Members))
	for _, m := range q.Members {
		members = append(members, MemberResponse{UserID: m.UserID, Position: m.Position, JoinedAt: m.JoinedAt})
	}
	return QueueResponse{
		ID:                q.ID,
		Name:              q.Name,
		Description:       q.Description,
		Category:          string(q.Category),
		Capacity:          q.Capacity,
		Status:            string(q.Status),
		CreatedBy:         q.CreatedBy,
		CurrentUsersCount: len(q.Members),
		Members:           members,
		Stats:             q.Stats,
		CreatedAt:         q.CreatedAt,
		UpdatedAt:         q.UpdatedAt,
	}
}

func NewQueueResponses(queues []domain.Queue) []QueueResponse {
	out := make([]QueueResponse, 0, len(queues))
	for i := range queues {
		out = append(out, NewQueueResponse(&queues[i]))
	}
	return out
}

func NewQueueSummaryResponse(s *queuestate.Summary) QueueSummaryResponse {
	return QueueSummaryResponse{
		ID:                s.ID,
		Name:              s.Name,
		Description:       s.Description,
		Category:          string(s.Category),
		Capacity:          s.Capacity,
		Status:            string(s.Status),
		CurrentUsersCount: s.CurrentUsersCount,
		Position:          s.Position,
		EstimatedWaitTime: s.EstimatedWaitTime,
		CreatedAt:         s.CreatedAt,
	}
}

func NewJoinedQueueResponses(joined []service.JoinedQueue) []JoinedQueueResponse {
	out := make([]JoinedQueueResponse, 0, len(joined))
	for _, j := range joined {
		out = append(out, JoinedQueueResponse{
			ID:                j.Queue.ID,
			Name:              j.Queue.Name,
			Description:       j.Queue.Description,
			Category:          string(j.Queue.Category),
			Status:            string(j.Queue.Status),
			Position:          j.Position,
			PeopleAhead:       j.PeopleAhead,
			EstimatedWaitTime: j.EstimatedWaitTime,
			JoinedAt:          j.JoinedAt,
		})
	}
	return out
}
