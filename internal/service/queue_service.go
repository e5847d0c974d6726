package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/queuely/queue-service/internal/cache"
	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/events"
	"github.com/queuely/queue-service/internal/observability"
	"github.com/queuely/queue-service/internal/queuestate"
	"github.com/queuely/queue-service/internal/repository"
)

// QueueService runs each queue operation as one load, mutate, save cycle.
// Stale saves surface as conflicts; retrying is left to the caller.
type QueueService struct {
	queues     repository.QueueRepository
	state      *queuestate.Manager
	search     *cache.SearchCache
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// QueueDependencies bundles collaborators for the queue service.
type QueueDependencies struct {
	QueueRepo   repository.QueueRepository
	Manager     *queuestate.Manager
	SearchCache *cache.SearchCache
	Metrics     *observability.Metrics
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// JoinResult is returned to a user who joined a queue.
type JoinResult struct {
	Position          int
	EstimatedWaitTime int
}

// JoinedQueue is a queue seen from one of its waiting members.
type JoinedQueue struct {
	Queue             domain.Queue
	Position          int
	PeopleAhead       int
	EstimatedWaitTime int
	JoinedAt          time.Time
}

// NewQueueService constructs the service.
func NewQueueService(deps QueueDependencies) *QueueService {
	state := deps.Manager
	if state == nil {
		state = queuestate.NewManager()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueService{
		queues:     deps.QueueRepo,
		state:      state,
		search:     deps.SearchCache,
		metrics:    deps.Metrics,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create validates input and stores a new active queue owned by admin.
func (s *QueueService) Create(ctx context.Context, admin *domain.User, input queuestate.CreateInput) (*domain.Queue, error) {
	queue, err := queuestate.NewQueue(admin.ID, input)
	if err != nil {
		return nil, mapQueueError(err)
	}
	if err := s.queues.Create(ctx, queue); err != nil {
		return nil, mapQueueError(err)
	}
	s.metrics.SetWaiting(queue.ID, 0)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventQueueCreated,
		QueueID: queue.ID,
		Actor:   actorOf(admin.ID, domain.RoleAdmin),
		Payload: events.QueueCreatedPayload{
			Name:     queue.Name,
			Category: queue.Category,
			Capacity: queue.Capacity,
		},
	})
	return queue, nil
}

// ListMine returns the queues owned by an admin, newest first.
func (s *QueueService) ListMine(ctx context.Context, ownerID string) ([]domain.Queue, error) {
	queues, err := s.queues.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, mapQueueError(err)
	}
	return queues, nil
}

// ListJoined returns the active queues userID is waiting in with their standing.
func (s *QueueService) ListJoined(ctx context.Context, userID string) ([]JoinedQueue, error) {
	queues, err := s.queues.ListJoinedBy(ctx, userID)
	if err != nil {
		return nil, mapQueueError(err)
	}
	result := make([]JoinedQueue, 0, len(queues))
	for i := range queues {
		q := &queues[i]
		position := queuestate.MemberPosition(q, userID)
		if position == 0 {
			continue
		}
		result = append(result, JoinedQueue{
			Queue:             *q,
			Position:          position,
			PeopleAhead:       position - 1,
			EstimatedWaitTime: queuestate.EstimatedWaitTime(q, position),
			JoinedAt:          q.Members[position-1].JoinedAt,
		})
	}
	return result, nil
}

// GetForOwner loads a queue only if ownerID created it.
func (s *QueueService) GetForOwner(ctx context.Context, ownerID, queueID string) (*domain.Queue, error) {
	return s.loadOwned(ctx, ownerID, queueID)
}

// SetStatus changes the status of an owned queue.
func (s *QueueService) SetStatus(ctx context.Context, ownerID, queueID string, status domain.QueueStatus) (*domain.Queue, error) {
	if !status.Valid() {
		return nil, mapQueueError(queuestate.ErrInvalidStatus)
	}
	queue, err := s.loadOwned(ctx, ownerID, queueID)
	if err != nil {
		return nil, err
	}
	oldStatus := queue.Status
	if err := s.state.SetStatus(queue, status); err != nil {
		return nil, mapQueueError(err)
	}
	if err := s.save(ctx, "set_status", queue); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventQueueStatusChanged,
		QueueID: queue.ID,
		Actor:   actorOf(ownerID, domain.RoleAdmin),
		Payload: events.QueueStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
			Waiting:   memberIDs(queue.Members),
		},
	})
	return queue, nil
}

// Delete removes an owned queue together with its history.
func (s *QueueService) Delete(ctx context.Context, ownerID, queueID string) error {
	if !validID(queueID) {
		return mapQueueError(queuestate.ErrNotFound)
	}
	if err := s.queues.Delete(ctx, queueID, ownerID); err != nil {
		return mapQueueError(err)
	}
	s.invalidate(ctx, queueID, math.MaxInt64)
	s.metrics.ForgetQueue(queueID)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventQueueDeleted,
		QueueID: queueID,
		Actor:   actorOf(ownerID, domain.RoleAdmin),
	})
	return nil
}

// Search is the public lookup by id. Only active queues are visible.
func (s *QueueService) Search(ctx context.Context, queueID string) (*queuestate.Summary, error) {
	if cached, ok, err := s.search.Get(ctx, queueID); err != nil {
		s.logger.Warn("search cache read failed", zap.String("queue_id", queueID), zap.Error(err))
	} else if ok {
		return cached, nil
	}

	queue, err := s.load(ctx, queueID)
	if err != nil {
		return nil, err
	}
	summary, err := s.state.Search(queue)
	if err != nil {
		return nil, notSearchable(err)
	}
	if err := s.search.Set(ctx, summary); err != nil {
		s.logger.Warn("search cache write failed", zap.String("queue_id", queueID), zap.Error(err))
	}
	return &summary, nil
}

// Join adds userID to the back of the queue.
func (s *QueueService) Join(ctx context.Context, userID, queueID string) (JoinResult, error) {
	queue, err := s.load(ctx, queueID)
	if err != nil {
		return JoinResult{}, err
	}
	position, err := s.state.Join(queue, userID)
	if err != nil {
		s.metrics.RecordQueueOperation("join", err)
		return JoinResult{}, mapQueueError(err)
	}
	if err := s.save(ctx, "join", queue); err != nil {
		return JoinResult{}, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventMemberJoined,
		QueueID: queue.ID,
		Actor:   actorOf(userID, domain.RoleUser),
		Payload: events.MemberJoinedPayload{UserID: userID, Position: position},
	})
	return JoinResult{
		Position:          position,
		EstimatedWaitTime: queuestate.EstimatedWaitTime(queue, position),
	}, nil
}

// Leave removes userID and returns the position it held.
func (s *QueueService) Leave(ctx context.Context, userID, queueID string) (int, error) {
	queue, err := s.load(ctx, queueID)
	if err != nil {
		return 0, err
	}
	previous, err := s.state.Leave(queue, userID)
	if err != nil {
		s.metrics.RecordQueueOperation("leave", err)
		return 0, mapQueueError(err)
	}
	if err := s.save(ctx, "leave", queue); err != nil {
		return 0, err
	}
	// everyone who stood behind the leaver moved up one place
	movedUp := queue.Members[previous-1:]
	s.publishEvent(ctx, events.Event{
		Type:    events.EventMemberLeft,
		QueueID: queue.ID,
		Actor:   actorOf(userID, domain.RoleUser),
		Payload: events.MemberLeftPayload{
			UserID:           userID,
			PreviousPosition: previous,
			Remaining:        movedUp,
		},
	})
	return previous, nil
}

// CallNext serves the front member of an owned queue.
func (s *QueueService) CallNext(ctx context.Context, ownerID, queueID string) (queuestate.Served, error) {
	queue, err := s.loadOwned(ctx, ownerID, queueID)
	if err != nil {
		return queuestate.Served{}, err
	}
	served, err := s.state.CallNext(queue)
	if err != nil {
		s.metrics.RecordQueueOperation("call_next", err)
		return queuestate.Served{}, mapQueueError(err)
	}
	if err := s.save(ctx, "call_next", queue); err != nil {
		return queuestate.Served{}, err
	}
	s.metrics.RecordServed(served.WaitTime)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventMemberCalled,
		QueueID: queue.ID,
		Actor:   actorOf(ownerID, domain.RoleAdmin),
		Payload: events.MemberCalledPayload{
			UserID:    served.UserID,
			Position:  served.Position,
			WaitTime:  served.WaitTime,
			Remaining: queue.Members,
		},
	})
	return served, nil
}

func (s *QueueService) load(ctx context.Context, queueID string) (*domain.Queue, error) {
	if !validID(queueID) {
		return nil, mapQueueError(queuestate.ErrNotFound)
	}
	queue, err := s.queues.GetByID(ctx, queueID)
	if err != nil {
		return nil, mapQueueError(err)
	}
	return queue, nil
}

func (s *QueueService) loadOwned(ctx context.Context, ownerID, queueID string) (*domain.Queue, error) {
	queue, err := s.load(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if queue.CreatedBy != ownerID {
		return nil, mapQueueError(queuestate.ErrNotFound)
	}
	return queue, nil
}

func (s *QueueService) save(ctx context.Context, operation string, queue *domain.Queue) error {
	err := s.queues.Save(ctx, queue)
	s.metrics.RecordQueueOperation(operation, err)
	if err != nil {
		if errors.Is(err, repository.ErrRevisionConflict) {
			s.logger.Info("stale queue save rejected",
				zap.String("queue_id", queue.ID),
				zap.String("operation", operation),
				zap.Int64("revision", queue.Revision))
		}
		return mapQueueError(err)
	}
	s.invalidate(ctx, queue.ID, queue.Revision)
	s.metrics.SetWaiting(queue.ID, len(queue.Members))
	return nil
}

func (s *QueueService) invalidate(ctx context.Context, queueID string, revision int64) {
	if err := s.search.Invalidate(ctx, queueID, revision); err != nil {
		s.logger.Warn("search cache invalidation failed", zap.String("queue_id", queueID), zap.Error(err))
	}
}

func (s *QueueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("queue_id", event.QueueID),
			zap.Error(err))
	}
}

func memberIDs(members []domain.Membership) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func actorOf(userID string, role domain.Role) events.Actor {
	return events.Actor{UserID: userID, Role: role}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isNotFound reports whether err is the store's "no such queue".
func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, queuestate.ErrNotFound)
}
