// Package repositorytest provides in-memory repositories for tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/repository"
)

// QueueStore mimics the Postgres queue repository, revision checks included.
type QueueStore struct {
	mu     sync.Mutex
	queues map[string]*domain.Queue
	stale  int
	now    func() time.Time
}

var _ repository.QueueRepository = (*QueueStore)(nil)

func NewQueueStore() *QueueStore {
	return &QueueStore{
		queues: map[string]*domain.Queue{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the source of created_at and updated_at stamps.
func (m *QueueStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// FailNextSaves makes the next n saves report a revision conflict.
func (m *QueueStore) FailNextSaves(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale = n
}

func (m *QueueStore) Create(ctx context.Context, queue *domain.Queue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	queue.ID = uuid.NewString()
	queue.Revision = 1
	queue.CreatedAt = now
	queue.UpdatedAt = now
	m.queues[queue.ID] = queue.Clone()
	return nil
}

func (m *QueueStore) GetByID(ctx context.Context, id string) (*domain.Queue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return q.Clone(), nil
}

func (m *QueueStore) Save(ctx context.Context, queue *domain.Queue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.queues[queue.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if m.stale > 0 {
		m.stale--
		return repository.ErrRevisionConflict
	}
	if stored.Revision != queue.Revision {
		return repository.ErrRevisionConflict
	}
	queue.Revision++
	queue.UpdatedAt = m.now()
	m.queues[queue.ID] = queue.Clone()
	return nil
}

func (m *QueueStore) Delete(ctx context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[id]
	if !ok || q.CreatedBy != ownerID {
		return pgx.ErrNoRows
	}
	delete(m.queues, id)
	return nil
}

// ListByOwner returns newest first, like the Postgres query.
func (m *QueueStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Queue, error) {
	out := m.filter(func(q *domain.Queue) bool { return q.CreatedBy == ownerID })
	sortBy(out, func(a, b *domain.Queue) bool { return a.CreatedAt.After(b.CreatedAt) })
	return out, nil
}

// ListJoinedBy returns the most recently updated first.
func (m *QueueStore) ListJoinedBy(ctx context.Context, userID string) ([]domain.Queue, error) {
	out := m.filter(func(q *domain.Queue) bool {
		if q.Status != domain.QueueStatusActive {
			return false
		}
		for _, member := range q.Members {
			if member.UserID == userID {
				return true
			}
		}
		return false
	})
	sortBy(out, func(a, b *domain.Queue) bool { return a.UpdatedAt.After(b.UpdatedAt) })
	return out, nil
}

// ListAll returns oldest first.
func (m *QueueStore) ListAll(ctx context.Context) ([]domain.Queue, error) {
	out := m.filter(func(*domain.Queue) bool { return true })
	sortBy(out, func(a, b *domain.Queue) bool { return a.CreatedAt.Before(b.CreatedAt) })
	return out, nil
}

func (m *QueueStore) filter(keep func(*domain.Queue) bool) []domain.Queue {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Queue
	for _, q := range m.queues {
		if keep(q) {
			out = append(out, *q.Clone())
		}
	}
	return out
}

// sortBy orders queues by less, falling back to the id so equal timestamps stay stable.
func sortBy(queues []domain.Queue, less func(a, b *domain.Queue) bool) {
	sort.Slice(queues, func(i, j int) bool {
		a, b := &queues[i], &queues[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID < b.ID
	})
}

// UserStore keeps users in a map keyed by id.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

var _ repository.UserRepository = (*UserStore)(nil)

func NewUserStore(users ...*domain.User) *UserStore {
	s := &UserStore{users: map[string]*domain.User{}}
	for _, u := range users {
		copied := *u
		s.users[u.ID] = &copied
	}
	return s
}

func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}
