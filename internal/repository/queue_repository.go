package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queuely/queue-service/internal/domain"
)

// ErrRevisionConflict is returned by Save when the queue changed since it was loaded.
var ErrRevisionConflict = errors.New("queue was modified concurrently")

// QueueRepository persists whole queue documents.
type QueueRepository interface {
	Create(ctx context.Context, queue *domain.Queue) error
	GetByID(ctx context.Context, id string) (*domain.Queue, error)
	Save(ctx context.Context, queue *domain.Queue) error
	Delete(ctx context.Context, id, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Queue, error)
	ListJoinedBy(ctx context.Context, userID string) ([]domain.Queue, error)
	ListAll(ctx context.Context) ([]domain.Queue, error)
}

type queueRepository struct {
	pool *pgxpool.Pool
}

// NewQueueRepository instantiates repository.
func NewQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &queueRepository{pool: pool}
}

const queueColumns = `id, name, description, category, capacity, status, created_by,
               members, served, stats, revision, created_at, updated_at`

func (r *queueRepository) Create(ctx context.Context, queue *domain.Queue) error {
	const query = `
        INSERT INTO queues (name, description, category, capacity, status, created_by, members, served, stats)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, revision, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		queue.Name,
		queue.Description,
		queue.Category,
		queue.Capacity,
		queue.Status,
		queue.CreatedBy,
		membersOrEmpty(queue.Members),
		servedOrEmpty(queue.Served),
		queue.Stats,
	).Scan(&queue.ID, &queue.Revision, &queue.CreatedAt, &queue.UpdatedAt)
}

func (r *queueRepository) GetByID(ctx context.Context, id string) (*domain.Queue, error) {
	query := `SELECT ` + queueColumns + ` FROM queues WHERE id=$1`
	queue, err := scanQueue(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return queue, nil
}

// Save writes the whole document only if the stored revision still matches the loaded one.
func (r *queueRepository) Save(ctx context.Context, queue *domain.Queue) error {
	const query = `
        UPDATE queues SET name=$1, description=$2, category=$3, capacity=$4, status=$5,
            members=$6, served=$7, stats=$8, revision=revision+1, updated_at=NOW()
        WHERE id=$9 AND revision=$10
        RETURNING revision, updated_at`
	err := r.pool.QueryRow(ctx, query,
		queue.Name,
		queue.Description,
		queue.Category,
		queue.Capacity,
		queue.Status,
		membersOrEmpty(queue.Members),
		servedOrEmpty(queue.Served),
		queue.Stats,
		queue.ID,
		queue.Revision,
	).Scan(&queue.Revision, &queue.UpdatedAt)
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM queues WHERE id=$1)`, queue.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return ErrRevisionConflict
}

func (r *queueRepository) Delete(ctx context.Context, id, ownerID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM queues WHERE id=$1 AND created_by=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *queueRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Queue, error) {
	query := `SELECT ` + queueColumns + ` FROM queues WHERE created_by=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, ownerID)
}

func (r *queueRepository) ListJoinedBy(ctx context.Context, userID string) ([]domain.Queue, error) {
	query := `SELECT ` + queueColumns + ` FROM queues
        WHERE status='active' AND members @> jsonb_build_array(jsonb_build_object('user_id', $1::text))
        ORDER BY updated_at DESC`
	return r.list(ctx, query, userID)
}

func (r *queueRepository) ListAll(ctx context.Context) ([]domain.Queue, error) {
	query := `SELECT ` + queueColumns + ` FROM queues ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *queueRepository) list(ctx context.Context, query string, args ...any) ([]domain.Queue, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Queue
	for rows.Next() {
		queue, err := scanQueue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *queue)
	}
	return result, rows.Err()
}

func scanQueue(row pgx.Row) (*domain.Queue, error) {
	var queue domain.Queue
	if err := row.Scan(
		&queue.ID,
		&queue.Name,
		&queue.Description,
		&queue.Category,
		&queue.Capacity,
		&queue.Status,
		&queue.CreatedBy,
		&queue.Members,
		&queue.Served,
		&queue.Stats,
		&queue.Revision,
		&queue.CreatedAt,
		&queue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	queue.Members = membersOrEmpty(queue.Members)
	queue.Served = servedOrEmpty(queue.Served)
	return &queue, nil
}

func membersOrEmpty(m []domain.Membership) []domain.Membership {
	if m == nil {
		return []domain.Membership{}
	}
	return m
}

func servedOrEmpty(s []domain.ServedRecord) []domain.ServedRecord {
	if s == nil {
		return []domain.ServedRecord{}
	}
	return s
}
