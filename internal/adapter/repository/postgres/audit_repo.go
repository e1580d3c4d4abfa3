package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank-io/corebank/internal/domain"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create persists an audit log row.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	var detail []byte
	if log.Detail != nil {
		data, err := json.Marshal(log.Detail)
		if err != nil {
			return err
		}
		detail = data
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, customer_id, action, resource_type,
			resource_id, request_id, detail, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID,
		log.CustomerID,
		string(log.Action),
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		detail,
		string(log.Status),
		log.ErrorMessage,
		timeToPgTimestamptz(log.CreatedAt),
	)

	return err
}

// List queries audit logs by filter, newest first. Empty filter fields match
// everything.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, action, resource_type, resource_id,
			request_id, detail, status, error_message, created_at
		FROM audit_logs
		WHERE ($1 = '' OR customer_id = $1)
			AND ($2 = '' OR action = $2)
			AND ($3 = '' OR resource_type = $3)
			AND ($4 = '' OR resource_id = $4)
			AND ($5::timestamptz IS NULL OR created_at >= $5)
			AND ($6::timestamptz IS NULL OR created_at <= $6)
		ORDER BY created_at DESC
		LIMIT $7 OFFSET $8`,
		filter.CustomerID,
		filter.Action,
		filter.ResourceType,
		filter.ResourceID,
		timePtrToPgTimestamptz(filter.StartDate),
		timePtrToPgTimestamptz(filter.EndDate),
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var (
			log       domain.AuditLog
			action    string
			status    string
			detail    []byte
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(
			&log.ID,
			&log.CustomerID,
			&action,
			&log.ResourceType,
			&log.ResourceID,
			&log.RequestID,
			&detail,
			&status,
			&log.ErrorMessage,
			&createdAt,
		); err != nil {
			return nil, err
		}

		log.Action = domain.AuditAction(action)
		log.Status = domain.AuditStatus(status)
		log.CreatedAt = createdAt.Time
		if len(detail) > 0 {
			_ = json.Unmarshal(detail, &log.Detail)
		}

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
