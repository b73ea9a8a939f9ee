package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

var _ repository.AllocationEventRepository = (*AllocationEventRepo)(nil)

// AllocationEventRepo historial de entregas sobre PostgreSQL (usable con
// pool o tx). Append-only: este adaptador no expone Update ni Delete.
type AllocationEventRepo struct {
	q Querier
}

// NewAllocationEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAllocationEventRepository(q Querier) *AllocationEventRepo {
	return &AllocationEventRepo{q: q}
}

// Create persiste un evento de entrega.
func (r *AllocationEventRepo) Create(ctx context.Context, event *entity.AllocationEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	query := `
		INSERT INTO allocation_events (id, request_id, quantity, percentage, operator_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		event.ID, event.RequestID, event.Quantity, event.Percentage,
		event.OperatorID, event.Comment, event.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.NewStorageError("create allocation event", err)
	}
	return nil
}

// ListByRequest devuelve los eventos de una solicitud en orden estable
// (created_at, id): dos lecturas sin escrituras intermedias producen la
// misma secuencia.
func (r *AllocationEventRepo) ListByRequest(ctx context.Context, requestID string) ([]entity.AllocationEvent, error) {
	query := `
		SELECT id, request_id, quantity, percentage, operator_id, comment, created_at
		FROM allocation_events
		WHERE request_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, requestID)
	if err != nil {
		return nil, domain.NewStorageError("list allocation events", err)
	}
	defer rows.Close()

	var events []entity.AllocationEvent
	for rows.Next() {
		var e entity.AllocationEvent
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Quantity, &e.Percentage, &e.OperatorID, &e.Comment, &e.CreatedAt); err != nil {
			return nil, domain.NewStorageError("scan allocation event", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
