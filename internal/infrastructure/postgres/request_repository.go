package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

var _ repository.RequestRepository = (*RequestRepo)(nil)

// RequestRepo implementación de RequestRepository sobre PostgreSQL
// (usable con pool o tx).
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

const requestColumns = `id, beneficiary_id, product_name, requested_quantity, cumulative_delivered, state, comment, created_at, updated_at`

func scanRequest(row pgx.Row) (*entity.Request, error) {
	var req entity.Request
	err := row.Scan(
		&req.ID, &req.BeneficiaryID, &req.ProductName,
		&req.RequestedQuantity, &req.CumulativeDelivered,
		&req.State, &req.Comment, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("scan request", err)
	}
	return &req, nil
}

// GetByID obtiene una solicitud por id; nil si no existe.
func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	return scanRequest(r.q.QueryRow(ctx, query, id))
}

// GetForUpdate obtiene la solicitud bloqueando la fila (SELECT FOR UPDATE)
// para serializar asignaciones concurrentes a nivel de almacenamiento.
func (r *RequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1 FOR UPDATE`
	return scanRequest(r.q.QueryRow(ctx, query, id))
}

// UpdateAllocation persiste el acumulado entregado, el estado y updated_at.
func (r *RequestRepo) UpdateAllocation(ctx context.Context, req *entity.Request) error {
	query := `
		UPDATE requests
		SET cumulative_delivered = $2, state = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, req.ID, req.CumulativeDelivered, req.State, req.UpdatedAt)
	if err != nil {
		return domain.NewStorageError("update request", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Create persiste una solicitud nueva (estado pending).
func (r *RequestRepo) Create(ctx context.Context, req *entity.Request) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.State == "" {
		req.State = entity.RequestStatePending
	}
	query := `
		INSERT INTO requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.BeneficiaryID, req.ProductName,
		req.RequestedQuantity, req.CumulativeDelivered,
		req.State, req.Comment, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.NewStorageError("create request", err)
	}
	return nil
}
