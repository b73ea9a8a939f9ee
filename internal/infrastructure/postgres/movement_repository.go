package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o
// tx). Append-only: cabeceras y líneas no se editan; las correcciones se
// insertan como movimientos compensatorios.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste la cabecera y todas sus líneas. Debe invocarse dentro
// de una transacción: cabecera sin líneas viola el invariante 1..N.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if len(movement.Details) == 0 {
		return domain.ErrInvalidInput
	}
	headerQuery := `
		INSERT INTO movements (id, date, source_actor_id, dest_actor_id, status, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, headerQuery,
		movement.ID, movement.Date, movement.SourceActorID, movement.DestActorID,
		movement.Status, movement.Notes, movement.CreatedAt, movement.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.NewStorageError("create movement", err)
	}

	detailQuery := `
		INSERT INTO movement_details (id, movement_id, product_id, quantity, direction, role, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range movement.Details {
		d := &movement.Details[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		d.MovementID = movement.ID
		if _, err := r.q.Exec(ctx, detailQuery,
			d.ID, d.MovementID, d.ProductID, d.Quantity, d.Direction, d.Role, d.Note,
		); err != nil {
			return domain.NewStorageError("create movement detail", err)
		}
	}
	return nil
}

// GetByID obtiene una cabecera con sus líneas; nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `
		SELECT id, date, source_actor_id, dest_actor_id, status, notes, created_at, created_by
		FROM movements WHERE id = $1`
	var m entity.Movement
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Date, &m.SourceActorID, &m.DestActorID,
		&m.Status, &m.Notes, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get movement", err)
	}
	if err := r.loadDetails(ctx, map[string]*entity.Movement{m.ID: &m}); err != nil {
		return nil, err
	}
	return &m, nil
}

// List devuelve cabeceras con sus líneas según el filtro, más recientes
// primero. Los filtros de producto y dirección aplican sobre las líneas.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]entity.Movement, error) {
	query := `
		SELECT DISTINCT m.id, m.date, m.source_actor_id, m.dest_actor_id, m.status, m.notes, m.created_at, m.created_by
		FROM movements m
		JOIN movement_details d ON d.movement_id = m.id
		WHERE 1=1`
	var args []any
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND d.product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.Direction != "" {
		query += fmt.Sprintf(" AND d.direction = $%d", pos)
		args = append(args, filter.Direction)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND m.date >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND m.date <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY m.date DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStorageError("list movements", err)
	}
	defer rows.Close()

	var list []entity.Movement
	byID := make(map[string]*entity.Movement)
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.Date, &m.SourceActorID, &m.DestActorID,
			&m.Status, &m.Notes, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, domain.NewStorageError("scan movement", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list movements", err)
	}
	for i := range list {
		byID[list[i].ID] = &list[i]
	}
	if err := r.loadDetails(ctx, byID); err != nil {
		return nil, err
	}
	return list, nil
}

// loadDetails carga las líneas de las cabeceras indicadas.
func (r *MovementRepo) loadDetails(ctx context.Context, byID map[string]*entity.Movement) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	query := `
		SELECT id, movement_id, product_id, quantity, direction, role, note
		FROM movement_details
		WHERE movement_id = ANY($1)
		ORDER BY movement_id, id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return domain.NewStorageError("list movement details", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d entity.MovementDetail
		if err := rows.Scan(&d.ID, &d.MovementID, &d.ProductID, &d.Quantity, &d.Direction, &d.Role, &d.Note); err != nil {
			return domain.NewStorageError("scan movement detail", err)
		}
		if m, ok := byID[d.MovementID]; ok {
			m.Details = append(m.Details, d)
		}
	}
	return rows.Err()
}
