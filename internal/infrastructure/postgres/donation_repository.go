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

var _ repository.DonationRepository = (*DonationRepo)(nil)

// DonationRepo implementación de DonationRepository sobre PostgreSQL
// (usable con pool o tx).
type DonationRepo struct {
	q Querier
}

// NewDonationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDonationRepository(q Querier) *DonationRepo {
	return &DonationRepo{q: q}
}

const donationColumns = `id, benefactor_id, product_id, location_id, quantity, state, request_id, notes, created_at, updated_at`

func scanDonation(row pgx.Row) (*entity.Donation, error) {
	var don entity.Donation
	var requestID *string
	err := row.Scan(
		&don.ID, &don.BenefactorID, &don.ProductID, &don.LocationID,
		&don.Quantity, &don.State, &requestID, &don.Notes,
		&don.CreatedAt, &don.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("scan donation", err)
	}
	if requestID != nil {
		don.RequestID = *requestID
	}
	return &don, nil
}

// GetByID obtiene una donación por id; nil si no existe.
func (r *DonationRepo) GetByID(ctx context.Context, id string) (*entity.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`
	return scanDonation(r.q.QueryRow(ctx, query, id))
}

// GetForUpdate obtiene la donación bloqueando la fila (SELECT FOR UPDATE).
func (r *DonationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = $1 FOR UPDATE`
	return scanDonation(r.q.QueryRow(ctx, query, id))
}

// UpdateState persiste el estado y updated_at de la donación.
func (r *DonationRepo) UpdateState(ctx context.Context, don *entity.Donation) error {
	query := `UPDATE donations SET state = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, don.ID, don.State, don.UpdatedAt)
	if err != nil {
		return domain.NewStorageError("update donation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Create persiste una donación nueva (estado pending).
func (r *DonationRepo) Create(ctx context.Context, don *entity.Donation) error {
	if don.ID == "" {
		don.ID = uuid.New().String()
	}
	if don.State == "" {
		don.State = entity.DonationStatePending
	}
	var requestID *string
	if don.RequestID != "" {
		requestID = &don.RequestID
	}
	query := `
		INSERT INTO donations (` + donationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		don.ID, don.BenefactorID, don.ProductID, don.LocationID,
		don.Quantity, don.State, requestID, don.Notes,
		don.CreatedAt, don.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.NewStorageError("create donation", err)
	}
	return nil
}
