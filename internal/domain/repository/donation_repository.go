package repository

import (
	"context"

	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
)

// DonationRepository define el puerto de persistencia para donaciones.
type DonationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Donation, error)
	// GetForUpdate obtiene la donación bloqueando la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Donation, error)
	UpdateState(ctx context.Context, donation *entity.Donation) error
	Create(ctx context.Context, donation *entity.Donation) error
}
