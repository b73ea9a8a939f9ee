package repository

import (
	"context"

	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
)

// RequestRepository define el puerto de persistencia para solicitudes.
type RequestRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	// GetForUpdate obtiene la solicitud bloqueando la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Request, error)
	// UpdateAllocation persiste CumulativeDelivered, State y UpdatedAt.
	UpdateAllocation(ctx context.Context, req *entity.Request) error
	Create(ctx context.Context, req *entity.Request) error
}
