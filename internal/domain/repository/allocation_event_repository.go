package repository

import (
	"context"

	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
)

// AllocationEventRepository define el puerto de persistencia para el
// historial de entregas de una solicitud. Append-only: sin Update ni Delete.
type AllocationEventRepository interface {
	Create(ctx context.Context, event *entity.AllocationEvent) error
	// ListByRequest devuelve los eventos de una solicitud ordenados por
	// (created_at, id) ascendente; dos lecturas sin escrituras intermedias
	// devuelven exactamente la misma secuencia.
	ListByRequest(ctx context.Context, requestID string) ([]entity.AllocationEvent, error)
}
