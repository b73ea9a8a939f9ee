package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
)

// MovementFilter filtros para consultar el libro de movimientos.
type MovementFilter struct {
	ProductID string
	Direction string // ingress | egress | "" (ambas)
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// MovementRepository define el puerto de persistencia del libro de
// movimientos (cabecera + líneas). Append-only: las correcciones se
// registran como movimientos compensatorios.
type MovementRepository interface {
	// Create persiste la cabecera y todas sus líneas.
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// List devuelve cabeceras (con sus líneas) según el filtro, ordenadas
	// por fecha descendente. Solo lectura, para el módulo de reportes.
	List(ctx context.Context, filter MovementFilter) ([]entity.Movement, error)
}
