package repository

import (
	"context"

	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos.
// El catálogo es administrado por otro módulo; este subsistema solo consulta.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// SearchByName busca productos cuyo nombre contenga el fragmento
	// (insensible a mayúsculas). Cero resultados no es un error.
	SearchByName(ctx context.Context, fragment string) ([]entity.Product, error)
}
