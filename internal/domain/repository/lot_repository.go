package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes de stock.
// Es el único punto autorizado a mutar cantidades. Usado dentro de
// transacciones para garantizar consistencia.
type LotRepository interface {
	// Decrement descuenta hasta lo disponible con un único UPDATE
	// condicional y devuelve lo realmente descontado. Un lote
	// inexistente es un no-op que devuelve cero, no un error.
	Decrement(ctx context.Context, locationID, productID string, amount decimal.Decimal) (decimal.Decimal, error)
	// Increment suma cantidad al lote, creándolo si no existe (ingreso por donación).
	Increment(ctx context.Context, locationID, productID string, amount decimal.Decimal) error
	// ListForProducts devuelve los lotes de los productos dados en todas
	// las sedes, ordenados por updated_at ascendente (el más antiguo primero).
	ListForProducts(ctx context.Context, productIDs []string) ([]entity.StockLot, error)
}
