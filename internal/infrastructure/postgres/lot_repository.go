package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con
// pool o tx). Único punto que muta cantidades de stock.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Decrement descuenta hasta lo disponible con un único UPDATE condicional
// (cierra la carrera lectura-escritura entre asignaciones concurrentes) y
// devuelve lo realmente descontado. Lote inexistente: no-op, cero.
func (r *LotRepo) Decrement(ctx context.Context, locationID, productID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, nil
	}
	query := `
		WITH prev AS (
			SELECT quantity FROM stock_lots
			WHERE location_id = $1 AND product_id = $2
			FOR UPDATE
		)
		UPDATE stock_lots s
		SET quantity = s.quantity - LEAST(s.quantity, $3::numeric),
		    updated_at = now()
		FROM prev
		WHERE s.location_id = $1 AND s.product_id = $2
		RETURNING prev.quantity - s.quantity`
	var taken decimal.Decimal
	err := r.q.QueryRow(ctx, query, locationID, productID, amount).Scan(&taken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, domain.NewStorageError("decrement lot", err)
	}
	return taken, nil
}

// Increment suma cantidad al lote, creándolo si no existe (ingreso por donación).
func (r *LotRepo) Increment(ctx context.Context, locationID, productID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	query := `
		INSERT INTO stock_lots (location_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (location_id, product_id)
		DO UPDATE SET quantity = stock_lots.quantity + EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, locationID, productID, amount); err != nil {
		return domain.NewStorageError("increment lot", err)
	}
	return nil
}

// ListForProducts devuelve los lotes con existencia de los productos
// dados en todas las sedes, ordenados por updated_at ascendente (el stock
// con actualización más antigua se consume primero).
func (r *LotRepo) ListForProducts(ctx context.Context, productIDs []string) ([]entity.StockLot, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT location_id, product_id, quantity, updated_at
		FROM stock_lots
		WHERE product_id = ANY($1) AND quantity > 0
		ORDER BY updated_at ASC, location_id ASC`
	rows, err := r.q.Query(ctx, query, productIDs)
	if err != nil {
		return nil, domain.NewStorageError("list lots", err)
	}
	defer rows.Close()

	var lots []entity.StockLot
	for rows.Next() {
		var lot entity.StockLot
		if err := rows.Scan(&lot.LocationID, &lot.ProductID, &lot.Quantity, &lot.UpdatedAt); err != nil {
			return nil, domain.NewStorageError(fmt.Sprintf("scan lot %d", len(lots)), err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}
