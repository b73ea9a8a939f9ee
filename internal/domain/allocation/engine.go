package allocation

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
)

// Resultado de negocio de una asignación. No es un error: stock
// insuficiente es un desenlace esperado, no una falla.
const (
	OutcomeNoStock  = "noStock"  // nada entregado, había cantidad pedida
	OutcomePartial  = "partial"  // entregado > 0 pero menor a lo pedido
	OutcomeComplete = "complete" // entregado == pedido
)

// StockLedger es el único colaborador autorizado a mutar cantidades de
// lotes. Decrement descuenta hasta lo disponible y devuelve lo realmente
// descontado; un lote inexistente es un no-op que devuelve cero.
type StockLedger interface {
	Decrement(ctx context.Context, locationID, productID string, amount decimal.Decimal) (decimal.Decimal, error)
}

// LotTake es el detalle de cuánto se tomó de un lote concreto.
type LotTake struct {
	Lot    entity.StockLot
	Amount decimal.Decimal
}

// Result es el resultado estructurado de una asignación.
type Result struct {
	Delivered decimal.Decimal
	Remainder decimal.Decimal
	Breakdown []LotTake
	Outcome   string
}

// PerProduct agrega el desglose por producto (suma de lo tomado de todos
// los lotes de cada producto). Es la fuente de verdad para las líneas
// del libro de movimientos. El orden sigue la primera aparición de cada
// producto en el desglose, para que sea determinista.
func (r Result) PerProduct() []ProductTake {
	index := make(map[string]int)
	var takes []ProductTake
	for _, t := range r.Breakdown {
		if i, ok := index[t.Lot.ProductID]; ok {
			takes[i].Amount = takes[i].Amount.Add(t.Amount)
			continue
		}
		index[t.Lot.ProductID] = len(takes)
		takes = append(takes, ProductTake{ProductID: t.Lot.ProductID, Amount: t.Amount})
	}
	return takes
}

// ProductTake es lo tomado en total de un producto durante una asignación.
type ProductTake struct {
	ProductID string
	Amount    decimal.Decimal
}

// Engine consume lotes candidatos en el orden recibido hasta cubrir la
// cantidad pedida, descontando vía StockLedger.
type Engine struct{}

// NewEngine construye el motor de asignación.
func NewEngine() *Engine {
	return &Engine{}
}

// Allocate recorre los candidatos en orden: para cada lote toma
// min(faltante, disponible) y descuenta vía el ledger. Si el descuento
// real difiere del pedido (mutación concurrente), manda el valor real.
// Se detiene cuando el faltante llega a cero o se agotan los candidatos.
// Redondeo a dos decimales solo en la frontera (Delivered/Remainder);
// la aritmética interna usa la precisión completa recibida.
func (e *Engine) Allocate(ctx context.Context, ledger StockLedger, candidates []entity.StockLot, needed decimal.Decimal) (Result, error) {
	if !needed.IsPositive() {
		return Result{}, domain.ErrInvalidQuantity
	}

	remaining := needed
	delivered := decimal.Zero
	var breakdown []LotTake

	for _, lot := range candidates {
		if !remaining.IsPositive() {
			break
		}
		if !lot.Quantity.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, lot.Quantity)
		actual, err := ledger.Decrement(ctx, lot.LocationID, lot.ProductID, take)
		if err != nil {
			return Result{}, err
		}
		if !actual.IsPositive() {
			// Sin stock real en este lote (mutación concurrente): siguiente candidato.
			continue
		}
		breakdown = append(breakdown, LotTake{Lot: lot, Amount: actual})
		delivered = delivered.Add(actual)
		remaining = remaining.Sub(actual)
	}

	res := Result{
		Delivered: delivered.Round(2),
		Remainder: remaining.Round(2),
		Breakdown: breakdown,
	}
	switch {
	case res.Delivered.IsZero():
		res.Outcome = OutcomeNoStock
	case res.Delivered.LessThan(needed.Round(2)):
		res.Outcome = OutcomePartial
	default:
		res.Outcome = OutcomeComplete
	}
	return res, nil
}
