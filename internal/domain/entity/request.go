package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de beneficiario.
const (
	RequestStatePending   = "pending"
	RequestStateApproved  = "approved"
	RequestStateRejected  = "rejected"
	RequestStateFulfilled = "fulfilled"
)

// Request representa una solicitud de productos de un beneficiario.
// ProductName es texto libre ingresado por el usuario (no una FK al
// catálogo); la resolución a productos concretos la hace el matcher.
// Invariante: 0 <= CumulativeDelivered <= RequestedQuantity.
type Request struct {
	ID                  string
	BeneficiaryID       string
	ProductName         string
	RequestedQuantity   decimal.Decimal
	CumulativeDelivered decimal.Decimal
	State               string
	Comment             string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FulfillmentPercentage devuelve el porcentaje entregado acumulado (0-100, redondeado).
func (r *Request) FulfillmentPercentage() int {
	if !r.RequestedQuantity.IsPositive() {
		return 0
	}
	pct := r.CumulativeDelivered.Div(r.RequestedQuantity).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// RemainingQuantity devuelve lo que falta por entregar.
func (r *Request) RemainingQuantity() decimal.Decimal {
	rem := r.RequestedQuantity.Sub(r.CumulativeDelivered)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// IsTerminal indica si la solicitud ya no acepta más eventos de asignación.
func (r *Request) IsTerminal() bool {
	return r.State == RequestStateRejected || r.State == RequestStateFulfilled
}
