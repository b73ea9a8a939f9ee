package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de una línea de movimiento.
const (
	MovementDirectionIngress = "ingress" // entrada de stock (donación)
	MovementDirectionEgress  = "egress"  // salida de stock (entrega)
)

// Estados de un movimiento.
const (
	MovementStatusCompleted = "completed"
	MovementStatusReversed  = "reversed" // compensado por un movimiento posterior
)

// Movement es la cabecera del libro de movimientos: el sobre de una
// transacción de stock. Inmutable una vez escrita; las correcciones se
// hacen con un movimiento compensatorio, nunca editando el historial.
type Movement struct {
	ID            string
	Date          time.Time
	SourceActorID string // quien entrega (benefactor o banco/sede)
	DestActorID   string // quien recibe (banco/sede o beneficiario)
	Status        string
	Notes         string
	CreatedAt     time.Time
	CreatedBy     string // OperatorID
	Details       []MovementDetail
}

// MovementDetail es una línea del movimiento: un producto y su cantidad.
// Una cabecera posee 1..N líneas.
type MovementDetail struct {
	ID         string
	MovementID string
	ProductID  string
	Quantity   decimal.Decimal
	Direction  string // ingress | egress
	Role       string // "delivery", "donation_intake", "compensation"
	Note       string
}

// TotalQuantity suma las cantidades de las líneas de la cabecera.
func (m *Movement) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, d := range m.Details {
		total = total.Add(d.Quantity)
	}
	return total
}
