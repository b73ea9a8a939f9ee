package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot representa la existencia de un producto en una sede.
// Invariante: Quantity >= 0 siempre. Los lotes se llevan a cero, nunca
// se eliminan; UpdatedAt se toca en cada mutación y define el orden de
// consumo (el lote con actualización más antigua se consume primero).
type StockLot struct {
	LocationID string
	ProductID  string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}
