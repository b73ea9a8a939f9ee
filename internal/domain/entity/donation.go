package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una donación de benefactor.
const (
	DonationStatePending  = "pending"
	DonationStateApproved = "approved"
	DonationStateRejected = "rejected"
)

// Donation representa una donación de un benefactor: un producto del
// catálogo, una cantidad y la sede donde ingresa. RequestID opcional
// vincula la donación a una solicitud que debe intentar asignarse una
// vez ingresado el stock (ruta donateAndAllocate).
type Donation struct {
	ID           string
	BenefactorID string
	ProductID    string
	LocationID   string
	Quantity     decimal.Decimal
	State        string
	RequestID    string // opcional: solicitud dependiente
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
