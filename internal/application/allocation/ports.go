package allocation

import (
	"context"

	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el descuento de lotes, la
// actualización de la solicitud y la escritura del libro de movimientos
// sean atómicos: una falla parcial revierte todo.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		requestRepo repository.RequestRepository,
		eventRepo repository.AllocationEventRepository,
		movementRepo repository.MovementRepository,
	) error) error

	// RunDonation añade el repositorio de donaciones para la ruta de
	// aprobación de donación (ingreso + asignación dependiente).
	RunDonation(ctx context.Context, fn func(
		donationRepo repository.DonationRepository,
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		requestRepo repository.RequestRepository,
		eventRepo repository.AllocationEventRepository,
		movementRepo repository.MovementRepository,
	) error) error
}
