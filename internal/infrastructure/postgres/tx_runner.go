package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

var _ allocation.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. La
// secuencia descuento de lotes → evento de entrega → solicitud → libro de
// movimientos se confirma o revierte completa.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	requestRepo repository.RequestRepository,
	eventRepo repository.AllocationEventRepository,
	movementRepo repository.MovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewLotRepository(tx),
		NewProductRepository(tx),
		NewRequestRepository(tx),
		NewAllocationEventRepository(tx),
		NewMovementRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunDonation inicia una transacción incluyendo el repositorio de
// donaciones (ruta de aprobación de donación con asignación dependiente).
func (r *TxRunner) RunDonation(ctx context.Context, fn func(
	donationRepo repository.DonationRepository,
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	requestRepo repository.RequestRepository,
	eventRepo repository.AllocationEventRepository,
	movementRepo repository.MovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewDonationRepository(tx),
		NewLotRepository(tx),
		NewProductRepository(tx),
		NewRequestRepository(tx),
		NewAllocationEventRepository(tx),
		NewMovementRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
