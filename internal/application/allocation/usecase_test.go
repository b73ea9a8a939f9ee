package allocation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/dto"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	domalloc "github.com/tu-usuario/bancoalimentos-api/internal/domain/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/infrastructure/memory"
	"github.com/tu-usuario/bancoalimentos-api/pkg/logger"
)

// newApproveUC arma el caso de uso completo sobre el almacén en memoria.
// El guard usa una ventana mínima para que las llamadas secuenciales de
// los tests no reciban resultados retenidos.
func newApproveUC(store *memory.Store) *allocation.ApproveRequestUseCase {
	log := logger.Nop()
	ledger := allocation.NewMovementLedger(allocation.SplitProportional)
	allocator := allocation.NewAllocator(allocation.NewSubstringMatcher(), ledger, "banco", log)
	guard := allocation.NewDuplicateGuard(time.Nanosecond)
	return allocation.NewApproveRequestUseCase(store, guard, allocator, store.EventRepo(), log)
}

func seedArroz(store *memory.Store, lotQty float64, requestedQty float64) {
	store.SeedProduct(entity.Product{ID: "p-arroz", Name: "Arroz blanco"})
	if lotQty > 0 {
		store.SeedLot(entity.StockLot{
			LocationID: "sede-1",
			ProductID:  "p-arroz",
			Quantity:   decimal.NewFromFloat(lotQty),
			UpdatedAt:  time.Now(),
		})
	}
	store.SeedRequest(entity.Request{
		ID:                "sol-1",
		BeneficiaryID:     "ben-1",
		ProductName:       "arroz",
		RequestedQuantity: decimal.NewFromFloat(requestedQty),
		State:             entity.RequestStatePending,
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Aprobación de solicitud de punta a punta
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: el ciclo de vida completo: parcial con el stock disponible,
// completa cuando entra más stock, y rechazo del tercer intento porque
// la solicitud ya quedó cumplida.
func TestApproveRequest_ParcialLuegoCompleta(t *testing.T) {
	store := memory.NewStore()
	seedArroz(store, 4, 10)
	uc := newApproveUC(store)
	ctx := context.Background()

	out, err := uc.ApproveRequest(ctx, "sol-1", "op-1", "primera entrega")
	require.NoError(t, err)
	assert.Equal(t, domalloc.OutcomePartial, out.Outcome)
	assert.True(t, out.Delivered.Equal(decimal.NewFromInt(4)))
	assert.True(t, out.Remainder.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, 40, out.Percentage)
	assert.Equal(t, entity.RequestStateApproved, out.State)
	assert.True(t, store.Lot("sede-1", "p-arroz").Quantity.IsZero(), "el lote quedó consumido")

	// Entra más stock (p. ej. una donación ya ingresada).
	store.SeedLot(entity.StockLot{
		LocationID: "sede-1", ProductID: "p-arroz",
		Quantity: decimal.NewFromInt(6), UpdatedAt: time.Now(),
	})

	out, err = uc.ApproveRequest(ctx, "sol-1", "op-1", "segunda entrega")
	require.NoError(t, err)
	assert.Equal(t, domalloc.OutcomeComplete, out.Outcome)
	assert.Equal(t, 100, out.Percentage)
	assert.Equal(t, entity.RequestStateFulfilled, out.State)

	// Cumplida es terminal.
	_, err = uc.ApproveRequest(ctx, "sol-1", "op-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	history, err := uc.GetFulfillmentHistory(ctx, "sol-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "primera entrega", history[0].Comment)
	assert.Equal(t, 40, history[0].Percentage)
	assert.Equal(t, 60, history[1].Percentage)

	// Lectura idempotente: sin escrituras intermedias el historial es
	// idéntico y en el mismo orden.
	again, err := uc.GetFulfillmentHistory(ctx, "sol-1")
	require.NoError(t, err)
	assert.Equal(t, history, again)
}

// Caso 2: sin stock coincidente el desenlace es noStock, no un error: la
// solicitud sigue pendiente y asignable, queda el intento en el historial
// y el libro de movimientos no se toca.
func TestApproveRequest_SinStockNoEsError(t *testing.T) {
	store := memory.NewStore()
	seedArroz(store, 0, 10)
	uc := newApproveUC(store)

	out, err := uc.ApproveRequest(context.Background(), "sol-1", "op-1", "")
	require.NoError(t, err)
	assert.Equal(t, domalloc.OutcomeNoStock, out.Outcome)
	assert.True(t, out.Delivered.IsZero())
	assert.Equal(t, entity.RequestStatePending, out.State, "la solicitud sigue asignable")

	assert.Len(t, store.Events(), 1, "el intento queda auditado")
	assert.Empty(t, store.Movements(), "sin entrega no hay movimiento")
}

// Caso 3: doble aprobación concurrente (doble clic). Solo una ejecución
// toca el stock; ambas llamadas reciben el mismo resultado.
func TestApproveRequest_DobleAprobacionConcurrente(t *testing.T) {
	store := memory.NewStore()
	seedArroz(store, 20, 5)
	log := logger.Nop()
	ledger := allocation.NewMovementLedger(allocation.SplitProportional)
	allocator := allocation.NewAllocator(allocation.NewSubstringMatcher(), ledger, "banco", log)
	guard := allocation.NewDuplicateGuard(time.Minute)
	uc := allocation.NewApproveRequestUseCase(store, guard, allocator, store.EventRepo(), log)

	const callers = 2
	outs := make([]*dto.AllocationResultResponse, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i], errs[i] = uc.ApproveRequest(context.Background(), "sol-1", "op-1", "")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, domalloc.OutcomeComplete, outs[i].Outcome)
	}

	assert.True(t, store.Lot("sede-1", "p-arroz").Quantity.Equal(decimal.NewFromInt(15)), "el stock se descuenta una sola vez")
	assert.Len(t, store.Events(), 1, "una sola entrega registrada")
	assert.Len(t, store.Movements(), 1)
}

// Caso 4: consistencia del libro: para cada entrega, la suma de las
// líneas del movimiento iguala la cantidad del evento, incluso cuando la
// entrega cruza varios productos.
func TestApproveRequest_LibroConsistenteConElHistorial(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.Product{ID: "p-rojo", Name: "Frijol rojo"})
	store.SeedProduct(entity.Product{ID: "p-negro", Name: "Frijol negro"})
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store.SeedLot(entity.StockLot{LocationID: "sede-1", ProductID: "p-rojo", Quantity: decimal.NewFromInt(6), UpdatedAt: base})
	store.SeedLot(entity.StockLot{LocationID: "sede-2", ProductID: "p-negro", Quantity: decimal.NewFromInt(7), UpdatedAt: base.Add(time.Hour)})
	store.SeedRequest(entity.Request{
		ID: "sol-1", BeneficiaryID: "ben-1", ProductName: "frijol",
		RequestedQuantity: decimal.NewFromInt(10), State: entity.RequestStatePending,
	})
	uc := newApproveUC(store)

	out, err := uc.ApproveRequest(context.Background(), "sol-1", "op-1", "")
	require.NoError(t, err)
	assert.Equal(t, domalloc.OutcomeComplete, out.Outcome)

	movements := store.Movements()
	events := store.Events()
	require.Len(t, movements, 1)
	require.Len(t, events, 1)

	movement := movements[0]
	require.Len(t, movement.Details, 2, "una línea por producto tocado")
	assert.True(t, movement.Details[0].Quantity.Equal(decimal.NewFromInt(6)), "el lote más antiguo (rojo) primero")
	assert.True(t, movement.Details[1].Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, movement.TotalQuantity().Equal(events[0].Quantity), "líneas del libro == cantidad del evento")
	assert.Equal(t, "banco", movement.SourceActorID)
	assert.Equal(t, "ben-1", movement.DestActorID)
	for _, d := range movement.Details {
		assert.Equal(t, entity.MovementDirectionEgress, d.Direction)
		assert.Equal(t, "delivery", d.Role)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazo y validaciones
// ──────────────────────────────────────────────────────────────────────────────

// Caso 5: solo pending → rejected es válido; rejected es terminal para
// rechazos y aprobaciones posteriores.
func TestRejectRequest_SoloDesdePendiente(t *testing.T) {
	store := memory.NewStore()
	seedArroz(store, 10, 5)
	uc := newApproveUC(store)
	ctx := context.Background()

	require.NoError(t, uc.RejectRequest(ctx, "sol-1", "op-1"))
	assert.Equal(t, entity.RequestStateRejected, store.Request("sol-1").State)

	assert.ErrorIs(t, uc.RejectRequest(ctx, "sol-1", "op-1"), domain.ErrInvalidStateTransition)
	_, err := uc.ApproveRequest(ctx, "sol-1", "op-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.True(t, store.Lot("sede-1", "p-arroz").Quantity.Equal(decimal.NewFromInt(10)), "rechazar no toca stock")
}

// Caso 6: entradas inválidas y solicitud inexistente.
func TestApproveRequest_Validaciones(t *testing.T) {
	store := memory.NewStore()
	uc := newApproveUC(store)
	ctx := context.Background()

	_, err := uc.ApproveRequest(ctx, "", "op-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.ApproveRequest(ctx, "sol-x", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.ApproveRequest(ctx, "no-existe", "op-1", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Cantidad pedida no positiva: se rechaza antes de tocar stock.
	store.SeedRequest(entity.Request{
		ID: "sol-cero", ProductName: "arroz",
		RequestedQuantity: decimal.Zero, State: entity.RequestStatePending,
	})
	_, err = uc.ApproveRequest(ctx, "sol-cero", "op-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Empty(t, store.Events(), "la transacción fallida no deja rastro")
}
