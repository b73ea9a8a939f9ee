package allocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	domalloc "github.com/tu-usuario/bancoalimentos-api/internal/domain/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
	"github.com/tu-usuario/bancoalimentos-api/internal/infrastructure/memory"
)

func take(locationID, productID string, qty float64) domalloc.LotTake {
	return domalloc.LotTake{
		Lot:    entity.StockLot{LocationID: locationID, ProductID: productID},
		Amount: decimal.NewFromFloat(qty),
	}
}

// recordWith persiste el movimiento con los repos del almacén en memoria.
func recordWith(t *testing.T, store *memory.Store, ledger *allocation.MovementLedger, result domalloc.Result, rc allocation.RecordContext) *entity.Movement {
	t.Helper()
	var movement *entity.Movement
	err := store.Run(context.Background(), func(
		_ repository.LotRepository,
		_ repository.ProductRepository,
		_ repository.RequestRepository,
		_ repository.AllocationEventRepository,
		movementRepo repository.MovementRepository,
	) error {
		var err error
		movement, err = ledger.Record(context.Background(), movementRepo, result, rc, time.Now())
		return err
	})
	require.NoError(t, err)
	return movement
}

// ──────────────────────────────────────────────────────────────────────────────
// Reparto proporcional (por defecto)
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: una línea por producto con lo realmente tomado de sus lotes;
// los lotes del mismo producto se agregan en una sola línea.
func TestMovementLedger_ProporcionalUnaLineaPorProducto(t *testing.T) {
	store := memory.NewStore()
	ledger := allocation.NewMovementLedger(allocation.SplitProportional)
	result := domalloc.Result{
		Delivered: decimal.NewFromInt(9),
		Breakdown: []domalloc.LotTake{
			take("sede-1", "p-rojo", 3),
			take("sede-2", "p-rojo", 4),
			take("sede-1", "p-negro", 2),
		},
		Outcome: domalloc.OutcomeComplete,
	}

	movement := recordWith(t, store, ledger, result, allocation.RecordContext{
		SourceActorID: "banco",
		DestActorID:   "ben-1",
		OperatorID:    "op-1",
		Role:          "delivery",
		Direction:     entity.MovementDirectionEgress,
	})

	require.NotNil(t, movement)
	require.Len(t, movement.Details, 2)
	assert.Equal(t, "p-rojo", movement.Details[0].ProductID)
	assert.True(t, movement.Details[0].Quantity.Equal(decimal.NewFromInt(7)), "3 + 4 de los dos lotes de p-rojo")
	assert.Equal(t, "p-negro", movement.Details[1].ProductID)
	assert.True(t, movement.TotalQuantity().Equal(result.Delivered))
	assert.Equal(t, entity.MovementStatusCompleted, movement.Status)
	assert.Equal(t, "banco", movement.SourceActorID)
	assert.Equal(t, "ben-1", movement.DestActorID)
}

// Caso 2: el residuo del redondeo a dos decimales lo absorbe la última
// línea; la suma de líneas siempre iguala la cantidad entregada.
func TestMovementLedger_ProporcionalResiduoEnUltimaLinea(t *testing.T) {
	store := memory.NewStore()
	ledger := allocation.NewMovementLedger(allocation.SplitProportional)
	// 3.333 + 3.333 + 3.334 tomados de tres productos; redondeadas a dos
	// decimales las dos primeras líneas dan 3.33 y el resto (3.34) cierra.
	delivered := decimal.NewFromFloat(10)
	result := domalloc.Result{
		Delivered: delivered,
		Breakdown: []domalloc.LotTake{
			take("sede-1", "p-a", 3.333),
			take("sede-1", "p-b", 3.333),
			take("sede-1", "p-c", 3.334),
		},
		Outcome: domalloc.OutcomeComplete,
	}

	movement := recordWith(t, store, ledger, result, allocation.RecordContext{
		SourceActorID: "banco", DestActorID: "ben-1", OperatorID: "op-1",
		Role: "delivery", Direction: entity.MovementDirectionEgress,
	})

	require.Len(t, movement.Details, 3)
	assert.True(t, movement.TotalQuantity().Equal(delivered), "las líneas cierran exactas contra lo entregado")
	last := movement.Details[2]
	assert.True(t, last.Quantity.Equal(decimal.NewFromFloat(3.34)))
}

// Caso 3: sin entrega (noStock) no hay nada que registrar: nil sin error
// y el libro queda intacto.
func TestMovementLedger_SinEntregaNoRegistra(t *testing.T) {
	store := memory.NewStore()
	ledger := allocation.NewMovementLedger(allocation.SplitProportional)
	result := domalloc.Result{Delivered: decimal.Zero, Outcome: domalloc.OutcomeNoStock}

	movement := recordWith(t, store, ledger, result, allocation.RecordContext{
		SourceActorID: "banco", DestActorID: "ben-1", OperatorID: "op-1",
		Role: "delivery", Direction: entity.MovementDirectionEgress,
	})

	assert.Nil(t, movement)
	assert.Empty(t, store.Movements())
}

// ──────────────────────────────────────────────────────────────────────────────
// Reparto histórico en partes iguales (legado, tras bandera de configuración)
// ──────────────────────────────────────────────────────────────────────────────

// Caso 4: el reparto legado divide lo entregado entre los productos que
// coincidieron con el nombre pedido, aunque uno no haya aportado stock.
// Se conserva solo para reportes heredados; documenta la atribución
// incorrecta que el reparto proporcional corrige.
func TestMovementLedger_LegadoRepartePartesIguales(t *testing.T) {
	store := memory.NewStore()
	ledger := allocation.NewMovementLedger(allocation.SplitEvenLegacy)
	// Todo el stock salió de p-rojo, pero "frijol" coincidió con dos
	// productos: el reparto legado atribuye 2.50 a cada uno.
	result := domalloc.Result{
		Delivered: decimal.NewFromInt(5),
		Breakdown: []domalloc.LotTake{take("sede-1", "p-rojo", 5)},
		Outcome:   domalloc.OutcomeComplete,
	}
	matched := []entity.Product{
		{ID: "p-rojo", Name: "Frijol rojo"},
		{ID: "p-negro", Name: "Frijol negro"},
	}

	movement := recordWith(t, store, ledger, result, allocation.RecordContext{
		SourceActorID: "banco", DestActorID: "ben-1", OperatorID: "op-1",
		Role: "delivery", Direction: entity.MovementDirectionEgress,
		MatchedProducts: matched,
	})

	require.Len(t, movement.Details, 2)
	assert.True(t, movement.Details[0].Quantity.Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, movement.Details[1].Quantity.Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, movement.TotalQuantity().Equal(result.Delivered))
}

// Caso 5: reparto legado con residuo: 10 entre 3 productos da 3.33,
// 3.33 y 3.34 para que la suma cierre.
func TestMovementLedger_LegadoResiduoEnUltimaLinea(t *testing.T) {
	store := memory.NewStore()
	ledger := allocation.NewMovementLedger(allocation.SplitEvenLegacy)
	result := domalloc.Result{
		Delivered: decimal.NewFromInt(10),
		Breakdown: []domalloc.LotTake{take("sede-1", "p-a", 10)},
		Outcome:   domalloc.OutcomeComplete,
	}
	matched := []entity.Product{{ID: "p-a"}, {ID: "p-b"}, {ID: "p-c"}}

	movement := recordWith(t, store, ledger, result, allocation.RecordContext{
		SourceActorID: "banco", DestActorID: "ben-1", OperatorID: "op-1",
		Role: "delivery", Direction: entity.MovementDirectionEgress,
		MatchedProducts: matched,
	})

	require.Len(t, movement.Details, 3)
	assert.True(t, movement.Details[0].Quantity.Equal(decimal.NewFromFloat(3.33)))
	assert.True(t, movement.Details[2].Quantity.Equal(decimal.NewFromFloat(3.34)))
	assert.True(t, movement.TotalQuantity().Equal(decimal.NewFromInt(10)))
}

// Caso 6: un ingreso no trae productos coincidentes; con el reparto legado
// activo el libro cae al desglose exacto en vez de fallar con entrada
// inválida.
func TestMovementLedger_LegadoIngresoSinCoincidenciasUsaDesglose(t *testing.T) {
	store := memory.NewStore()
	ledger := allocation.NewMovementLedger(allocation.SplitEvenLegacy)
	result := domalloc.Result{
		Delivered: decimal.NewFromFloat(12.5),
		Breakdown: []domalloc.LotTake{take("sede-1", "p-arroz", 12.5)},
		Outcome:   domalloc.OutcomeComplete,
	}

	movement := recordWith(t, store, ledger, result, allocation.RecordContext{
		SourceActorID: "don-1", DestActorID: "banco", OperatorID: "op-1",
		Role: "donation_intake", Direction: entity.MovementDirectionIngress,
	})

	require.NotNil(t, movement)
	require.Len(t, movement.Details, 1)
	assert.Equal(t, "p-arroz", movement.Details[0].ProductID)
	assert.True(t, movement.Details[0].Quantity.Equal(decimal.NewFromFloat(12.5)))
	assert.Equal(t, entity.MovementDirectionIngress, movement.Details[0].Direction)
}
