package allocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
	"github.com/tu-usuario/bancoalimentos-api/internal/infrastructure/memory"
)

// matchWith ejecuta el matcher contra los repos del almacén en memoria.
func matchWith(t *testing.T, store *memory.Store, name string) ([]entity.StockLot, []entity.Product) {
	t.Helper()
	matcher := allocation.NewSubstringMatcher()
	var candidates []entity.StockLot
	var matched []entity.Product
	err := store.Run(context.Background(), func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		_ repository.RequestRepository,
		_ repository.AllocationEventRepository,
		_ repository.MovementRepository,
	) error {
		var err error
		candidates, matched, err = matcher.Match(context.Background(), productRepo, lotRepo, name)
		return err
	})
	require.NoError(t, err)
	return candidates, matched
}

// ──────────────────────────────────────────────────────────────────────────────
// Coincidencia laxa por substring
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: la coincidencia ignora mayúsculas y acentos ("azucar" debe
// encontrar "Azúcar morena").
func TestSubstringMatcher_IgnoraMayusculasYAcentos(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.Product{ID: "p-azucar", Name: "Azúcar morena"})
	store.SeedProduct(entity.Product{ID: "p-arroz", Name: "Arroz blanco"})
	store.SeedLot(entity.StockLot{LocationID: "sede-1", ProductID: "p-azucar", Quantity: decimal.NewFromInt(10), UpdatedAt: time.Now()})

	candidates, matched := matchWith(t, store, "AZUCAR")

	require.Len(t, matched, 1)
	assert.Equal(t, "p-azucar", matched[0].ID)
	require.Len(t, candidates, 1)
	assert.Equal(t, "p-azucar", candidates[0].ProductID)
}

// Caso 2: un fragmento puede coincidir con varios productos; los lotes de
// todos se aplanan y se ordenan por updated_at ascendente (stock más
// antiguo primero), cruzando sedes.
func TestSubstringMatcher_VariosProductosLotesOrdenadosPorAntiguedad(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.Product{ID: "p-rojo", Name: "Frijol rojo"})
	store.SeedProduct(entity.Product{ID: "p-negro", Name: "Frijol negro"})
	store.SeedProduct(entity.Product{ID: "p-lenteja", Name: "Lenteja"})

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	store.SeedLot(entity.StockLot{LocationID: "sede-2", ProductID: "p-negro", Quantity: decimal.NewFromInt(5), UpdatedAt: base.Add(2 * time.Hour)})
	store.SeedLot(entity.StockLot{LocationID: "sede-1", ProductID: "p-rojo", Quantity: decimal.NewFromInt(8), UpdatedAt: base})
	store.SeedLot(entity.StockLot{LocationID: "sede-1", ProductID: "p-negro", Quantity: decimal.NewFromInt(3), UpdatedAt: base.Add(time.Hour)})
	store.SeedLot(entity.StockLot{LocationID: "sede-1", ProductID: "p-lenteja", Quantity: decimal.NewFromInt(9), UpdatedAt: base})

	candidates, matched := matchWith(t, store, "frijol")

	require.Len(t, matched, 2, "frijol coincide con rojo y negro, no con lenteja")
	require.Len(t, candidates, 3)
	assert.Equal(t, "p-rojo", candidates[0].ProductID, "el lote más antiguo va primero")
	assert.Equal(t, "sede-1", candidates[1].LocationID)
	assert.Equal(t, "p-negro", candidates[1].ProductID)
	assert.Equal(t, "sede-2", candidates[2].LocationID)
}

// Caso 3: los lotes vacíos no aparecen como candidatos.
func TestSubstringMatcher_OmiteLotesVacios(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.Product{ID: "p-arroz", Name: "Arroz blanco"})
	store.SeedLot(entity.StockLot{LocationID: "sede-1", ProductID: "p-arroz", Quantity: decimal.Zero, UpdatedAt: time.Now()})

	candidates, matched := matchWith(t, store, "arroz")

	require.Len(t, matched, 1)
	assert.Empty(t, candidates, "un lote en cero no es candidato")
}

// Caso 4: cero coincidencias es un resultado válido, no un error; el
// nombre en blanco tampoco coincide con nada.
func TestSubstringMatcher_SinCoincidenciasNoEsError(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(entity.Product{ID: "p-arroz", Name: "Arroz blanco"})

	candidates, matched := matchWith(t, store, "quinua")
	assert.Empty(t, candidates)
	assert.Empty(t, matched)

	candidates, matched = matchWith(t, store, "   ")
	assert.Empty(t, candidates)
	assert.Empty(t, matched)
}
