package allocation

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Matcher resuelve el nombre libre pedido por el beneficiario a lotes
// candidatos ordenados para consumo determinista. Está detrás de una
// interfaz para poder sustituir la estrategia (FK estricta, trigramas)
// sin tocar el motor de asignación.
type Matcher interface {
	// Match devuelve los lotes candidatos (ordenados por updated_at
	// ascendente) y los productos del catálogo que coincidieron.
	// Cero coincidencias es un resultado válido, no un error.
	Match(ctx context.Context, products repository.ProductRepository, lots repository.LotRepository, requestedName string) ([]entity.StockLot, []entity.Product, error)
}

// SubstringMatcher implementa la coincidencia laxa observada en el
// negocio: substring insensible a mayúsculas y acentos entre el texto
// pedido y el nombre canónico de cada producto. Deliberadamente puede
// coincidir con varios productos ("frijol" → "Frijol rojo", "Frijol negro").
type SubstringMatcher struct{}

// NewSubstringMatcher construye el matcher por substring.
func NewSubstringMatcher() *SubstringMatcher {
	return &SubstringMatcher{}
}

// Match busca productos por fragmento, filtra con el nombre normalizado
// (sin acentos, minúsculas), aplana los lotes de todos los productos y
// sedes y los ordena por updated_at ascendente (stock más antiguo primero).
func (m *SubstringMatcher) Match(ctx context.Context, products repository.ProductRepository, lots repository.LotRepository, requestedName string) ([]entity.StockLot, []entity.Product, error) {
	fragment := strings.TrimSpace(requestedName)
	if fragment == "" {
		return nil, nil, nil
	}

	found, err := products.SearchByName(ctx, fragment)
	if err != nil {
		return nil, nil, err
	}

	// El ILIKE de la BD no cubre acentos ("azucar" vs "Azúcar"); se
	// refina aquí con el nombre plegado.
	wanted := FoldName(fragment)
	var matched []entity.Product
	for _, p := range found {
		if strings.Contains(FoldName(p.Name), wanted) {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		return nil, nil, nil
	}

	ids := make([]string, len(matched))
	for i, p := range matched {
		ids[i] = p.ID
	}
	candidates, err := lots.ListForProducts(ctx, ids)
	if err != nil {
		return nil, matched, err
	}

	// El repositorio ya ordena, pero el orden es parte del contrato del
	// matcher: se reafirma aquí para implementaciones en memoria.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].UpdatedAt.Before(candidates[j].UpdatedAt)
	})
	return candidates, matched, nil
}

// FoldName normaliza un nombre para comparar: minúsculas y sin marcas
// diacríticas (NFD + quitar Mn + NFC). Lo usan también los repositorios
// en memoria para igualar la semántica de unaccent + ILIKE.
func FoldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
