package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura del catálogo sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por id; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, name, category, created_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Category, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get product", err)
	}
	return &p, nil
}

// SearchByName busca productos cuyo nombre contenga el fragmento,
// insensible a mayúsculas y acentos (unaccent + ILIKE; requiere
// CREATE EXTENSION unaccent en la base). Cero filas no es un error.
func (r *ProductRepo) SearchByName(ctx context.Context, fragment string) ([]entity.Product, error) {
	query := `
		SELECT id, name, category, created_at
		FROM products
		WHERE unaccent(name) ILIKE unaccent('%' || $1 || '%')
		ORDER BY name ASC`
	rows, err := r.q.Query(ctx, query, fragment)
	if err != nil {
		return nil, domain.NewStorageError("search products", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.CreatedAt); err != nil {
			return nil, domain.NewStorageError("scan product", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
