package entity

import "time"

// Product representa un producto del catálogo del banco de alimentos.
// El catálogo es de solo lectura para el subsistema de asignación; la
// administración (altas, unidades, categorías) vive en otro módulo.
type Product struct {
	ID        string
	Name      string
	Category  string
	CreatedAt time.Time
}
