package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation detecta el código 23505 de Postgres para que los
// repositorios lo traduzcan a domain.ErrDuplicate (p. ej. dos eventos
// con el mismo movement_id o un idempotency key repetido).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	// Errores ya envueltos por el driver o por un pool intermedio.
	return strings.Contains(err.Error(), "23505")
}
