package dto

// PageRequest parámetros de paginación de los listados del libro
// de movimientos y demás consultas.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage normaliza límites fuera de rango: 20 filas por página
// cuando no se pide un límite y offset nunca negativo.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de la página devuelta junto a los items.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo uniforme de error que devuelven los handlers
// (el código es estable para los clientes; el mensaje es informativo).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
