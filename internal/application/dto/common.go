package dto

// PageQuery limit/offset leídos del query string. Cero = valor por defecto del listado.
type PageQuery struct {
	Limit  int `query:"limit" validate:"min=0"`
	Offset int `query:"offset" validate:"min=0"`
}

// Resolve aplica el límite por defecto y el tope del listado.
func (p PageQuery) Resolve(def, max int) PageResponse {
	limit := p.Limit
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return PageResponse{Limit: limit, Offset: p.Offset}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Details lista los campos rechazados por validación.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
