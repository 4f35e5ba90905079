package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page/limit inputs from controllers. Pages are 1-based.
type Params struct {
	Page  int
	Limit int
}

// Page describes the slice of a result set returned to the client.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Normalize clamps page and limit into their valid ranges.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	norm := p.Normalize()
	return (norm.Page - 1) * norm.Limit
}

// Build assembles the page descriptor for a total row count. A page past the
// end is valid and simply yields no rows.
func Build(params Params, total int64) Page {
	norm := params.Normalize()
	totalPages := int((total + int64(norm.Limit) - 1) / int64(norm.Limit))
	return Page{
		Page:       norm.Page,
		Limit:      norm.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
