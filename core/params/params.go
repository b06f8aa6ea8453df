package params

// QueryParams are the common list-endpoint paging parameters.
type QueryParams struct {
	PageNumber int `query:"page"`
	PageSize   int `query:"page_size"`
}

// Normalize clamps paging parameters to sane values.
func (p *QueryParams) Normalize() {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}
