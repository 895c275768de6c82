package model

import (
	"fmt"
	"strings"
)

// ListParams controls paging and text search for upstream list calls.
// The zero value means the upstream defaults.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
}

// CacheKey renders the params into a stable cache key fragment.
func (p ListParams) CacheKey() string {
	search := strings.ToLower(strings.TrimSpace(p.Search))
	return fmt.Sprintf("p%d:n%d:q%s", p.Page, p.PerPage, search)
}
