package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// applyPaginationAndSort appends LIMIT/OFFSET and ORDER BY. The sort column
// is checked against an allowlist so user input never reaches the SQL text.
func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
