package persistence

import (
	"strings"

	"github.com/marketplace/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyPagination applies page/size and ordering from a filter.
// OrderBy is matched against an allow-list so callers cannot inject
// arbitrary SQL through sort parameters.
func applyPagination(query *gorm.DB, filter shared.Filter, allowedOrderBy ...string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ""
	for _, col := range allowedOrderBy {
		if filter.OrderBy == col {
			orderBy = col
			break
		}
	}
	if orderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(orderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}
