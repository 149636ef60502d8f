package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-task-api/internal/constants"
)

// PaginationParams selects one page of an activity or notification feed.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse is the page metadata returned next to a feed.
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// NewPaginationParams clamps page and limit into range. Out of range limits
// fall back to the default page size rather than the nearest bound.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	return PaginationParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Response describes this page of a feed holding total rows.
func (p PaginationParams) Response(total int64) PaginationResponse {
	return PaginationResponse{Page: p.Page, Limit: p.Limit, Total: total}
}

// GetPaginationParams reads ?page and ?limit. Unparsable values are treated as absent.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = constants.MinPageSize
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = constants.DefaultPageSize
	}
	return NewPaginationParams(page, limit)
}
