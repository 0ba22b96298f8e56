package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// maxPageSize caps the per-page row count for every list endpoint.
const maxPageSize = 100

// Pagination carries the page window resolved from a list request.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination resolves the page and limit query params. Out-of-range
// values fall back to page 1 / 20 rows, and limit is capped so a single
// request cannot pull an unbounded result set.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := parseInt(c.Query("page", "1"), 1)
	limit := parseInt(c.Query("limit", "20"), 20)
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if page <= 0 {
		page = 1
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
