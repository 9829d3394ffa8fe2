package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dcruz/schoolgate/internal/app/models/dto"
)

const (
	// DefaultPageSize is used when the client does not specify a size.
	DefaultPageSize = 20
	// MaxPageSize caps the number of rows a single request can fetch.
	MaxPageSize = 100
)

// GetPaginationParams extracts page and size query parameters with sane bounds.
func GetPaginationParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}

	size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return page, size
}

// NewPaginationInfo builds pagination metadata from page, size and total count.
func NewPaginationInfo(page, size int, total int64) dto.PaginationInfo {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		PageSize:    size,
		TotalItems:  total,
		TotalPages:  totalPages,
	}
}
