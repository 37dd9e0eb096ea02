package repository

import (
	"math"

	"gorm.io/gorm"
)

// DefaultPageSize is the page size of browse and staff listings.
const DefaultPageSize = 20

// Page describes one requested page.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps a requested page number and size to sane values.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > 100 {
		size = 100
	}
	return Page{Number: number, Size: size}
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	return db.Limit(p.Size).Offset(p.Offset())
}

// Pagination is the page metadata returned with listed results.
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

// Meta builds pagination metadata for p given the total row count.
func (p Page) Meta(total int64) Pagination {
	pages := int(math.Ceil(float64(total) / float64(p.Size)))
	if pages < 1 {
		pages = 1
	}
	return Pagination{
		Page:    p.Number,
		Limit:   p.Size,
		Total:   total,
		Pages:   pages,
		HasNext: p.Number < pages,
		HasPrev: p.Number > 1,
	}
}
