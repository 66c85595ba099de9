package timeline

import (
	"fmt"

	"github.com/ivlev/price2video/internal/model"
)

// Paginate splits records into consecutive pages of pageCapacity records.
// The last page may be shorter. No records means no pages.
// Pages share the backing array of records and must be treated as read-only.
func Paginate(records []model.PriceRecord, pageCapacity int) ([]model.Page, error) {
	if pageCapacity < 1 {
		return nil, fmt.Errorf("page capacity must be >= 1, got %d", pageCapacity)
	}

	pages := make([]model.Page, 0, PageCount(len(records), pageCapacity))
	for start := 0; start < len(records); start += pageCapacity {
		end := start + pageCapacity
		if end > len(records) {
			end = len(records)
		}
		// full slice expression keeps appends on a page from clobbering the next one
		pages = append(pages, model.Page{
			Index:   len(pages),
			Records: records[start:end:end],
		})
	}
	return pages, nil
}
