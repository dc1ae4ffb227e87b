package catalog

import "context"

const DefaultPageSize = 10

// Record is a single purchase entry in the corpus.
type Record struct {
	ProductID   string  `json:"productId" yaml:"product_id"`
	ProductName string  `json:"productName" yaml:"product_name"`
	Price       float64 `json:"price" yaml:"price"`
	BoughtDate  string  `json:"boughtDate" yaml:"bought_date"` // YYYY-MM-DD
}

// PageSource returns the records of one zero-based page. A page past the end
// of the corpus yields an empty slice and a nil error.
type PageSource interface {
	FetchPage(ctx context.Context, page int) ([]Record, error)
}

// PageBounds returns the [start, end) corpus offsets of page, clipped to total.
// Pages past the end yield an empty range without computing page*pageSize.
func PageBounds(page, pageSize, total int) (int, int) {
	if page >= (total+pageSize-1)/pageSize {
		return total, total
	}
	start := page * pageSize
	return start, min(start+pageSize, total)
}
