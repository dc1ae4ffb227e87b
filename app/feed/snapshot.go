package feed

import "github.com/lysyi3m/scroll-feed/app/catalog"

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusExhausted Status = "exhausted"
)

// Snapshot is a point-in-time copy of a feed's state.
type Snapshot struct {
	Items      []catalog.Record `json:"items"`
	Count      int              `json:"count"`
	TotalPrice float64          `json:"totalPrice"`
	NextPage   int              `json:"nextPage"`
	Loading    bool             `json:"loading"`
	HasMore    bool             `json:"hasMore"`
	Active     bool             `json:"active"`
	Status     Status           `json:"status"`
	Error      string           `json:"error,omitempty"`
}

// TotalPrice sums the price of every record.
func TotalPrice(items []catalog.Record) float64 {
	var total float64
	for _, item := range items {
		total += item.Price
	}
	return total
}

func statusOf(loading, hasMore bool) Status {
	switch {
	case loading:
		return StatusLoading
	case !hasMore:
		return StatusExhausted
	default:
		return StatusIdle
	}
}
