package catalog

import (
	"context"
	"slices"
)

// Memory serves pages from a resident corpus.
type Memory struct {
	records  []Record
	pageSize int
}

func NewMemory(records []Record, pageSize int) *Memory {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Memory{
		records:  slices.Clone(records),
		pageSize: pageSize,
	}
}

func (m *Memory) FetchPage(ctx context.Context, page int) ([]Record, error) {
	if page < 0 {
		return nil, ErrInvalidPage
	}

	select {
	case <-ctx.Done():
		return nil, contextError(page, ctx.Err())
	default:
	}

	start, end := PageBounds(page, m.pageSize, len(m.records))
	return slices.Clone(m.records[start:end]), nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	return len(m.records), nil
}
