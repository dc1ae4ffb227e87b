package database

import (
	"context"
	"fmt"
	"math"

	"github.com/lysyi3m/scroll-feed/app/catalog"
)

var _ catalog.PageSource = (*RecordRepository)(nil)

// RecordRepository serves corpus pages from the records table.
type RecordRepository struct {
	db       *DB
	pageSize int
}

func NewRecordRepository(db *DB, pageSize int) *RecordRepository {
	if pageSize <= 0 {
		pageSize = catalog.DefaultPageSize
	}
	return &RecordRepository{db: db, pageSize: pageSize}
}

// SeedRecords replaces the stored corpus, keeping the given order.
func (r *RecordRepository) SeedRecords(ctx context.Context, records []catalog.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (product_id, product_name, price, bought_date, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		if _, err := stmt.ExecContext(ctx, record.ProductID, record.ProductName, record.Price, record.BoughtDate, i); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", record.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}

	return nil
}

func (r *RecordRepository) FetchPage(ctx context.Context, page int) ([]catalog.Record, error) {
	if page < 0 {
		return nil, catalog.ErrInvalidPage
	}
	if page > math.MaxInt/r.pageSize {
		return []catalog.Record{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, product_name, price, bought_date
		FROM records
		ORDER BY position
		LIMIT ? OFFSET ?
	`, r.pageSize, page*r.pageSize)
	if err != nil {
		return nil, r.fetchError(ctx, page, fmt.Errorf("failed to query records: %w", err))
	}
	defer rows.Close()

	records := make([]catalog.Record, 0, r.pageSize)
	for rows.Next() {
		var record catalog.Record
		if err := rows.Scan(&record.ProductID, &record.ProductName, &record.Price, &record.BoughtDate); err != nil {
			return nil, r.fetchError(ctx, page, fmt.Errorf("failed to scan record row: %w", err))
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, r.fetchError(ctx, page, fmt.Errorf("error iterating record rows: %w", err))
	}

	return records, nil
}

func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get record count: %w", err)
	}
	return count, nil
}

func (r *RecordRepository) fetchError(ctx context.Context, page int, err error) error {
	kind := catalog.KindStorage
	if ctx.Err() != nil {
		kind = catalog.KindTimeout
	}
	return &catalog.FetchError{Page: page, Kind: kind, Err: err}
}
