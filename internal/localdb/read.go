package localdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/todos/internal/record"
)

// GetAsync queues Get and returns its future.
func (d *DB) GetAsync(collection string, key any) *Future[record.Record] {
	return submit(d, "get", KindRead, collection, func(ctx context.Context) (record.Record, error) {
		if err := d.ready("get", collection); err != nil {
			return nil, err
		}
		var rec record.Record
		err := d.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := collectionKeyPath(ctx, tx, collection); err != nil {
				return err
			}
			k, err := record.NormalizeKey(key)
			if err != nil {
				return withCode(CodeData, err)
			}

			var body string
			err = tx.QueryRowContext(ctx,
				`SELECT body FROM records WHERE collection = ? AND record_key = ?`, collection, k).Scan(&body)
			if err == sql.ErrNoRows {
				return nil
			}
			if err != nil {
				return fmt.Errorf("query record: %w", err)
			}

			rec, err = record.Unmarshal([]byte(body))
			return err
		})
		if err != nil {
			return nil, wrap(KindRead, "get", collection, err)
		}
		return rec, nil
	})
}

// Get returns the record stored under key, or nil if there is none.
// A missing record is not an error.
func (d *DB) Get(ctx context.Context, collection string, key any) (record.Record, error) {
	return d.GetAsync(collection, key).Await(ctx)
}

// GetAllAsync queues GetAll and returns its future.
func (d *DB) GetAllAsync(collection string) *Future[[]record.Record] {
	return submit(d, "get all", KindRead, collection, func(ctx context.Context) ([]record.Record, error) {
		if err := d.ready("get all", collection); err != nil {
			return nil, err
		}
		var recs []record.Record
		err := d.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := collectionKeyPath(ctx, tx, collection); err != nil {
				return err
			}
			var err error
			recs, err = scanAll(ctx, tx, collection)
			return err
		})
		if err != nil {
			return nil, wrap(KindRead, "get all", collection, err)
		}
		return recs, nil
	})
}

// GetAll returns every record of collection in key order: numeric keys
// ascending, then text keys. Returns an empty slice (not nil) for an empty
// collection.
func (d *DB) GetAll(ctx context.Context, collection string) ([]record.Record, error) {
	return d.GetAllAsync(collection).Await(ctx)
}

func scanAll(ctx context.Context, tx *sql.Tx, collection string) ([]record.Record, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT body FROM records
		WHERE collection = ?
		ORDER BY record_key ASC
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	recs := []record.Record{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := record.Unmarshal([]byte(body))
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return recs, nil
}
