package localdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/todos/internal/record"
)

// AddAsync queues Add and returns its future.
func (d *DB) AddAsync(collection string, rec record.Record) *Future[struct{}] {
	return submit(d, "add", KindWrite, collection, func(ctx context.Context) (struct{}, error) {
		if err := d.ready("add", collection); err != nil {
			return struct{}{}, err
		}
		if err := d.insert(ctx, collection, rec, false); err != nil {
			return struct{}{}, wrap(KindWrite, "add", collection, err)
		}
		return struct{}{}, nil
	})
}

// Add inserts rec as-is. The record must already carry its key at the
// collection's key path. Fails with WriteError (ConstraintError) if a
// record with that key exists.
func (d *DB) Add(ctx context.Context, collection string, rec record.Record) error {
	_, err := d.AddAsync(collection, rec).Await(ctx)
	return err
}

// PushAsync queues Push and returns its future.
func (d *DB) PushAsync(collection string, rec record.Record) *Future[int64] {
	return submit(d, "push", KindWrite, collection, func(ctx context.Context) (int64, error) {
		return d.push(ctx, collection, rec)
	})
}

// Push inserts rec under a freshly allocated numeric identifier and
// returns it. rec itself is not modified; the stored record is a copy with
// the identifier set at the key path.
//
// The collection must exist in the database as of the last Open,
// otherwise Push fails with ConfigurationError (NotFoundError). The counter is advanced
// before the write and stepped back (never below 0) if the write fails.
func (d *DB) Push(ctx context.Context, collection string, rec record.Record) (int64, error) {
	return d.PushAsync(collection, rec).Await(ctx)
}

// push runs on the loop goroutine.
func (d *DB) push(ctx context.Context, collection string, rec record.Record) (int64, error) {
	if err := d.ready("push", collection); err != nil {
		return 0, err
	}

	keyPath, ok := d.keyPaths[collection]
	if !ok || keyPath == "" {
		return 0, &Error{
			Kind:       KindConfiguration,
			Op:         "push",
			Collection: collection,
			Code:       CodeNotFound,
			Err:        fmt.Errorf("collection %q does not exist; open it at a newer version to create it", collection),
		}
	}

	id := d.lastIDs[collection] + 1
	d.lastIDs[collection] = id

	doc := rec.Clone()
	if doc == nil {
		doc = record.Record{}
	}

	err := doc.Set(keyPath, id)
	if err == nil {
		err = d.insert(ctx, collection, doc, false)
	} else {
		err = withCode(CodeData, err)
	}
	if err != nil {
		if d.lastIDs[collection] > 0 {
			d.lastIDs[collection]--
		}
		d.logger.Debug("push failed, identifier released", "collection", collection, "id", id, "error", err)
		return 0, wrap(KindWrite, "push", collection, fmt.Errorf("record with id %d: %w", id, err))
	}
	return id, nil
}

// PutAsync queues Put and returns its future.
func (d *DB) PutAsync(collection string, rec record.Record) *Future[struct{}] {
	return submit(d, "put", KindWrite, collection, func(ctx context.Context) (struct{}, error) {
		if err := d.ready("put", collection); err != nil {
			return struct{}{}, err
		}
		if err := d.insert(ctx, collection, rec, true); err != nil {
			return struct{}{}, wrap(KindWrite, "put", collection, err)
		}
		return struct{}{}, nil
	})
}

// Put inserts rec, replacing any record with the same key.
func (d *DB) Put(ctx context.Context, collection string, rec record.Record) error {
	_, err := d.PutAsync(collection, rec).Await(ctx)
	return err
}

// insert writes rec keyed by the value at the collection's key path.
// With upsert set an existing record is replaced, otherwise a duplicate
// key violates the primary key.
func (d *DB) insert(ctx context.Context, collection string, rec record.Record, upsert bool) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		keyPath, err := collectionKeyPath(ctx, tx, collection)
		if err != nil {
			return err
		}

		rawKey, ok := rec.Lookup(keyPath)
		if !ok {
			return codef(CodeData, "record has no value at key path %q", keyPath)
		}
		key, err := record.NormalizeKey(rawKey)
		if err != nil {
			return withCode(CodeData, fmt.Errorf("key path %q: %w", keyPath, err))
		}

		body, err := record.Marshal(rec)
		if err != nil {
			return withCode(CodeData, err)
		}

		query := `INSERT INTO records (collection, record_key, body) VALUES (?, ?, ?)`
		if upsert {
			query += ` ON CONFLICT(collection, record_key) DO UPDATE SET body = excluded.body`
		}
		if _, err := tx.ExecContext(ctx, query, collection, key, string(body)); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		return nil
	})
}

// DeleteAsync queues Delete and returns its future.
func (d *DB) DeleteAsync(collection string, key any) *Future[struct{}] {
	return submit(d, "delete", KindDelete, collection, func(ctx context.Context) (struct{}, error) {
		if err := d.ready("delete", collection); err != nil {
			return struct{}{}, err
		}
		err := d.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := collectionKeyPath(ctx, tx, collection); err != nil {
				return err
			}
			k, err := record.NormalizeKey(key)
			if err != nil {
				return withCode(CodeData, err)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM records WHERE collection = ? AND record_key = ?`, collection, k); err != nil {
				return fmt.Errorf("delete record: %w", err)
			}
			return nil
		})
		if err != nil {
			return struct{}{}, wrap(KindDelete, "delete", collection, err)
		}
		return struct{}{}, nil
	})
}

// Delete removes the record with key. Deleting a missing key succeeds.
func (d *DB) Delete(ctx context.Context, collection string, key any) error {
	_, err := d.DeleteAsync(collection, key).Await(ctx)
	return err
}
