package localdb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/todos/internal/record"
)

// collectionInfo is one catalog row.
type collectionInfo struct {
	name    string
	keyPath string
}

// OpenAsync queues Open and returns its future.
func (d *DB) OpenAsync(collection, keyPath string) *Future[struct{}] {
	return submit(d, "open", KindOpen, collection, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.open(ctx, collection, keyPath)
	})
}

// Open opens (creating or upgrading as needed) the database and makes
// collection known to the handle.
//
// When the stored version is lower than the handle's version the upgrade
// step runs: collection is created with keyPath if absent; if it exists
// with a different key path a warning is logged and the existing key path
// is kept. A collection that does not exist after this step stays unknown
// to the handle. After the version check every collection in the database has
// its key path loaded and its identifier counter initialised from the
// largest numeric key, scanning collections concurrently.
//
// This function is idempotent - safe to call multiple times.
func (d *DB) Open(ctx context.Context, collection, keyPath string) error {
	_, err := d.OpenAsync(collection, keyPath).Await(ctx)
	return err
}

// open runs on the loop goroutine.
func (d *DB) open(ctx context.Context, collection, keyPath string) error {
	if d.closed {
		return closedError("open", collection)
	}
	if d.unavailable != nil {
		return &Error{Kind: KindOpen, Op: "open", Collection: collection, Code: CodeUnavailable, Err: d.unavailable}
	}
	if collection == "" || keyPath == "" {
		return &Error{
			Kind:       KindConfiguration,
			Op:         "open",
			Collection: collection,
			Code:       CodeData,
			Err:        fmt.Errorf("collection name and key path are required"),
		}
	}

	if d.version < 1 {
		return &Error{
			Kind:       KindOpen,
			Op:         "open",
			Collection: collection,
			Code:       CodeVersion,
			Err:        fmt.Errorf("version must be a positive integer, got %d", d.version),
		}
	}

	if d.sqlDB == nil {
		db, err := connect(ctx, d.path)
		if err != nil {
			return wrap(KindOpen, "open", collection, err)
		}
		d.sqlDB = db
		d.logger.Debug("database connection established", "path", d.path)
	}

	locked, err := d.lock.TryLock()
	if err != nil {
		return wrap(KindOpen, "open", collection, fmt.Errorf("acquire lock: %w", err))
	}
	if !locked {
		return &Error{
			Kind:       KindOpen,
			Op:         "open",
			Collection: collection,
			Code:       CodeBlocked,
			Err:        fmt.Errorf("database %q is locked by another connection", d.name),
		}
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release lock failed", "path", d.lockPath, "error", err)
		}
	}()

	if err := d.upgrade(ctx, collection, keyPath); err != nil {
		return wrap(KindOpen, "open", collection, err)
	}
	if err := d.discover(ctx); err != nil {
		return wrap(KindOpen, "open", collection, err)
	}

	d.opened = true
	d.logger.Info("database opened", "collection", collection)
	return nil
}

// connect opens the SQLite file and applies the base schema.
// Pragmas are passed in the DSN so every pooled connection gets them.
func connect(ctx context.Context, path string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")
	dsn := "file:" + path + "?" + params.Encode()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Writes are already serialised by the loop; extra connections only
	// serve the concurrent key scans during Open.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// upgrade compares the stored version with the requested one and runs the
// upgrade step when the requested version is newer.
func (d *DB) upgrade(ctx context.Context, collection, keyPath string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		var stored int
		if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&stored); err != nil {
			return fmt.Errorf("get user_version: %w", err)
		}

		if d.version < stored {
			return codef(CodeVersion, "requested version %d is less than existing version %d", d.version, stored)
		}
		if d.version == stored {
			return nil
		}

		d.logger.Info("upgrading database", "from", stored, "to", d.version)

		var existing string
		err := tx.QueryRowContext(ctx, `SELECT key_path FROM collections WHERE name = ?`, collection).Scan(&existing)
		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO collections (name, key_path) VALUES (?, ?)`, collection, keyPath); err != nil {
				return fmt.Errorf("create collection: %w", err)
			}
			d.logger.Info("collection created", "collection", collection, "key_path", keyPath)
		case err != nil:
			return fmt.Errorf("lookup collection: %w", err)
		case existing != keyPath:
			d.logger.Warn("key path mismatch, keeping existing key path",
				"collection", collection,
				"requested", keyPath,
				"existing", existing,
			)
		}

		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", d.version)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
		return nil
	})
}

// catalog lists every collection in name order.
func (d *DB) catalog(ctx context.Context) ([]collectionInfo, error) {
	rows, err := d.sqlDB.QueryContext(ctx, `SELECT name, key_path FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	var cols []collectionInfo
	for rows.Next() {
		var c collectionInfo
		if err := rows.Scan(&c.name, &c.keyPath); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return cols, nil
}

// discover loads every collection's key path and initialises its counter.
// Only catalog collections get a key path. Counters never move backwards:
// the result is max(current, scanned).
func (d *DB) discover(ctx context.Context) error {
	cols, err := d.catalog(ctx)
	if err != nil {
		return err
	}

	maxes := make([]int64, len(cols))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range cols {
		g.Go(func() error {
			maxes[i] = d.maxIdentifier(gctx, c.name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, c := range cols {
		d.keyPaths[c.name] = c.keyPath
		if maxes[i] > d.lastIDs[c.name] {
			d.lastIDs[c.name] = maxes[i]
		} else if _, ok := d.lastIDs[c.name]; !ok {
			d.lastIDs[c.name] = maxes[i]
		}
		d.logger.Debug("collection discovered",
			"collection", c.name,
			"key_path", c.keyPath,
			"last_id", d.lastIDs[c.name],
		)
	}
	return nil
}

// maxIdentifier scans every key of collection and returns the largest
// numeric one, or 0 if there is none. Errors are logged and treated as 0:
// the collection stays usable, only identifier resumption is affected.
//
// Runs on errgroup goroutines: must not touch the handle's maps.
func (d *DB) maxIdentifier(ctx context.Context, collection string) int64 {
	rows, err := d.sqlDB.QueryContext(ctx, `SELECT record_key FROM records WHERE collection = ?`, collection)
	if err != nil {
		d.logger.Error("scan keys failed", "collection", collection, "error", err)
		return 0
	}
	defer rows.Close()

	var maxID int64
	for rows.Next() {
		var raw any
		if err := rows.Scan(&raw); err != nil {
			d.logger.Error("scan keys failed", "collection", collection, "error", err)
			return 0
		}
		key, err := record.NormalizeKey(raw)
		if err != nil {
			continue
		}
		if n, ok := record.NumericKey(key); ok && n > maxID {
			maxID = n
		}
	}
	if err := rows.Err(); err != nil {
		d.logger.Error("scan keys failed", "collection", collection, "error", err)
		return 0
	}
	return maxID
}
