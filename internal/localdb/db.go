package localdb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DB is a handle on one named, versioned embedded database.
//
// The zero value is not usable; create handles with New.
type DB struct {
	name     string
	version  int
	path     string
	lockPath string
	logger   *slog.Logger

	// unavailable is set when the capability check in New failed.
	unavailable error

	queue *taskQueue
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error

	// Owned by the loop goroutine.
	sqlDB    *sql.DB
	opened   bool
	closed   bool
	lock     *flock.Flock
	keyPaths map[string]string
	lastIDs  map[string]int64
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for warnings and diagnostics.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a handle for database name at the given version, stored in
// dir as <name>.db. Nothing is opened until Open is called.
//
// If the storage directory cannot be created, New logs a warning and
// returns an unusable handle: Open fails with OpenError (UnavailableError)
// and every other operation with ConfigurationError. Close is always safe.
func New(dir, name string, version int, opts ...Option) *DB {
	d := &DB{
		name:     name,
		version:  version,
		path:     filepath.Join(dir, name+".db"),
		lockPath: filepath.Join(dir, name+".lock"),
		logger:   slog.Default(),
		queue:    newTaskQueue(),
		done:     make(chan struct{}),
		keyPaths: make(map[string]string),
		lastIDs:  make(map[string]int64),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("db", name, "version", version)

	if err := checkStorage(dir, name); err != nil {
		d.unavailable = err
		d.logger.Warn("embedded storage unavailable, database handle is unusable", "dir", dir, "error", err)
	} else {
		d.lock = flock.New(d.lockPath)
	}

	go d.loop()
	return d
}

// checkStorage verifies that dir exists (creating it if needed) and is a
// directory.
func checkStorage(dir, name string) error {
	if name == "" {
		return fmt.Errorf("database name is empty")
	}
	if dir == "" {
		return fmt.Errorf("storage directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Name returns the database name.
func (d *DB) Name() string { return d.name }

// Version returns the version this handle opens the database at.
func (d *DB) Version() int { return d.version }

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// loop is the single goroutine that runs every task.
func (d *DB) loop() {
	defer close(d.done)

	// Operations are not cancellable once issued.
	ctx := context.Background()
	for {
		if t, ok := d.queue.TryDequeue(); ok {
			t.run(ctx)
			continue
		}
		if d.queue.Drained() {
			return
		}
		<-d.queue.Wait()
	}
}

// submit queues fn on the loop and returns its future. A panic inside fn
// resolves the future with an error instead of killing the loop.
func submit[T any](d *DB, op string, kind Kind, collection string, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	ok := d.queue.Enqueue(task{
		op: op,
		run: func(ctx context.Context) {
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("operation panicked", "op", op, "collection", collection, "panic", r)
					var zero T
					f.resolve(zero, wrap(kind, op, collection, fmt.Errorf("panic: %v", r)))
				}
			}()
			val, err := fn(ctx)
			f.resolve(val, err)
		},
	})
	if !ok {
		var zero T
		f.resolve(zero, closedError(op, collection))
	}
	return f
}

// Close drains queued operations, closes the connection and stops the
// loop. Safe to call more than once; later calls return the first result.
func (d *DB) Close() error {
	d.closeOnce.Do(func() {
		f := submit(d, "close", KindConfiguration, "", func(ctx context.Context) (struct{}, error) {
			d.opened = false
			d.closed = true
			if d.sqlDB == nil {
				return struct{}{}, nil
			}
			err := d.sqlDB.Close()
			d.sqlDB = nil
			return struct{}{}, err
		})
		_, d.closeErr = f.Await(context.Background())
		d.queue.Close()
		<-d.done
	})
	return d.closeErr
}

// closedError is returned by operations that run after the close task.
func closedError(op, collection string) error {
	return &Error{Kind: KindConfiguration, Op: op, Collection: collection, Code: CodeInvalidState, Err: ErrClosed}
}

// ready returns a ConfigurationError unless a successful Open has happened.
// Called only on the loop goroutine.
func (d *DB) ready(op, collection string) error {
	if d.closed {
		return closedError(op, collection)
	}
	if d.unavailable != nil {
		return &Error{Kind: KindConfiguration, Op: op, Collection: collection, Code: CodeUnavailable, Err: d.unavailable}
	}
	if !d.opened || d.sqlDB == nil {
		return &Error{
			Kind:       KindConfiguration,
			Op:         op,
			Collection: collection,
			Code:       CodeInvalidState,
			Err:        fmt.Errorf("database %q is not open; call Open first", d.name),
		}
	}
	return nil
}

// KeyPath returns the key path known for collection, or "" if none.
func (d *DB) KeyPath(collection string) string {
	f := submit(d, "key path", KindConfiguration, collection, func(ctx context.Context) (string, error) {
		return d.keyPaths[collection], nil
	})
	kp, _ := f.Await(context.Background())
	return kp
}

// LastID returns the identifier counter for collection (0 if unset).
func (d *DB) LastID(collection string) int64 {
	f := submit(d, "last id", KindConfiguration, collection, func(ctx context.Context) (int64, error) {
		return d.lastIDs[collection], nil
	})
	id, _ := f.Await(context.Background())
	return id
}

// Collections returns the names of the collections present in the
// database, sorted by name.
func (d *DB) Collections(ctx context.Context) ([]string, error) {
	return submit(d, "collections", KindRead, "", func(ctx context.Context) ([]string, error) {
		if err := d.ready("collections", ""); err != nil {
			return nil, err
		}
		cols, err := d.catalog(ctx)
		if err != nil {
			return nil, wrap(KindRead, "collections", "", err)
		}
		names := make([]string, 0, len(cols))
		for _, c := range cols {
			names = append(names, c.name)
		}
		return names, nil
	}).Await(ctx)
}

// withTx runs fn inside a transaction, committing on success.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// collectionKeyPath reads a collection's key path from the catalog.
// Missing collections yield a NotFoundError code.
func collectionKeyPath(ctx context.Context, tx *sql.Tx, collection string) (string, error) {
	var keyPath string
	err := tx.QueryRowContext(ctx, `SELECT key_path FROM collections WHERE name = ?`, collection).Scan(&keyPath)
	if err == sql.ErrNoRows {
		return "", codef(CodeNotFound, "collection %q does not exist", collection)
	}
	if err != nil {
		return "", fmt.Errorf("lookup collection: %w", err)
	}
	return keyPath, nil
}
