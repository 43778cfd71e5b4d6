// Package localdb provides a versioned, collection-oriented record store on
// top of an embedded SQLite database.
//
// A DB handle is identified by (name, version). Each collection is a named
// set of records keyed by the value at the collection's key path. The
// handle tracks, per collection, the key path and the highest numeric
// identifier issued or observed so far, which Push uses to allocate the
// next identifier.
//
// # Execution Model
//
// Every operation is a task on the handle's FIFO queue. One loop goroutine
// drains the queue and runs each task to completion inside its own short
// transaction, so:
//   - the key path and counter maps are only touched by the loop goroutine
//   - operations resolve in submission order
//   - concurrent Push calls on one collection get consecutive identifiers
//
// The XxxAsync methods return a Future that resolves exactly once. The
// blocking methods await that future; abandoning the wait (ctx done) does
// not cancel the operation.
//
// # Versioning
//
// The version lives in PRAGMA user_version. Opening with a higher version
// than the stored one runs the upgrade step, which is the only place a
// collection is created. Opening with a lower version fails with
// VersionError.
//
// # Storage Layout
//
//   - collections(name, key_path): the catalog
//   - records(collection, record_key, body): one row per record; record_key
//     has no declared type so integer, real and text keys keep their type
//   - body is the record encoded by record.Marshal
//
// Connections use WAL mode, synchronous=NORMAL, a 5 second busy timeout
// and foreign key enforcement.
package localdb
