// Package record provides the generic record representation stored by
// localdb.
//
// A record is a flat-or-nested mapping of field name to value. The store
// treats records as opaque except for the value found at a collection's
// key path, so this package only knows how to:
//   - encode records as JSON with sorted keys and no HTML escaping
//   - decode JSON back into records without losing integer precision
//   - read and write a value at a dotted key path ("id", "meta.id")
//   - normalise key values into the types the store compares (int64,
//     float64, string)
//
// record imports nothing internal.
package record
