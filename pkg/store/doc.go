// Package store provides persistence collaborators for clone
// operations.
//
// Three sinks are included. Memory keeps archived attribute snapshots
// in process, assigns identities on save, and accepts a validation
// hook; it backs tests and small tools. SQLite writes each archived
// record as a row in a generic archives table with its attributes as
// JSON, using the pure-Go driver. S3 writes one JSON object per record
// under <prefix>/<type>/<identity>.json and requires records to carry
// a non-zero identity before archiving.
//
// All sinks surface failures with the PERSISTENCE error code so
// callers can distinguish storage rejections from configuration
// problems.
package store
