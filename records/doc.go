// Package records defines the source record store boundary.
//
// The retriever never owns the system of record; it reads the full record
// set through Store and rebuilds the knowledge base from it. The jsonl
// subpackage provides a file-backed implementation for the CLI and for
// local experimentation.
package records
