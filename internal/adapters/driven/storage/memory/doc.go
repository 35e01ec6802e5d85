// Package memory provides in-memory store implementations for tests
// and for running without a database file.
package memory
