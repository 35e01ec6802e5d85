// Package sqlite provides the SQLite-backed persistence for
// credentials, folder bindings and generated document records.
package sqlite
