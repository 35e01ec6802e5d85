// Package driving defines the primary ports of the document generation
// core: interfaces through which the CLI, the spool watcher and other
// entry points drive the core services.
package driving
