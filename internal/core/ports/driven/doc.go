// Package driven defines the secondary ports of the document generation
// core: interfaces the core depends on and adapters implement (remote
// document provider, persistence stores, OAuth exchange, local backup).
package driven
