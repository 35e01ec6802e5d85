// Package file provides the TOML-backed settings store and the offer
// file loader used by the worker's spool directory.
package file
