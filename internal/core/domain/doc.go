// Package domain contains the core business entities and rules for
// document generation: offers, customers, template kinds, OAuth
// credentials, generated document records and placeholder replacement.
//
// Domain types have no dependencies on adapters or external services.
package domain
