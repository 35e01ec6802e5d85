// Package services implements the core use cases: token lifecycle
// management, document generation orchestration and the retryable
// trigger job dispatcher. Services depend only on domain types and
// ports; adapters are injected.
package services
