package domain

import "fmt"

// TemplateKind is a closed category of document to generate. Each kind
// maps to a provider-side template document id via configuration;
// unconfigured kinds are skipped, never fatal.
type TemplateKind string

const (
	// TemplateInstallation is the installation sheet.
	TemplateInstallation TemplateKind = "installation"
	// TemplateItems is the item list.
	TemplateItems TemplateKind = "items"
)

// AllTemplateKinds lists every known kind.
var AllTemplateKinds = []TemplateKind{TemplateInstallation, TemplateItems}

// DefaultTemplateKinds is the kind list generated on a subject-saved
// trigger when no explicit list is requested.
func DefaultTemplateKinds() []TemplateKind {
	return []TemplateKind{TemplateInstallation, TemplateItems}
}

// Valid returns true for known template kinds.
func (k TemplateKind) Valid() bool {
	switch k {
	case TemplateInstallation, TemplateItems:
		return true
	}
	return false
}

// ParseTemplateKind parses a kind from its string form.
func ParseTemplateKind(s string) (TemplateKind, error) {
	k := TemplateKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown template kind %q", ErrInvalidInput, s)
	}
	return k, nil
}
