package domain

import "time"

// SubjectKind is the closed set of business record kinds that documents
// can be generated for. Using a closed enumeration instead of free-form
// type tags keeps (kind, id) references exhaustiveness-checkable.
type SubjectKind string

const (
	// SubjectOffer is a priced offer.
	SubjectOffer SubjectKind = "offer"
)

// Valid returns true for known subject kinds.
func (k SubjectKind) Valid() bool {
	return k == SubjectOffer
}

// SubjectRef identifies a subject by kind and id. It is the key half of
// every generated document record and the payload of a trigger job.
type SubjectRef struct {
	Kind SubjectKind `json:"kind"`
	ID   string      `json:"id"`
}

// Customer is the owning entity under which remote artifacts are
// organised. Each customer gets exactly one remote folder.
type Customer struct {
	// ID is the unique identifier.
	ID string `json:"id"`
	// Number is the human-readable customer number, e.g. "K-1001".
	Number string `json:"number"`
	// Name is the display name used in generated documents.
	Name string `json:"name"`
}

// LineItem is one priced position of an offer.
type LineItem struct {
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

// Offer is the subject of document generation: a priced offer belonging
// to a customer. All monetary amounts are integer cents; conversion to a
// decimal display form happens only at formatting boundaries.
type Offer struct {
	// ID is the unique identifier.
	ID string `json:"id"`
	// Number is the human-readable offer number, e.g. "A-2042".
	Number string `json:"number"`
	// Date is the offer date shown on generated documents.
	Date time.Time `json:"date"`

	// Customer is the owning entity. Required for generation.
	Customer *Customer `json:"customer"`

	// Items are the priced positions.
	Items []LineItem `json:"items,omitempty"`

	// TotalNetCents is the net total.
	TotalNetCents int64 `json:"total_net_cents"`
	// VATCents is the value added tax amount.
	VATCents int64 `json:"vat_cents"`
	// TotalGrossCents is the gross total.
	TotalGrossCents int64 `json:"total_gross_cents"`
	// ShippingCents is the optional shipping cost. A zero amount removes
	// the shipping line from generated documents.
	ShippingCents int64 `json:"shipping_cents"`

	// LeadTime is the delivery lead time range.
	LeadTime LeadTime `json:"lead_time"`
}

// Ref returns the subject reference for this offer.
func (o *Offer) Ref() SubjectRef {
	return SubjectRef{Kind: SubjectOffer, ID: o.ID}
}

// Validate checks the relations required for document generation.
func (o *Offer) Validate() error {
	if o.ID == "" || o.Number == "" {
		return ErrInvalidInput
	}
	if o.Customer == nil || o.Customer.ID == "" {
		return ErrSubjectData
	}
	return nil
}
