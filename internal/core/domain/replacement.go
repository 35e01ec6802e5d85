package domain

import (
	"fmt"
	"strings"
)

// RemoveLineSentinel is the replacement value that instructs the template
// post-processing convention to drop the line containing the placeholder.
// Inactive optional blocks resolve to this sentinel; active blocks
// resolve to the empty string so the line is kept as-is.
const RemoveLineSentinel = "%%REMOVE_LINE%%"

// Placeholder tokens substituted in template documents.
const (
	PlaceholderCustomerName   = "{{CUSTOMER_NAME}}"
	PlaceholderCustomerNumber = "{{CUSTOMER_NUMBER}}"
	PlaceholderOfferNumber    = "{{OFFER_NUMBER}}"
	PlaceholderOfferDate      = "{{OFFER_DATE}}"
	PlaceholderTotalNet       = "{{TOTAL_NET}}"
	PlaceholderVAT            = "{{VAT_AMOUNT}}"
	PlaceholderTotalGross     = "{{TOTAL_GROSS}}"
	PlaceholderShippingCost   = "{{SHIPPING_COST}}"
	PlaceholderShippingLine   = "{{SHIPPING_LINE}}"
	PlaceholderLeadTime       = "{{LEAD_TIME}}"
	PlaceholderItemCount      = "{{ITEM_COUNT}}"
)

// offerDateLayout is the display format for offer dates.
const offerDateLayout = "02.01.2006"

// LeadTime is a delivery lead time range in weeks.
type LeadTime struct {
	MinWeeks int `json:"min_weeks"`
	MaxWeeks int `json:"max_weeks"`
}

// IsZero reports whether no range has been set.
func (l LeadTime) IsZero() bool {
	return l.MinWeeks == 0 && l.MaxWeeks == 0
}

// String formats the range for display, e.g. "6-8 Wochen".
func (l LeadTime) String() string {
	if l.MinWeeks == l.MaxWeeks {
		return fmt.Sprintf("%d Wochen", l.MinWeeks)
	}
	return fmt.Sprintf("%d-%d Wochen", l.MinWeeks, l.MaxWeeks)
}

// FormatCents formats an integer-cents amount as a decimal string with a
// comma decimal separator and dot thousands separators: 123456 becomes
// "1.234,56". This is the only cents-to-decimal conversion boundary.
func FormatCents(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	out := fmt.Sprintf("%s,%02d", b.String(), frac)
	if negative {
		return "-" + out
	}
	return out
}

// BuildReplacements builds the placeholder map for one generation call
// from the offer's current state. The result is ephemeral and never
// persisted.
//
// The shipping block is active only when the shipping amount is strictly
// positive; otherwise its line placeholder resolves to the removal
// sentinel and the cost placeholder is left empty.
func BuildReplacements(offer *Offer) map[string]string {
	repl := map[string]string{
		PlaceholderCustomerName:   offer.Customer.Name,
		PlaceholderCustomerNumber: offer.Customer.Number,
		PlaceholderOfferNumber:    offer.Number,
		PlaceholderOfferDate:      offer.Date.Format(offerDateLayout),
		PlaceholderTotalNet:       FormatCents(offer.TotalNetCents),
		PlaceholderVAT:            FormatCents(offer.VATCents),
		PlaceholderTotalGross:     FormatCents(offer.TotalGrossCents),
		PlaceholderLeadTime:       offer.LeadTime.String(),
		PlaceholderItemCount:      fmt.Sprintf("%d", len(offer.Items)),
	}

	if offer.ShippingCents > 0 {
		repl[PlaceholderShippingLine] = ""
		repl[PlaceholderShippingCost] = FormatCents(offer.ShippingCents)
	} else {
		repl[PlaceholderShippingLine] = RemoveLineSentinel
		repl[PlaceholderShippingCost] = ""
	}

	return repl
}
