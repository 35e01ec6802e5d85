package file

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

// offerDateLayout is the date format accepted in offer files.
const offerDateLayout = "2006-01-02"

// rawOffer is the TOML schema of an offer file dropped into the spool
// directory. Monetary amounts are integer cents.
type rawOffer struct {
	ID     string `toml:"id"`
	Number string `toml:"number"`
	Date   string `toml:"date"`

	Customer struct {
		ID     string `toml:"id"`
		Number string `toml:"number"`
		Name   string `toml:"name"`
	} `toml:"customer"`

	Items []struct {
		Description    string `toml:"description"`
		Quantity       int    `toml:"quantity"`
		UnitPriceCents int64  `toml:"unit_price_cents"`
		TotalCents     int64  `toml:"total_cents"`
	} `toml:"items,omitempty"`

	TotalNetCents   int64 `toml:"total_net_cents"`
	VATCents        int64 `toml:"vat_cents"`
	TotalGrossCents int64 `toml:"total_gross_cents"`
	ShippingCents   int64 `toml:"shipping_cents"`

	LeadTime struct {
		MinWeeks int `toml:"min_weeks"`
		MaxWeeks int `toml:"max_weeks"`
	} `toml:"lead_time"`
}

// LoadOffer reads and validates an offer file.
func LoadOffer(path string) (*domain.Offer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading offer file: %w", err)
	}

	var raw rawOffer
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing offer file: %w", err)
	}

	offer := &domain.Offer{
		ID:     raw.ID,
		Number: raw.Number,
		Customer: &domain.Customer{
			ID:     raw.Customer.ID,
			Number: raw.Customer.Number,
			Name:   raw.Customer.Name,
		},
		TotalNetCents:   raw.TotalNetCents,
		VATCents:        raw.VATCents,
		TotalGrossCents: raw.TotalGrossCents,
		ShippingCents:   raw.ShippingCents,
		LeadTime: domain.LeadTime{
			MinWeeks: raw.LeadTime.MinWeeks,
			MaxWeeks: raw.LeadTime.MaxWeeks,
		},
	}

	if raw.Date != "" {
		date, err := time.Parse(offerDateLayout, raw.Date)
		if err != nil {
			return nil, fmt.Errorf("parsing offer date %q: %w", raw.Date, err)
		}
		offer.Date = date
	}

	for _, item := range raw.Items {
		offer.Items = append(offer.Items, domain.LineItem{
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}

	if raw.Customer.ID == "" {
		offer.Customer = nil
	}

	if err := offer.Validate(); err != nil {
		return nil, fmt.Errorf("offer file %s: %w", path, err)
	}

	return offer, nil
}
