// Package catalog holds the storefront's product data.
//
// Products carry per-locale text and per-region prices.  Text coalesces to
// the default locale when a translation is missing, the same way the CMS
// projections coalesce; a region without a price means the product is not
// sold there.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// DefaultLocale is the coalescing target for missing translations.
const DefaultLocale = "ro"

// ErrNotFound is returned by Get when no product has the handle.
var ErrNotFound = errors.New("catalog: product not found")

// Money is an amount in minor units (bani, cents).
type Money struct {
	Amount   int64  `koanf:"amount"   json:"amount"`
	Currency string `koanf:"currency" json:"currency"`
}

// String renders "1450.00 RON".
func (m Money) String() string { return m.Decimal() + " " + m.Currency }

// Decimal renders the amount alone, "1450.00".
func (m Money) Decimal() string {
	sign := ""
	a := m.Amount
	if a < 0 {
		sign, a = "-", -a
	}
	return fmt.Sprintf("%s%d.%02d", sign, a/100, a%100)
}

// Times multiplies by a quantity.
func (m Money) Times(q int) Money {
	return Money{Amount: m.Amount * int64(q), Currency: m.Currency}
}

// Product is one sellable item.
type Product struct {
	Handle      string            `koanf:"handle"`
	Position    int               `koanf:"position"`
	Image       string            `koanf:"image"`
	Title       map[string]string `koanf:"title"`
	Description map[string]string `koanf:"description"`
	Prices      map[string]Money  `koanf:"prices"` // region → price
	Tags        []string          `koanf:"tags"`
}

// LocalizedTitle returns the title in locale, coalescing to DefaultLocale.
func (p *Product) LocalizedTitle(locale string) string { return coalesce(p.Title, locale) }

// LocalizedDescription is LocalizedTitle for the description.
func (p *Product) LocalizedDescription(locale string) string {
	return coalesce(p.Description, locale)
}

// Price returns the price in region.
func (p *Product) Price(region string) (Money, bool) {
	m, ok := p.Prices[region]
	return m, ok
}

// CacheTags lists the tags a page showing p should carry.
func (p *Product) CacheTags() []string {
	return append([]string{"product:" + p.Handle}, p.Tags...)
}

func coalesce(m map[string]string, locale string) string {
	if s := m[locale]; s != "" {
		return s
	}
	return m[DefaultLocale]
}

// Repository is the read side used by the storefront.
type Repository interface {
	List(ctx context.Context) ([]*Product, error)
	Get(ctx context.Context, handle string) (*Product, error)
}

// sortProducts orders by Position, then Handle.
func sortProducts(ps []*Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Position != ps[j].Position {
			return ps[i].Position < ps[j].Position
		}
		return ps[i].Handle < ps[j].Handle
	})
}
