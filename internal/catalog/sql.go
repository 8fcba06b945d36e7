// internal/catalog/sql.go
//
// SQL-backed Repository.
//
// Schema
// ------
//   product       (handle PK, position, image, tags)       tags: comma list
//   product_text  (handle, locale, title, description)     PK (handle, locale)
//   product_price (handle, region, amount, currency)       PK (handle, region)
//
// Notes
// -----
// • List runs three queries and stitches rows in Go; the catalog is small
//   and the page cache sits in front of it.
// • Oxford commas, two spaces after periods.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	productQuery = `SELECT handle, position, image, tags FROM product`
	textQuery    = `SELECT handle, locale, title, description FROM product_text`
	priceQuery   = `SELECT handle, region, amount, currency FROM product_price`
)

type productRow struct {
	Handle   string `db:"handle"`
	Position int    `db:"position"`
	Image    string `db:"image"`
	Tags     string `db:"tags"`
}

type textRow struct {
	Handle      string `db:"handle"`
	Locale      string `db:"locale"`
	Title       string `db:"title"`
	Description string `db:"description"`
}

type priceRow struct {
	Handle   string `db:"handle"`
	Region   string `db:"region"`
	Amount   int64  `db:"amount"`
	Currency string `db:"currency"`
}

// SQLRepository reads products through sqlx.
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQL wraps db.
func NewSQL(db *sqlx.DB) *SQLRepository { return &SQLRepository{db: db} }

// List implements Repository.
func (s *SQLRepository) List(ctx context.Context) ([]*Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, productQuery); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	byHandle := make(map[string]*Product, len(rows))
	out := make([]*Product, 0, len(rows))
	for _, r := range rows {
		p := newProduct(r)
		byHandle[r.Handle] = p
		out = append(out, p)
	}

	var texts []textRow
	if err := s.db.SelectContext(ctx, &texts, textQuery); err != nil {
		return nil, fmt.Errorf("select product text: %w", err)
	}
	for _, t := range texts {
		if p, ok := byHandle[t.Handle]; ok {
			p.addText(t)
		}
	}

	var prices []priceRow
	if err := s.db.SelectContext(ctx, &prices, priceQuery); err != nil {
		return nil, fmt.Errorf("select product prices: %w", err)
	}
	for _, pr := range prices {
		if p, ok := byHandle[pr.Handle]; ok {
			p.Prices[pr.Region] = Money{Amount: pr.Amount, Currency: pr.Currency}
		}
	}

	sortProducts(out)
	return out, nil
}

// Get implements Repository.
func (s *SQLRepository) Get(ctx context.Context, handle string) (*Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row, productQuery+` WHERE handle = ?`, handle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", handle, err)
	}
	p := newProduct(row)

	var texts []textRow
	if err := s.db.SelectContext(ctx, &texts, textQuery+` WHERE handle = ?`, handle); err != nil {
		return nil, fmt.Errorf("select text %s: %w", handle, err)
	}
	for _, t := range texts {
		p.addText(t)
	}

	var prices []priceRow
	if err := s.db.SelectContext(ctx, &prices, priceQuery+` WHERE handle = ?`, handle); err != nil {
		return nil, fmt.Errorf("select prices %s: %w", handle, err)
	}
	for _, pr := range prices {
		p.Prices[pr.Region] = Money{Amount: pr.Amount, Currency: pr.Currency}
	}
	return p, nil
}

func newProduct(r productRow) *Product {
	p := &Product{
		Handle:      r.Handle,
		Position:    r.Position,
		Image:       r.Image,
		Title:       make(map[string]string),
		Description: make(map[string]string),
		Prices:      make(map[string]Money),
	}
	for _, t := range strings.Split(r.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			p.Tags = append(p.Tags, t)
		}
	}
	return p
}

func (p *Product) addText(t textRow) {
	p.Title[t.Locale] = t.Title
	p.Description[t.Locale] = t.Description
}
