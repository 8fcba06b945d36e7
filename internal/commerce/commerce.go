// Package commerce is the storefront's boundary to the order backend.
//
// The production backend is an external commerce platform reached over its
// own API; Memory implements the same contract in-process for development,
// single-node demos, and tests.
package commerce

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yanizio/storefront/internal/catalog"
)

// ErrOrderNotFound is returned by Order for unknown ids.
var ErrOrderNotFound = errors.New("commerce: order not found")

// ErrNotSold is returned when the product has no price in the region.
var ErrNotSold = errors.New("commerce: product not sold in region")

// Address is the shipping address collected at checkout.
type Address struct {
	FirstName string `form:"first_name" validate:"required,max=80"`
	LastName  string `form:"last_name"  validate:"required,max=80"`
	Address1  string `form:"address_1"  validate:"required,max=200"`
	City      string `form:"city"       validate:"required,max=80"`
}

// OrderRequest is what the checkout form submits.
type OrderRequest struct {
	Email    string  `form:"email"    validate:"required,email"`
	Handle   string  `form:"handle"   validate:"required"`
	Quantity int     `form:"quantity" validate:"required,min=1,max=100"`
	Region   string  `validate:"required,len=2"`
	Locale   string  `validate:"required"`
	Shipping Address
}

// Order is a placed order.
type Order struct {
	ID        string
	Email     string
	Handle    string
	Title     string
	Quantity  int
	Region    string
	Locale    string
	Total     catalog.Money
	Shipping  Address
	CreatedAt time.Time
}

// Backend places and reads orders.
type Backend interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error)
	Order(ctx context.Context, id string) (*Order, error)
}

// Validate checks req and returns validator.ValidationErrors on failure.
func Validate(v *validator.Validate, req *OrderRequest) error {
	return v.Struct(req)
}

/*──────────────────────────── in-memory backend ────────────────────────────*/

// Memory prices orders from a catalog and keeps them in a map.
type Memory struct {
	products catalog.Repository
	validate *validator.Validate

	mu     sync.RWMutex
	orders map[string]*Order
	now    func() time.Time
}

// NewMemory returns an empty backend pricing from products.
func NewMemory(products catalog.Repository) *Memory {
	return &Memory{
		products: products,
		validate: validator.New(),
		orders:   make(map[string]*Order),
		now:      time.Now,
	}
}

// PlaceOrder implements Backend.
func (m *Memory) PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := Validate(m.validate, &req); err != nil {
		return nil, err
	}
	p, err := m.products.Get(ctx, req.Handle)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	price, ok := p.Price(req.Region)
	if !ok {
		return nil, fmt.Errorf("place order %s/%s: %w", req.Handle, req.Region, ErrNotSold)
	}

	o := &Order{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Handle:    p.Handle,
		Title:     p.LocalizedTitle(req.Locale),
		Quantity:  req.Quantity,
		Region:    req.Region,
		Locale:    req.Locale,
		Total:     price.Times(req.Quantity),
		Shipping:  req.Shipping,
		CreatedAt: m.now().UTC(),
	}
	m.mu.Lock()
	m.orders[o.ID] = o
	m.mu.Unlock()
	return o, nil
}

// Order implements Backend.
func (m *Memory) Order(_ context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}
