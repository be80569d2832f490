// Package snapshot implements full-state export, import and reset. A
// snapshot document carries every collection; passwords never leave the
// terminal inside an export.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	"github.com/ballbuild/pos/internal/sales"
	"github.com/ballbuild/pos/internal/shared"
	"github.com/ballbuild/pos/internal/users"
)

// Document is the export wire format. Users are included without their
// passwords; an import re-matches passwords by username.
type Document struct {
	ExportDate time.Time            `json:"exportDate"`
	Products   []catalog.Product    `json:"products"`
	Customers  []customers.Customer `json:"customers"`
	Sales      []sales.Sale         `json:"sales"`
	Users      []users.User         `json:"users"`
}

// Summary reports what an import brought in.
type Summary struct {
	Products  int `json:"products"`
	Customers int `json:"customers"`
	Sales     int `json:"sales"`
	Users     int `json:"users"`
}

// CartResetter drops the in-progress cart when the dataset changes out
// from under it.
type CartResetter interface {
	ClearCart() sales.CartView
}

// Service wires the snapshot operations to the repositories.
type Service struct {
	logger       *slog.Logger
	catalogRepo  *catalog.Repository
	customerRepo *customers.Repository
	saleRepo     *sales.Repository
	userRepo     *users.Repository
	cart         CartResetter
}

func NewService(
	logger *slog.Logger,
	catalogRepo *catalog.Repository,
	customerRepo *customers.Repository,
	saleRepo *sales.Repository,
	userRepo *users.Repository,
	cart CartResetter,
) *Service {
	return &Service{
		logger:       logger,
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		userRepo:     userRepo,
		cart:         cart,
	}
}

// Export assembles the full-state document with passwords stripped.
func (s *Service) Export() Document {
	exported := s.userRepo.List()
	for i := range exported {
		exported[i].Password = ""
	}
	return Document{
		ExportDate: time.Now(),
		Products:   s.catalogRepo.List(),
		Customers:  s.customerRepo.List(),
		Sales:      s.saleRepo.List(),
		Users:      exported,
	}
}

// Import parses and applies a snapshot document. The document must carry
// the products, customers and sales collections; a malformed document is
// rejected before any collection is touched, so a failed import never
// applies partially. Users are optional: when absent the current user
// collection is retained, when present passwordless entries inherit the
// password of the existing user with the same username.
func (s *Service) Import(data []byte) (Summary, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Summary{}, fmt.Errorf("%w: %v", shared.ErrImportFormat, err)
	}
	if doc.Products == nil || doc.Customers == nil || doc.Sales == nil {
		return Summary{}, fmt.Errorf("%w: missing products, customers or sales", shared.ErrImportFormat)
	}

	s.catalogRepo.Replace(doc.Products)
	s.customerRepo.Replace(doc.Customers)
	s.saleRepo.Replace(doc.Sales)
	if doc.Users != nil {
		s.userRepo.Replace(doc.Users)
	}
	if s.cart != nil {
		s.cart.ClearCart()
	}

	summary := Summary{
		Products:  len(doc.Products),
		Customers: len(doc.Customers),
		Sales:     len(doc.Sales),
		Users:     len(doc.Users),
	}
	s.logger.Info("snapshot imported",
		slog.Int("products", summary.Products),
		slog.Int("customers", summary.Customers),
		slog.Int("sales", summary.Sales),
		slog.Int("users", summary.Users))
	return summary, nil
}

// ClearAll wipes products, customers, sales and the cart. Users survive
// so the terminal stays loginable.
func (s *Service) ClearAll() {
	s.catalogRepo.Replace([]catalog.Product{})
	s.customerRepo.Replace([]customers.Customer{})
	s.saleRepo.Replace([]sales.Sale{})
	if s.cart != nil {
		s.cart.ClearCart()
	}
	s.logger.Info("all business data cleared")
}
