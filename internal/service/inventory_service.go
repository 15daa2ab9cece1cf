package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	applog "go-ombor/internal/log"
	"go-ombor/internal/model"
	"go-ombor/internal/repository"
	"go-ombor/internal/ws"
	"go-ombor/pkg/barcode"
	"go-ombor/pkg/validator"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidDirection  = errors.New("unknown stock direction")
	ErrInsufficientStock = errors.New("not enough stock for this outbound")
	ErrEmptyBarcode      = errors.New("barcode is required")
	ErrNegativePrice     = fmt.Errorf("%w: price cannot be negative", validator.ErrValidation)
	ErrBarcodeExhausted  = errors.New("could not generate an unused barcode")
)

// barcodeAttempts bounds how many random codes GenerateBarcode draws.
const barcodeAttempts = 50

type InventoryService interface {
	MutateStock(ctx context.Context, productID string, amount int, direction model.Direction, actor string) (*StockResult, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	UpdateProduct(ctx context.Context, id string, req *EditProductRequest, actor string) (*model.Product, error)
	InboundScan(ctx context.Context, code string) (*ScanResult, error)
	GenerateBarcode(ctx context.Context) (*ScanResult, error)
	ConfirmInbound(ctx context.Context, req *InboundRequest, actor string) (*InboundResult, error)
	OutboundScan(ctx context.Context, code string) (*model.Product, error)
	ConfirmOutbound(ctx context.Context, req *OutboundRequest, actor string) (*StockResult, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
}

// StockResult is the product after a movement together with the logged transaction.
type StockResult struct {
	Product     model.Product     `json:"product"`
	Transaction model.Transaction `json:"transaction"`
}

// TransactionFilter narrows the movement log. Empty fields match everything.
type TransactionFilter struct {
	ProductID string
	Direction model.Direction
}

// ProductFilter narrows the inventory listing. Category "" or "all" matches everything.
type ProductFilter struct {
	Search   string
	Category string
}

type EditProductRequest struct {
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category"`
	Barcode  string          `json:"barcode" validate:"required"`
	Unit     model.Unit      `json:"unit" validate:"required,unit"`
	Price    decimal.Decimal `json:"price"`
	Quantity *int            `json:"quantity,omitempty" validate:"omitempty,min=0"`
}

type ScanMode string

const (
	ScanKnown ScanMode = "known"
	ScanNew   ScanMode = "new"
)

// ScanResult tells the intake form which mode to open in.
type ScanResult struct {
	Mode    ScanMode       `json:"mode"`
	Barcode string         `json:"barcode"`
	Product *model.Product `json:"product,omitempty"`
}

// InboundRequest is the intake form. Product fields are read only when the barcode is new.
type InboundRequest struct {
	Barcode  string          `json:"barcode" validate:"required"`
	Quantity int             `json:"quantity"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Unit     model.Unit      `json:"unit"`
	Price    decimal.Decimal `json:"price"`
}

type newProductFields struct {
	Name     string     `validate:"required"`
	Category string     `validate:"required"`
	Unit     model.Unit `validate:"required,unit"`
}

type InboundResult struct {
	Created bool `json:"created"`
	StockResult
}

type OutboundRequest struct {
	Barcode string `json:"barcode" validate:"required"`
	Amount  int    `json:"amount"`
}

type inventoryService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	notifier        ws.Notifier

	// mu serializes read-modify-write cycles on the product and transaction collections.
	mu sync.Mutex
}

// NewInventoryService wires the stock operations. notifier may be nil.
func NewInventoryService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, notifier ws.Notifier) InventoryService {
	return &inventoryService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		notifier:        notifier,
	}
}

func (s *inventoryService) publish(action, actor string, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ws.Event{Type: "stock_update", Action: action, User: actor, Payload: payload})
}

func actorOrDefault(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return model.DefaultActor
	}
	return actor
}

// MutateStock is the only path that changes a product's quantity.
func (s *inventoryService) MutateStock(ctx context.Context, productID string, amount int, direction model.Direction, actor string) (*StockResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(ctx, productID, amount, direction, actor)
}

// mutate expects s.mu held.
func (s *inventoryService) mutate(ctx context.Context, productID string, amount int, direction model.Direction, actor string) (*StockResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !direction.Valid() {
		return nil, ErrInvalidDirection
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if direction == model.Outbound && amount > product.Quantity {
		return nil, ErrInsufficientStock
	}

	now := time.Now()
	if direction == model.Inbound {
		product.Quantity += amount
	} else {
		product.Quantity -= amount
	}
	product.LastUpdated = now
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	actor = actorOrDefault(actor)
	tx := model.Transaction{
		ID:          model.NewID(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Direction:   direction,
		Quantity:    amount,
		Timestamp:   now,
		User:        actor,
	}
	// The product write above is already durable; a failure here leaves the movement unlogged.
	if err := s.transactionRepo.Prepend(ctx, &tx); err != nil {
		applog.Error(nil, "transaction_log_failed", err, map[string]any{"product_id": product.ID, "quantity": amount})
		return nil, fmt.Errorf("log transaction: %w", err)
	}

	applog.Audit(nil, "stock_"+string(direction), map[string]any{
		"product_id": product.ID,
		"quantity":   amount,
		"stock":      product.Quantity,
		"user":       actor,
	})
	result := &StockResult{Product: *product, Transaction: tx}
	s.publish(string(direction), actor, result)
	return result, nil
}

func (s *inventoryService) ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(filter.Search))
	category := strings.TrimSpace(filter.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}

	matched := []model.Product{}
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(fold.String(p.Name), search) && !strings.Contains(p.Barcode, filter.Search) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *inventoryService) Categories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}

// UpdateProduct edits descriptive fields. A changed quantity is applied as a logged movement
// of the difference, so manual edits obey the same rules as scans.
func (s *inventoryService) UpdateProduct(ctx context.Context, id string, req *EditProductRequest, actor string) (*model.Product, error) {
	req.Barcode = barcode.Normalize(req.Barcode)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Barcode != product.Barcode {
		s.warnDuplicateBarcode(ctx, req.Barcode, product.ID)
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Category = strings.TrimSpace(req.Category)
	product.Barcode = req.Barcode
	product.Unit = req.Unit
	product.Price = req.Price
	product.LastUpdated = time.Now()
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	applog.Audit(nil, "product_updated", map[string]any{"product_id": product.ID, "user": actorOrDefault(actor)})

	if req.Quantity != nil && *req.Quantity != product.Quantity {
		delta := *req.Quantity - product.Quantity
		direction := model.Inbound
		if delta < 0 {
			direction, delta = model.Outbound, -delta
		}
		result, err := s.mutate(ctx, product.ID, delta, direction, actor)
		if err != nil {
			return nil, err
		}
		return &result.Product, nil
	}
	s.publish("product_updated", actorOrDefault(actor), product)
	return product, nil
}

func (s *inventoryService) warnDuplicateBarcode(ctx context.Context, code, exceptID string) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return
	}
	for _, p := range products {
		if p.Barcode == code && p.ID != exceptID {
			applog.Warn(nil, "duplicate_barcode", map[string]any{"barcode": code, "product_id": p.ID})
			return
		}
	}
}

func (s *inventoryService) InboundScan(ctx context.Context, code string) (*ScanResult, error) {
	code = barcode.Normalize(code)
	if code == "" {
		return nil, ErrEmptyBarcode
	}
	product, err := s.productRepo.FindByBarcode(ctx, code)
	if errors.Is(err, repository.ErrProductNotFound) {
		return &ScanResult{Mode: ScanNew, Barcode: code}, nil
	}
	if err != nil {
		return nil, err
	}
	return &ScanResult{Mode: ScanKnown, Barcode: code, Product: product}, nil
}

func (s *inventoryService) GenerateBarcode(ctx context.Context) (*ScanResult, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(products))
	for _, p := range products {
		used[p.Barcode] = true
	}
	code := barcode.GenerateUnique(func(c string) bool { return used[c] }, barcodeAttempts)
	if code == "" {
		return nil, ErrBarcodeExhausted
	}
	return &ScanResult{Mode: ScanNew, Barcode: code}, nil
}

// ConfirmInbound receives goods. An unknown barcode creates the product at zero stock
// and then applies the quantity as an inbound movement.
func (s *inventoryService) ConfirmInbound(ctx context.Context, req *InboundRequest, actor string) (*InboundResult, error) {
	req.Barcode = barcode.Normalize(req.Barcode)
	if req.Barcode == "" {
		return nil, ErrEmptyBarcode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.productRepo.FindByBarcode(ctx, req.Barcode)
	if err == nil {
		result, err := s.mutate(ctx, existing.ID, req.Quantity, model.Inbound, actor)
		if err != nil {
			return nil, err
		}
		return &InboundResult{StockResult: *result}, nil
	}
	if !errors.Is(err, repository.ErrProductNotFound) {
		return nil, err
	}

	fields := newProductFields{Name: strings.TrimSpace(req.Name), Category: strings.TrimSpace(req.Category), Unit: req.Unit}
	if err := validator.Check(&fields); err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product := &model.Product{
		ID:          model.NewID(),
		Name:        fields.Name,
		Category:    fields.Category,
		Barcode:     req.Barcode,
		Unit:        fields.Unit,
		Price:       req.Price,
		LastUpdated: time.Now(),
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	applog.Audit(nil, "product_created", map[string]any{"product_id": product.ID, "barcode": product.Barcode, "user": actorOrDefault(actor)})

	result, err := s.mutate(ctx, product.ID, req.Quantity, model.Inbound, actor)
	if err != nil {
		return nil, err
	}
	return &InboundResult{Created: true, StockResult: *result}, nil
}

func (s *inventoryService) OutboundScan(ctx context.Context, code string) (*model.Product, error) {
	code = barcode.Normalize(code)
	if code == "" {
		return nil, ErrEmptyBarcode
	}
	return s.productRepo.FindByBarcode(ctx, code)
}

// ConfirmOutbound dispatches goods. Stock sufficiency is decided by MutateStock alone.
func (s *inventoryService) ConfirmOutbound(ctx context.Context, req *OutboundRequest, actor string) (*StockResult, error) {
	product, err := s.OutboundScan(ctx, req.Barcode)
	if err != nil {
		return nil, err
	}
	return s.MutateStock(ctx, product.ID, req.Amount, model.Outbound, actor)
}

func (s *inventoryService) ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error) {
	var (
		all []model.Transaction
		err error
	)
	if filter.ProductID != "" {
		all, err = s.transactionRepo.FindByProduct(ctx, filter.ProductID)
	} else {
		all, err = s.transactionRepo.FindAll(ctx)
	}
	if err != nil || filter.Direction == "" {
		return all, err
	}
	if !filter.Direction.Valid() {
		return nil, ErrInvalidDirection
	}
	matched := []model.Transaction{}
	for _, t := range all {
		if t.Direction == filter.Direction {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (s *inventoryService) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	return s.transactionRepo.FindByID(ctx, id)
}
