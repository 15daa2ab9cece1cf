package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"go-ombor/internal/model"
	"go-ombor/internal/repository"
)

// RecentTransactionLimit is how many movements the dashboard lists.
const RecentTransactionLimit = 10

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	StockMovement(ctx context.Context, days int) ([]StockMovementData, error)
}

type CategoryShare struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DuplicateBarcode lists products sharing one code.
type DuplicateBarcode struct {
	Barcode    string   `json:"barcode"`
	ProductIDs []string `json:"product_ids"`
}

type DashboardStats struct {
	TotalProducts      int                 `json:"total_products"`
	LowStockCount      int                 `json:"low_stock_count"`
	LowStock           []model.Product     `json:"low_stock"`
	InboundCount       int                 `json:"inbound_count"`
	OutboundCount      int                 `json:"outbound_count"`
	TotalValuation     decimal.Decimal     `json:"total_valuation"`
	Categories         []CategoryShare     `json:"categories"`
	RecentTransactions []model.Transaction `json:"recent_transactions"`
	DuplicateBarcodes  []DuplicateBarcode  `json:"duplicate_barcodes"`
}

// StockMovementData is one day of the movement chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type dashboardService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	now         func() time.Time
}

func NewDashboardService(pRepo repository.ProductRepository, txRepo repository.TransactionRepository) DashboardService {
	return &dashboardService{productRepo: pRepo, txRepo: txRepo, now: time.Now}
}

func (s *dashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := s.txRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalProducts:     len(products),
		LowStock:          []model.Product{},
		TotalValuation:    decimal.Zero,
		Categories:        []CategoryShare{},
		DuplicateBarcodes: []DuplicateBarcode{},
	}

	perCategory := map[string]int{}
	byBarcode := map[string][]string{}
	for _, p := range products {
		if p.IsLowStock() {
			stats.LowStock = append(stats.LowStock, p)
		}
		stats.TotalValuation = stats.TotalValuation.Add(p.Valuation())
		if p.Category != "" {
			perCategory[p.Category]++
		}
		if p.Barcode != "" {
			byBarcode[p.Barcode] = append(byBarcode[p.Barcode], p.ID)
		}
	}
	stats.LowStockCount = len(stats.LowStock)

	for name, count := range perCategory {
		stats.Categories = append(stats.Categories, CategoryShare{Name: name, Count: count})
	}
	sort.Slice(stats.Categories, func(i, j int) bool {
		if stats.Categories[i].Count != stats.Categories[j].Count {
			return stats.Categories[i].Count > stats.Categories[j].Count
		}
		return stats.Categories[i].Name < stats.Categories[j].Name
	})

	for code, ids := range byBarcode {
		if len(ids) > 1 {
			stats.DuplicateBarcodes = append(stats.DuplicateBarcodes, DuplicateBarcode{Barcode: code, ProductIDs: ids})
		}
	}
	sort.Slice(stats.DuplicateBarcodes, func(i, j int) bool {
		return stats.DuplicateBarcodes[i].Barcode < stats.DuplicateBarcodes[j].Barcode
	})

	for _, t := range transactions {
		switch t.Direction {
		case model.Inbound:
			stats.InboundCount++
		case model.Outbound:
			stats.OutboundCount++
		}
	}
	// transactions are stored newest first
	recent := transactions
	if len(recent) > RecentTransactionLimit {
		recent = recent[:RecentTransactionLimit]
	}
	stats.RecentTransactions = append([]model.Transaction{}, recent...)
	return stats, nil
}

// StockMovement sums moved quantities per day for the last days days, today included.
func (s *dashboardService) StockMovement(ctx context.Context, days int) ([]StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	transactions, err := s.txRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()
	series := make([]StockMovementData, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-days+1).Format(time.DateOnly)
		series[i] = StockMovementData{Date: date}
		index[date] = i
	}
	for _, t := range transactions {
		i, ok := index[t.Timestamp.In(today.Location()).Format(time.DateOnly)]
		if !ok {
			continue
		}
		if t.Direction == model.Inbound {
			series[i].Inbound += t.Quantity
		} else {
			series[i].Outbound += t.Quantity
		}
	}
	return series, nil
}
