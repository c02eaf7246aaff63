package service

import (
	"time"

	"go-credit-inventory/internal/model"
	"go-credit-inventory/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductCounts breaks the catalog down by status
type ProductCounts struct {
	Total    int64 `json:"total_products"`
	InStock  int64 `json:"in_stock"`
	Reserved int64 `json:"reserved"`
	Sold     int64 `json:"sold"`
	Damaged  int64 `json:"damaged"`
}

// FinancialStats covers sold products only
type FinancialStats struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
}

type DashboardStats struct {
	Products     ProductCounts       `json:"products"`
	Financial    FinancialStats      `json:"financial"`
	Credits      model.CreditSummary `json:"credits"`
	ProfitMargin decimal.Decimal     `json:"profit_margin"`
}

// PaymentDay is one point of the payment activity chart
type PaymentDay struct {
	Date   string          `json:"date"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type DashboardService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetPaymentActivity(days int) ([]PaymentDay, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	creditRepo  repository.CreditRepository
	now         func() time.Time
}

func NewDashboardService(pRepo repository.ProductRepository, cRepo repository.CreditRepository) DashboardService {
	return &dashboardService{productRepo: pRepo, creditRepo: cRepo, now: time.Now}
}

func (s *dashboardService) GetDashboardStats() (*DashboardStats, error) {
	counts, err := s.productRepo.CountByStatus()
	if err != nil {
		return nil, storage("dashboard stats", err)
	}

	stats := &DashboardStats{
		Products: ProductCounts{
			InStock:  counts[model.StatusInStock],
			Reserved: counts[model.StatusReserved],
			Sold:     counts[model.StatusSold],
			Damaged:  counts[model.StatusDamaged],
		},
		Financial: FinancialStats{
			TotalRevenue: decimal.Zero,
			TotalCost:    decimal.Zero,
			TotalProfit:  decimal.Zero,
		},
		ProfitMargin: decimal.Zero,
	}
	for _, n := range counts {
		stats.Products.Total += n
	}

	sold := model.StatusSold
	products, err := s.productRepo.FindAll(repository.ProductFilter{Status: &sold})
	if err != nil {
		return nil, storage("dashboard stats", err)
	}
	for i := range products {
		stats.Financial.TotalRevenue = stats.Financial.TotalRevenue.Add(products[i].SalePrice)
		stats.Financial.TotalCost = stats.Financial.TotalCost.Add(products[i].CostPrimary.Add(products[i].Transport))
	}
	stats.Financial.TotalProfit = stats.Financial.TotalRevenue.Sub(stats.Financial.TotalCost)
	if stats.Financial.TotalRevenue.IsPositive() {
		stats.ProfitMargin = stats.Financial.TotalProfit.
			Div(stats.Financial.TotalRevenue).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}

	credits, err := s.creditRepo.FindAll()
	if err != nil {
		return nil, storage("dashboard stats", err)
	}
	stats.Credits = *summarize(credits)

	return stats, nil
}

// GetPaymentActivity totals the payments of the last days, one entry per day
// including days without payments.
func (s *dashboardService) GetPaymentActivity(days int) ([]PaymentDay, error) {
	if days <= 0 {
		return nil, invalid("days", "must be greater than zero")
	}

	today := s.now()
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()).
		AddDate(0, 0, -(days - 1))

	payments, err := s.creditRepo.FindPaymentsSince(start)
	if err != nil {
		return nil, storage("payment activity", err)
	}

	result := make([]PaymentDay, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := dateOf(start.AddDate(0, 0, i))
		result[i] = PaymentDay{Date: date, Amount: decimal.Zero}
		index[date] = i
	}
	for _, p := range payments {
		i, ok := index[dateOf(p.PaidAt.In(today.Location()))]
		if !ok {
			continue
		}
		result[i].Count++
		result[i].Amount = result[i].Amount.Add(p.Amount)
	}
	return result, nil
}
