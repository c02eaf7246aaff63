package service

import (
	"io"
	"time"

	"go-credit-inventory/internal/model"
	"go-credit-inventory/internal/repository"

	"github.com/gocarina/gocsv"
)

const ExportVersion = "1.0.0"

// ExportBundle is a full snapshot of one profile's data
type ExportBundle struct {
	Profile    *model.Profile      `json:"profile"`
	Products   []model.Product     `json:"products"`
	Credits    []model.CreditEntry `json:"credits"`
	Analytics  *DashboardStats     `json:"analytics"`
	ExportDate time.Time           `json:"export_date"`
	Version    string              `json:"version"`
}

type productRow struct {
	ID            uint   `csv:"id"`
	Name          string `csv:"name"`
	Category      string `csv:"category"`
	CostPrimary   string `csv:"cost_primary"`
	CostSecondary string `csv:"cost_secondary"`
	Transport     string `csv:"transport"`
	SalePrice     string `csv:"sale_price"`
	PackageSize   string `csv:"package_size"`
	ArrivalDate   string `csv:"arrival_date"`
	SaleDate      string `csv:"sale_date"`
	Status        string `csv:"status"`
	Notes         string `csv:"notes"`
}

type creditRow struct {
	ID              uint   `csv:"id"`
	ProductID       uint   `csv:"product_id"`
	ProductName     string `csv:"product_name"`
	CustomerName    string `csv:"customer_name"`
	TotalAmount     string `csv:"total_amount"`
	AmountPaid      string `csv:"amount_paid"`
	AmountRemaining string `csv:"amount_remaining"`
	TransactionDate string `csv:"transaction_date"`
}

type ExportService interface {
	Bundle(profile *model.Profile) (*ExportBundle, error)
	ProductsCSV(w io.Writer) error
	CreditsCSV(w io.Writer) error
}

type exportService struct {
	productRepo repository.ProductRepository
	ledger      LedgerService
	dashboard   DashboardService
	now         func() time.Time
}

func NewExportService(pRepo repository.ProductRepository, ledger LedgerService, dashboard DashboardService) ExportService {
	return &exportService{productRepo: pRepo, ledger: ledger, dashboard: dashboard, now: time.Now}
}

func (s *exportService) Bundle(profile *model.Profile) (*ExportBundle, error) {
	products, err := s.productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		return nil, storage("export", err)
	}
	credits, err := s.ledger.ListTransactions()
	if err != nil {
		return nil, err
	}
	analytics, err := s.dashboard.GetDashboardStats()
	if err != nil {
		return nil, err
	}

	return &ExportBundle{
		Profile:    profile,
		Products:   products,
		Credits:    credits,
		Analytics:  analytics,
		ExportDate: s.now(),
		Version:    ExportVersion,
	}, nil
}

func (s *exportService) ProductsCSV(w io.Writer) error {
	products, err := s.productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		return storage("export products", err)
	}

	rows := make([]*productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &productRow{
			ID:            p.ID,
			Name:          p.Name,
			Category:      p.Category,
			CostPrimary:   p.CostPrimary.StringFixed(2),
			CostSecondary: p.CostSecondary.StringFixed(2),
			Transport:     p.Transport.StringFixed(2),
			SalePrice:     p.SalePrice.StringFixed(2),
			PackageSize:   p.PackageSize,
			ArrivalDate:   p.ArrivalDate,
			SaleDate:      p.SaleDate,
			Status:        string(p.Status),
			Notes:         p.Notes,
		})
	}
	return gocsv.Marshal(rows, w)
}

func (s *exportService) CreditsCSV(w io.Writer) error {
	entries, err := s.ledger.ListTransactions()
	if err != nil {
		return err
	}

	rows := make([]*creditRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, &creditRow{
			ID:              e.ID,
			ProductID:       e.ProductID,
			ProductName:     e.ProductName,
			CustomerName:    e.CustomerName,
			TotalAmount:     e.TotalAmount.StringFixed(2),
			AmountPaid:      e.AmountPaid.StringFixed(2),
			AmountRemaining: e.AmountRemaining.StringFixed(2),
			TransactionDate: e.TransactionDate.Format(model.DateTimeLayout),
		})
	}
	return gocsv.Marshal(rows, w)
}
