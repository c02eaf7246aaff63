package model

import (
	"github.com/shopspring/decimal"
)

// ProductStatus is stored with the same labels the operators see in the UI
type ProductStatus string

const (
	StatusInStock  ProductStatus = "In Stock"
	StatusReserved ProductStatus = "Reserved"
	StatusSold     ProductStatus = "Sold"
	StatusDamaged  ProductStatus = "Damaged"
)

// AllStatuses lists every status in display order
var AllStatuses = []ProductStatus{StatusInStock, StatusReserved, StatusSold, StatusDamaged}

func (s ProductStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminalForLedger reports whether credit reconciliation must leave the status alone.
// Operators can still change it through a catalog edit.
func (s ProductStatus) IsTerminalForLedger() bool {
	return s == StatusSold || s == StatusDamaged
}

// Product has no TableName override: the naming strategy owns table names so a
// per-profile schema prefix applies to it.
type Product struct {
	BaseModel
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	CostPrimary     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"cost_primary"`
	CostSecondary   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"cost_secondary"` // CostPrimary * rate at entry time
	Transport       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"transport"`
	SalePrice       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"sale_price"`
	PictureRef      string          `gorm:"type:text" json:"picture_ref,omitempty"`
	PackageSize     string          `gorm:"type:varchar(100)" json:"package_size,omitempty"`
	PackageImageRef string          `gorm:"type:text" json:"package_image_ref,omitempty"`
	ArrivalDate     string          `gorm:"type:varchar(10)" json:"arrival_date"`
	SaleDate        string          `gorm:"type:varchar(10)" json:"sale_date,omitempty"` // set on full payment
	Status          ProductStatus   `gorm:"type:varchar(20);not null;default:'In Stock';index" json:"status"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
}

// ProfitAnalysis summarises the margin of a single product
type ProfitAnalysis struct {
	TotalCost     decimal.Decimal `json:"total_cost"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"` // percent, 1 decimal place
	HasSalePrice  bool            `json:"has_sale_price"`
	HasCostAmount bool            `json:"has_cost_amount"`
}

// ProfitAnalysis computes cost (purchase + transport), profit and margin over the sale price.
func (p *Product) ProfitAnalysis() ProfitAnalysis {
	totalCost := p.CostPrimary.Add(p.Transport)
	profit := p.SalePrice.Sub(totalCost)

	margin := decimal.Zero
	if p.SalePrice.IsPositive() {
		margin = profit.Div(p.SalePrice).Mul(decimal.NewFromInt(100)).Round(1)
	}

	return ProfitAnalysis{
		TotalCost:     totalCost,
		SalePrice:     p.SalePrice,
		Profit:        profit,
		ProfitMargin:  margin,
		HasSalePrice:  !p.SalePrice.IsZero(),
		HasCostAmount: !p.CostPrimary.IsZero(),
	}
}
