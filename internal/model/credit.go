package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditTransaction is an installment sale against one product.
// ProductID is a plain reference: the product may be deleted later and the
// transaction stays readable.
type CreditTransaction struct {
	BaseModel
	ProductID       uint            `gorm:"not null;index" json:"product_id"`
	CustomerName    string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount_paid"`
	AmountRemaining decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount_remaining"` // signed, negative when overpaid
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`

	Payments []CreditPayment `gorm:"foreignKey:CreditTransactionID" json:"payments,omitempty"`
}

// Hook Before Create untuk default timestamp transaksi
func (t *CreditTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.TransactionDate.IsZero() {
		t.TransactionDate = time.Now()
	}
	return
}

// Total is the full sale amount: what has been paid plus what is still owed.
func (t *CreditTransaction) Total() decimal.Decimal {
	return t.AmountPaid.Add(t.AmountRemaining)
}

func (t *CreditTransaction) IsSettled() bool {
	return !t.AmountRemaining.IsPositive()
}

// CreditPayment is one entry of a transaction's payment history
type CreditPayment struct {
	ID                  uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	CreditTransactionID uint            `gorm:"not null;index" json:"credit_transaction_id"`
	Amount              decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaidAt              time.Time       `gorm:"not null" json:"paid_at"`
}

// CreditEntry is a transaction paired with the resolved name of its product
type CreditEntry struct {
	CreditTransaction
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ProductName    string          `json:"product_name"`
	ProductMissing bool            `json:"product_missing"`
}

// DeletedProductName stands in for products removed from the catalog
const DeletedProductName = "(deleted product)"

// CreditSummary aggregates every transaction of a ledger
type CreditSummary struct {
	TotalCredits     decimal.Decimal `json:"total_credits"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	Count            int             `json:"count"`
}
