package service

import (
	"fmt"
	"strings"
	"time"

	"go-credit-inventory/internal/model"
	"go-credit-inventory/internal/repository"
	"go-credit-inventory/pkg/validator"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreditSaleRequest struct {
	ProductID    uint        `json:"product_id" validate:"required"`
	CustomerName string      `json:"customer_name" validate:"required"`
	TotalAmount  NumberField `json:"total_amount" validate:"required"`
	AmountPaid   NumberField `json:"amount_paid"`
}

type PaymentRequest struct {
	Amount NumberField `json:"amount" validate:"required"`
}

// Reconciliation describes what a ledger write did to the referenced product
type Reconciliation struct {
	ProductID uint                `json:"product_id"`
	Found     bool                `json:"found"`
	Changed   bool                `json:"changed"`
	Status    model.ProductStatus `json:"status,omitempty"`
	SaleDate  string              `json:"sale_date,omitempty"`
}

// CreditResult is the outcome of a ledger write
type CreditResult struct {
	Transaction *model.CreditTransaction `json:"transaction"`
	Product     Reconciliation           `json:"product"`
}

type LedgerService interface {
	CreateCreditSale(req *CreditSaleRequest) (*CreditResult, error)
	AddPayment(transactionID uint, req *PaymentRequest) (*CreditResult, error)
	ListTransactions() ([]model.CreditEntry, error)
	SearchTransactions(term string) ([]model.CreditEntry, error)
	GetTransaction(id uint) (*model.CreditEntry, error)
	Payments(transactionID uint) ([]model.CreditPayment, error)
	Summary() (*model.CreditSummary, error)
}

type ledgerService struct {
	creditRepo  repository.CreditRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
	events      Publisher
	profile     string
	now         func() time.Time
}

func NewLedgerService(cRepo repository.CreditRepository, pRepo repository.ProductRepository, db *gorm.DB, events Publisher, profile string) LedgerService {
	if events == nil {
		events = NopPublisher
	}
	return &ledgerService{
		creditRepo:  cRepo,
		productRepo: pRepo,
		db:          db,
		events:      events,
		profile:     profile,
		now:         time.Now,
	}
}

// CreateCreditSale records the sale and reconciles the product in one db transaction.
// remaining = total - paid is stored as is, negative when the customer overpaid.
func (s *ledgerService) CreateCreditSale(req *CreditSaleRequest) (*CreditResult, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.TotalAmount = NumberField(strings.TrimSpace(string(req.TotalAmount)))
	if err := fromValidator(validator.ValidateStruct(req)); err != nil {
		return nil, err
	}

	total, err := parseAmount("total_amount", req.TotalAmount)
	if err != nil {
		return nil, err
	}
	paid, err := parseAmount("amount_paid", req.AmountPaid)
	if err != nil {
		return nil, err
	}
	if total.IsNegative() {
		return nil, invalid("total_amount", "must not be negative")
	}
	if paid.IsNegative() {
		return nil, invalid("amount_paid", "must not be negative")
	}

	now := s.now()
	result := &CreditResult{}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.LockByID(tx, req.ProductID)
		if err != nil {
			return storageOrNotFound("create credit sale", "product", req.ProductID, err)
		}
		if product.Status != model.StatusInStock {
			return ErrProductNotInStock
		}

		credit := &model.CreditTransaction{
			ProductID:       product.ID,
			CustomerName:    req.CustomerName,
			AmountPaid:      paid,
			AmountRemaining: total.Sub(paid),
			TransactionDate: now,
		}
		if err := s.creditRepo.Create(tx, credit); err != nil {
			return err
		}
		if paid.IsPositive() {
			payment := &model.CreditPayment{CreditTransactionID: credit.ID, Amount: paid, PaidAt: now}
			if err := s.creditRepo.AddPayment(tx, payment); err != nil {
				return err
			}
		}

		rec, err := s.reconcile(tx, product, credit.AmountRemaining, now)
		if err != nil {
			return err
		}
		result.Transaction = credit
		result.Product = rec
		return nil
	})
	if err != nil {
		return nil, passThrough("create credit sale", err)
	}

	log.WithFields(log.Fields{
		"profile":        s.profile,
		"transaction_id": result.Transaction.ID,
		"product_id":     req.ProductID,
		"remaining":      result.Transaction.AmountRemaining.String(),
	}).Info("credit sale recorded")
	s.events.Publish(newEvent(s.profile, "ledger", ActionCreditCreated,
		fmt.Sprintf("Credit sale to %s recorded", req.CustomerName), result))
	s.publishStatusChange(result.Product)
	return result, nil
}

// AddPayment decreases the remaining balance and re-runs reconciliation.
// A payment larger than the remaining balance is rejected.
func (s *ledgerService) AddPayment(transactionID uint, req *PaymentRequest) (*CreditResult, error) {
	req.Amount = NumberField(strings.TrimSpace(string(req.Amount)))
	if err := fromValidator(validator.ValidateStruct(req)); err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, ErrPaymentNotPositive
	}

	now := s.now()
	result := &CreditResult{}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		credit, err := s.creditRepo.LockByID(tx, transactionID)
		if err != nil {
			return storageOrNotFound("add payment", "credit transaction", transactionID, err)
		}
		if amount.GreaterThan(credit.AmountRemaining) {
			return ErrOverpayment
		}

		credit.AmountPaid = credit.AmountPaid.Add(amount)
		credit.AmountRemaining = credit.AmountRemaining.Sub(amount)
		if err := s.creditRepo.UpdateBalance(tx, credit.ID, credit.AmountPaid, credit.AmountRemaining); err != nil {
			return err
		}
		payment := &model.CreditPayment{CreditTransactionID: credit.ID, Amount: amount, PaidAt: now}
		if err := s.creditRepo.AddPayment(tx, payment); err != nil {
			return err
		}

		// the product may have been deleted since the sale; the payment still counts
		product, err := s.productRepo.LockByID(tx, credit.ProductID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		rec, err := s.reconcile(tx, product, credit.AmountRemaining, now)
		if err != nil {
			return err
		}
		rec.ProductID = credit.ProductID
		result.Transaction = credit
		result.Product = rec
		return nil
	})
	if err != nil {
		return nil, passThrough("add payment", err)
	}

	log.WithFields(log.Fields{
		"profile":        s.profile,
		"transaction_id": transactionID,
		"amount":         amount.String(),
		"remaining":      result.Transaction.AmountRemaining.String(),
	}).Info("payment recorded")
	s.events.Publish(newEvent(s.profile, "ledger", ActionPaymentAdded,
		fmt.Sprintf("Payment of %s recorded for %s", amount.StringFixed(2), result.Transaction.CustomerName), result))
	s.publishStatusChange(result.Product)
	return result, nil
}

// reconcile derives the product status from the remaining balance: Sold with
// today's sale date once nothing is owed, Reserved otherwise. Sold and Damaged
// products are never touched, and a missing product is skipped.
func (s *ledgerService) reconcile(tx *gorm.DB, product *model.Product, remaining decimal.Decimal, now time.Time) (Reconciliation, error) {
	if product == nil {
		return Reconciliation{}, nil
	}
	rec := Reconciliation{ProductID: product.ID, Found: true, Status: product.Status, SaleDate: product.SaleDate}
	if product.Status.IsTerminalForLedger() {
		return rec, nil
	}

	var saleDate *string
	status := model.StatusReserved
	if !remaining.IsPositive() {
		status = model.StatusSold
		today := dateOf(now)
		saleDate = &today
	}
	if status == product.Status {
		return rec, nil
	}

	if err := s.productRepo.UpdateStatus(tx, product.ID, status, saleDate); err != nil {
		return rec, err
	}
	product.Status = status
	if saleDate != nil {
		product.SaleDate = *saleDate
	}
	rec.Changed = true
	rec.Status = product.Status
	rec.SaleDate = product.SaleDate
	return rec, nil
}

func (s *ledgerService) publishStatusChange(rec Reconciliation) {
	if !rec.Changed {
		return
	}
	s.events.Publish(newEvent(s.profile, "catalog", ActionStatusChanged,
		fmt.Sprintf("Product #%d is now %s", rec.ProductID, rec.Status), rec))
}

func (s *ledgerService) ListTransactions() ([]model.CreditEntry, error) {
	credits, err := s.creditRepo.FindAll()
	if err != nil {
		return nil, storage("list transactions", err)
	}

	ids := make([]uint, 0, len(credits))
	for _, c := range credits {
		ids = append(ids, c.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, storage("list transactions", err)
	}

	entries := make([]model.CreditEntry, 0, len(credits))
	for _, c := range credits {
		entries = append(entries, resolveEntry(c, products))
	}
	return entries, nil
}

// SearchTransactions keeps the entries whose customer or product name contains
// term, ignoring case. A blank term lists everything.
func (s *ledgerService) SearchTransactions(term string) ([]model.CreditEntry, error) {
	entries, err := s.ListTransactions()
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries, nil
	}

	matched := make([]model.CreditEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.CustomerName), term) ||
			(!e.ProductMissing && strings.Contains(strings.ToLower(e.ProductName), term)) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (s *ledgerService) GetTransaction(id uint) (*model.CreditEntry, error) {
	credit, err := s.creditRepo.FindByID(id)
	if err != nil {
		return nil, storageOrNotFound("get transaction", "credit transaction", id, err)
	}
	products, err := s.productRepo.FindByIDs([]uint{credit.ProductID})
	if err != nil {
		return nil, storage("get transaction", err)
	}
	entry := resolveEntry(*credit, products)
	return &entry, nil
}

func (s *ledgerService) Payments(transactionID uint) ([]model.CreditPayment, error) {
	if _, err := s.creditRepo.FindByID(transactionID); err != nil {
		return nil, storageOrNotFound("list payments", "credit transaction", transactionID, err)
	}
	payments, err := s.creditRepo.FindPayments(transactionID)
	if err != nil {
		return nil, storage("list payments", err)
	}
	return payments, nil
}

func (s *ledgerService) Summary() (*model.CreditSummary, error) {
	credits, err := s.creditRepo.FindAll()
	if err != nil {
		return nil, storage("credit summary", err)
	}
	return summarize(credits), nil
}

func summarize(credits []model.CreditTransaction) *model.CreditSummary {
	sum := &model.CreditSummary{
		TotalCredits:     decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for i := range credits {
		sum.TotalCredits = sum.TotalCredits.Add(credits[i].Total())
		sum.TotalPaid = sum.TotalPaid.Add(credits[i].AmountPaid)
		sum.TotalOutstanding = sum.TotalOutstanding.Add(credits[i].AmountRemaining)
	}
	sum.Count = len(credits)
	return sum
}

// resolveEntry looks up the product name, falling back to a placeholder for deleted products
func resolveEntry(credit model.CreditTransaction, products map[uint]model.Product) model.CreditEntry {
	entry := model.CreditEntry{
		CreditTransaction: credit,
		TotalAmount:       credit.Total(),
	}
	if p, ok := products[credit.ProductID]; ok {
		entry.ProductName = p.Name
	} else {
		entry.ProductName = model.DeletedProductName
		entry.ProductMissing = true
	}
	return entry
}
