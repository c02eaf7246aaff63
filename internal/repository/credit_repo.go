package repository

import (
	"time"

	"go-credit-inventory/internal/model"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditRepository interface {
	Create(tx *gorm.DB, credit *model.CreditTransaction) error
	FindAll() ([]model.CreditTransaction, error)
	FindByID(id uint) (*model.CreditTransaction, error)
	LockByID(tx *gorm.DB, id uint) (*model.CreditTransaction, error)
	UpdateBalance(tx *gorm.DB, id uint, paid, remaining decimal.Decimal) error
	AddPayment(tx *gorm.DB, payment *model.CreditPayment) error
	FindPayments(creditID uint) ([]model.CreditPayment, error)
	FindPaymentsSince(since time.Time) ([]model.CreditPayment, error)
}

type creditRepo struct {
	db *gorm.DB
}

func NewCreditRepo(db *gorm.DB) CreditRepository {
	return &creditRepo{db}
}

func (r *creditRepo) Create(tx *gorm.DB, credit *model.CreditTransaction) error {
	return errors.Wrap(tx.Omit("Payments").Create(credit).Error, "create credit transaction")
}

// FindAll returns the newest transactions first
func (r *creditRepo) FindAll() ([]model.CreditTransaction, error) {
	credits := []model.CreditTransaction{}
	err := r.db.Order("transaction_date DESC").Order("id DESC").Find(&credits).Error
	if err != nil {
		return nil, errors.Wrap(err, "list credit transactions")
	}
	return credits, nil
}

func (r *creditRepo) FindByID(id uint) (*model.CreditTransaction, error) {
	var credit model.CreditTransaction
	if err := r.db.First(&credit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find credit transaction")
	}
	return &credit, nil
}

func (r *creditRepo) LockByID(tx *gorm.DB, id uint) (*model.CreditTransaction, error) {
	var credit model.CreditTransaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&credit, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lock credit transaction")
	}
	return &credit, nil
}

func (r *creditRepo) UpdateBalance(tx *gorm.DB, id uint, paid, remaining decimal.Decimal) error {
	result := tx.Model(&model.CreditTransaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"amount_paid":      paid,
			"amount_remaining": remaining,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "update credit balance")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *creditRepo) AddPayment(tx *gorm.DB, payment *model.CreditPayment) error {
	return errors.Wrap(tx.Create(payment).Error, "record payment")
}

func (r *creditRepo) FindPayments(creditID uint) ([]model.CreditPayment, error) {
	payments := []model.CreditPayment{}
	err := r.db.Where("credit_transaction_id = ?", creditID).
		Order("paid_at ASC").Order("id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, errors.Wrap(err, "list payments")
	}
	return payments, nil
}

func (r *creditRepo) FindPaymentsSince(since time.Time) ([]model.CreditPayment, error) {
	payments := []model.CreditPayment{}
	err := r.db.Where("paid_at >= ?", since).
		Order("paid_at ASC").Order("id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, errors.Wrap(err, "list recent payments")
	}
	return payments, nil
}
