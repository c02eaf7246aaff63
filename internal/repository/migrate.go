package repository

import (
	"go-credit-inventory/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MigrateRegistry creates the profile registry tables
func MigrateRegistry(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(&model.Profile{}), "migrate registry")
}

// MigrateLedger creates the catalog and ledger tables of one profile store
func MigrateLedger(db *gorm.DB) error {
	return errors.Wrap(
		db.AutoMigrate(&model.Product{}, &model.CreditTransaction{}, &model.CreditPayment{}),
		"migrate ledger",
	)
}
