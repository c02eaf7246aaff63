package service

import (
	"sync"
	"testing"
	"time"

	"go-credit-inventory/internal/model"
	"go-credit-inventory/internal/repository"
	"go-credit-inventory/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	testRate = decimal.RequireFromString("134.5")
	fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	db      *gorm.DB
	catalog *catalogService
	ledger  *ledgerService
	dash    *dashboardService
	export  *exportService
	events  *recorder
}

// setupTestDB opens an in-memory ledger store
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, repository.MigrateLedger(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	events := &recorder{}
	productRepo := repository.NewProductRepo(db)
	creditRepo := repository.NewCreditRepo(db)

	catalog := NewCatalogService(productRepo, db, events, "alice").(*catalogService)
	catalog.now = func() time.Time { return fixedNow }
	ledger := NewLedgerService(creditRepo, productRepo, db, events, "alice").(*ledgerService)
	ledger.now = func() time.Time { return fixedNow }
	dash := NewDashboardService(productRepo, creditRepo).(*dashboardService)
	dash.now = func() time.Time { return fixedNow }
	export := NewExportService(productRepo, ledger, dash).(*exportService)
	export.now = func() time.Time { return fixedNow }

	return &fixture{db: db, catalog: catalog, ledger: ledger, dash: dash, export: export, events: events}
}

func (f *fixture) addProduct(t *testing.T, name string, cost string) *model.Product {
	t.Helper()
	p, err := f.catalog.AddProduct(&ProductRequest{Name: name, CostPrimary: NumberField(cost)}, testRate)
	require.NoError(t, err)
	return p
}

func (f *fixture) reload(t *testing.T, id uint) *model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return &p
}

func (f *fixture) sell(t *testing.T, productID uint, total, paid string) *CreditResult {
	t.Helper()
	res, err := f.ledger.CreateCreditSale(&CreditSaleRequest{
		ProductID:    productID,
		CustomerName: "Ahmed Benali",
		TotalAmount:  NumberField(total),
		AmountPaid:   NumberField(paid),
	})
	require.NoError(t, err)
	return res
}
