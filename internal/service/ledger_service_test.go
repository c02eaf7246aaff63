package service

import (
	"errors"
	"testing"
	"time"

	"go-credit-inventory/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateCreditSale_PartialPaymentReservesProduct(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "iPhone 14 Pro", "600")

	res := f.sell(t, p.ID, "850", "300")

	assert.Equal(t, "550.00", res.Transaction.AmountRemaining.StringFixed(2))
	assert.Equal(t, "300.00", res.Transaction.AmountPaid.StringFixed(2))
	assert.True(t, res.Product.Changed)
	assert.Equal(t, model.StatusReserved, res.Product.Status)

	stored := f.reload(t, p.ID)
	assert.Equal(t, model.StatusReserved, stored.Status)
	assert.Empty(t, stored.SaleDate)

	assert.Equal(t, []string{ActionProductCreated, ActionCreditCreated, ActionStatusChanged}, f.events.actions())
}

func TestCreateCreditSale_FullPaymentSellsProduct(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "iPhone 14 Pro", "600")

	res := f.sell(t, p.ID, "850", "850")

	assert.True(t, res.Transaction.AmountRemaining.IsZero())
	stored := f.reload(t, p.ID)
	assert.Equal(t, model.StatusSold, stored.Status)
	assert.Equal(t, "2024-03-15", stored.SaleDate)
}

func TestCreateCreditSale_RemainingMatchesTotalMinusPaid(t *testing.T) {
	cases := []struct{ total, paid string }{
		{"850", "300"},
		{"850", "850"},
		{"0", "0"},
		{"1000.50", "0.50"},
		{"1200", "0"},
		{"99.99", "99.98"},
	}

	for _, c := range cases {
		t.Run(c.total+"/"+c.paid, func(t *testing.T) {
			f := newFixture(t)
			p := f.addProduct(t, "Item", "10")

			res := f.sell(t, p.ID, c.total, c.paid)

			total := decimal.RequireFromString(c.total)
			paid := decimal.RequireFromString(c.paid)
			remaining := total.Sub(paid)
			assert.True(t, res.Transaction.AmountRemaining.Equal(remaining))
			assert.True(t, res.Transaction.Total().Equal(total))

			want := model.StatusReserved
			if !remaining.IsPositive() {
				want = model.StatusSold
			}
			assert.Equal(t, want, f.reload(t, p.ID).Status)
		})
	}
}

func TestCreateCreditSale_OverpaidInitialSale(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Item", "10")

	res := f.sell(t, p.ID, "850", "900")

	assert.Equal(t, "-50.00", res.Transaction.AmountRemaining.StringFixed(2))
	assert.Equal(t, model.StatusSold, f.reload(t, p.ID).Status)
}

func TestCreateCreditSale_Rejections(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Item", "10")

	_, err := f.ledger.CreateCreditSale(&CreditSaleRequest{ProductID: p.ID, CustomerName: "  ", TotalAmount: "850"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "customer_name", ve.Field)

	_, err = f.ledger.CreateCreditSale(&CreditSaleRequest{ProductID: p.ID, CustomerName: "Ahmed", TotalAmount: "abc"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "total_amount", ve.Field)

	_, err = f.ledger.CreateCreditSale(&CreditSaleRequest{ProductID: p.ID, CustomerName: "Ahmed", TotalAmount: "850", AmountPaid: "-1"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount_paid", ve.Field)

	_, err = f.ledger.CreateCreditSale(&CreditSaleRequest{ProductID: 999, CustomerName: "Ahmed", TotalAmount: "850"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	f.sell(t, p.ID, "850", "100")
	_, err = f.ledger.CreateCreditSale(&CreditSaleRequest{ProductID: p.ID, CustomerName: "Karim", TotalAmount: "850"})
	assert.ErrorIs(t, err, ErrProductNotInStock)

	entries, err := f.ledger.ListTransactions()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateCreditSale_IsAtomic(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Item", "10")

	err := f.db.Callback().Update().Before("gorm:update").Register("test:fail_product_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "products" {
			tx.AddError(errors.New("disk I/O error"))
		}
	})
	require.NoError(t, err)

	_, err = f.ledger.CreateCreditSale(&CreditSaleRequest{ProductID: p.ID, CustomerName: "Ahmed", TotalAmount: "850", AmountPaid: "300"})
	var se *StorageError
	require.ErrorAs(t, err, &se)

	var credits, payments int64
	require.NoError(t, f.db.Model(&model.CreditTransaction{}).Count(&credits).Error)
	require.NoError(t, f.db.Model(&model.CreditPayment{}).Count(&payments).Error)
	assert.Zero(t, credits)
	assert.Zero(t, payments)
	assert.Equal(t, model.StatusInStock, f.reload(t, p.ID).Status)
	assert.NotContains(t, f.events.actions(), ActionCreditCreated)
}

func TestCreateCreditSale_RejectsSubCentAmounts(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Item", "10")

	cases := []struct {
		name  string
		req   CreditSaleRequest
		field string
	}{
		{"total", CreditSaleRequest{ProductID: p.ID, CustomerName: "Ahmed", TotalAmount: "10.005", AmountPaid: "5"}, "total_amount"},
		{"paid", CreditSaleRequest{ProductID: p.ID, CustomerName: "Ahmed", TotalAmount: "10", AmountPaid: "9.9951"}, "amount_paid"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.ledger.CreateCreditSale(&c.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, c.field, ve.Field)
		})
	}

	assert.Equal(t, model.StatusInStock, f.reload(t, p.ID).Status)
	entries, err := f.ledger.ListTransactions()
	require.NoError(t, err)
	assert.Empty(t, entries)

	res := f.sell(t, p.ID, "10.00", "9.99")
	assert.Equal(t, "0.01", res.Transaction.AmountRemaining.StringFixed(2))
	assert.Equal(t, model.StatusReserved, res.Product.Status)

	_, err = f.ledger.AddPayment(res.Transaction.ID, &PaymentRequest{Amount: "0.005"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)

	done, err := f.ledger.AddPayment(res.Transaction.ID, &PaymentRequest{Amount: "0.01"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSold, done.Product.Status)
}

func TestAddPayment_IsAtomic(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Item", "10")
	sale := f.sell(t, p.ID, "850", "300")

	err := f.db.Callback().Update().Before("gorm:update").Register("test:fail_product_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "products" {
			tx.AddError(errors.New("disk I/O error"))
		}
	})
	require.NoError(t, err)

	_, err = f.ledger.AddPayment(sale.Transaction.ID, &PaymentRequest{Amount: "550"})
	var se *StorageError
	require.ErrorAs(t, err, &se)

	var credit model.CreditTransaction
	require.NoError(t, f.db.First(&credit, sale.Transaction.ID).Error)
	assert.Equal(t, "550.00", credit.AmountRemaining.StringFixed(2))
	assert.Equal(t, "300.00", credit.AmountPaid.StringFixed(2))

	var payments int64
	require.NoError(t, f.db.Model(&model.CreditPayment{}).Count(&payments).Error)
	assert.Equal(t, int64(1), payments)
	assert.Equal(t, model.StatusReserved, f.reload(t, p.ID).Status)
	assert.NotContains(t, f.events.actions(), ActionPaymentAdded)
}

func TestAddPayment_CompletesSale(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "iPhone 14 Pro", "600")
	sale := f.sell(t, p.ID, "850", "300")

	res, err := f.ledger.AddPayment(sale.Transaction.ID, &PaymentRequest{Amount: "550"})
	require.NoError(t, err)

	assert.True(t, res.Transaction.AmountRemaining.IsZero())
	assert.Equal(t, "850.00", res.Transaction.AmountPaid.StringFixed(2))
	assert.Equal(t, model.StatusSold, res.Product.Status)

	stored := f.reload(t, p.ID)
	assert.Equal(t, model.StatusSold, stored.Status)
	assert.Equal(t, "2024-03-15", stored.SaleDate)

	payments, err := f.ledger.Payments(sale.Transaction.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "300.00", payments[0].Amount.StringFixed(2))
	assert.Equal(t, "550.00", payments[1].Amount.StringFixed(2))
}

func TestAddPayment_PartialKeepsReserved(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Item", "10")
	sale := f.sell(t, p.ID, "850", "300")

	res, err := f.ledger.AddPayment(sale.Transaction.ID, &PaymentRequest{Amount: "200"})
	require.NoError(t, err)

	assert.Equal(t, "350.00", res.Transaction.AmountRemaining.StringFixed(2))
	assert.False(t, res.Product.Changed)
	assert.Equal(t, model.StatusReserved, f.reload(t, p.ID).Status)
}

func TestAddPayment_Rejections(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Item", "10")
	sale := f.sell(t, p.ID, "850", "300")
	id := sale.Transaction.ID

	_, err := f.ledger.AddPayment(id, &PaymentRequest{Amount: "600"})
	assert.ErrorIs(t, err, ErrOverpayment)

	_, err = f.ledger.AddPayment(id, &PaymentRequest{Amount: "0"})
	assert.ErrorIs(t, err, ErrPaymentNotPositive)

	_, err = f.ledger.AddPayment(id, &PaymentRequest{Amount: "-10"})
	assert.ErrorIs(t, err, ErrPaymentNotPositive)

	_, err = f.ledger.AddPayment(id, &PaymentRequest{Amount: "ten"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)

	_, err = f.ledger.AddPayment(id, &PaymentRequest{})
	require.ErrorAs(t, err, &ve)

	_, err = f.ledger.AddPayment(999, &PaymentRequest{Amount: "10"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	entry, err := f.ledger.GetTransaction(id)
	require.NoError(t, err)
	assert.Equal(t, "550.00", entry.AmountRemaining.StringFixed(2))

	payments, err := f.ledger.Payments(id)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestAddPayment_LeavesDamagedProductAlone(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Item", "10")
	sale := f.sell(t, p.ID, "850", "300")

	_, err := f.catalog.UpdateProduct(p.ID, &ProductRequest{Name: "Item", CostPrimary: "10", Status: string(model.StatusDamaged)}, testRate)
	require.NoError(t, err)

	res, err := f.ledger.AddPayment(sale.Transaction.ID, &PaymentRequest{Amount: "550"})
	require.NoError(t, err)

	assert.True(t, res.Transaction.AmountRemaining.IsZero())
	assert.False(t, res.Product.Changed)
	stored := f.reload(t, p.ID)
	assert.Equal(t, model.StatusDamaged, stored.Status)
	assert.Empty(t, stored.SaleDate)
}

func TestDeletedProduct_TransactionsStayReadable(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Item", "10")
	sale := f.sell(t, p.ID, "850", "300")

	require.NoError(t, f.catalog.DeleteProduct(p.ID))

	entries, err := f.ledger.ListTransactions()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.DeletedProductName, entries[0].ProductName)
	assert.True(t, entries[0].ProductMissing)
	assert.Equal(t, p.ID, entries[0].ProductID)

	res, err := f.ledger.AddPayment(sale.Transaction.ID, &PaymentRequest{Amount: "550"})
	require.NoError(t, err)
	assert.False(t, res.Product.Found)
	assert.True(t, res.Transaction.AmountRemaining.IsZero())

	entry, err := f.ledger.GetTransaction(sale.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, entry.ProductMissing)
}

func TestListTransactions_NewestFirst(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1")
	b := f.addProduct(t, "B", "1")

	first := f.sell(t, a.ID, "100", "10")
	f.ledger.now = func() time.Time { return fixedNow.Add(time.Hour) }
	second := f.sell(t, b.ID, "200", "20")

	entries, err := f.ledger.ListTransactions()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.Transaction.ID, entries[0].ID)
	assert.Equal(t, "B", entries[0].ProductName)
	assert.Equal(t, "200.00", entries[0].TotalAmount.StringFixed(2))
	assert.Equal(t, first.Transaction.ID, entries[1].ID)

	again, err := f.ledger.ListTransactions()
	require.NoError(t, err)
	assert.Equal(t, entries, again)
}

func TestSearchTransactions(t *testing.T) {
	f := newFixture(t)
	iphone := f.addProduct(t, "iPhone 14 Pro", "600")
	laptop := f.addProduct(t, "Dell XPS 13", "900")
	tablet := f.addProduct(t, "Galaxy Tab", "300")

	_, err := f.ledger.CreateCreditSale(&CreditSaleRequest{ProductID: iphone.ID, CustomerName: "Ahmed Benali", TotalAmount: "850"})
	require.NoError(t, err)
	_, err = f.ledger.CreateCreditSale(&CreditSaleRequest{ProductID: laptop.ID, CustomerName: "Karim Haddad", TotalAmount: "1200"})
	require.NoError(t, err)
	_, err = f.ledger.CreateCreditSale(&CreditSaleRequest{ProductID: tablet.ID, CustomerName: "Sara", TotalAmount: "400"})
	require.NoError(t, err)

	byCustomer, err := f.ledger.SearchTransactions("karim")
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, "Dell XPS 13", byCustomer[0].ProductName)

	byProduct, err := f.ledger.SearchTransactions(" IPHONE ")
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, "Ahmed Benali", byProduct[0].CustomerName)

	all, err := f.ledger.SearchTransactions("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, f.catalog.DeleteProduct(tablet.ID))
	deleted, err := f.ledger.SearchTransactions("deleted")
	require.NoError(t, err)
	assert.Empty(t, deleted)

	stillByCustomer, err := f.ledger.SearchTransactions("sara")
	require.NoError(t, err)
	assert.Len(t, stillByCustomer, 1)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)

	empty, err := f.ledger.Summary()
	require.NoError(t, err)
	assert.True(t, empty.TotalCredits.IsZero())
	assert.True(t, empty.TotalPaid.IsZero())
	assert.True(t, empty.TotalOutstanding.IsZero())
	assert.Zero(t, empty.Count)

	a := f.addProduct(t, "A", "1")
	b := f.addProduct(t, "B", "1")
	f.sell(t, a.ID, "850", "300")
	f.sell(t, b.ID, "850", "850")

	sum, err := f.ledger.Summary()
	require.NoError(t, err)
	assert.Equal(t, "1700.00", sum.TotalCredits.StringFixed(2))
	assert.Equal(t, "1150.00", sum.TotalPaid.StringFixed(2))
	assert.Equal(t, "550.00", sum.TotalOutstanding.StringFixed(2))
	assert.Equal(t, 2, sum.Count)
}
