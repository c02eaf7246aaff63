package main

import (
	"time"

	"go-credit-inventory/internal/model"
	"go-credit-inventory/internal/service"
	"go-credit-inventory/internal/store"

	"github.com/shopspring/decimal"
)

type seedResult struct {
	products int
	creditID uint
}

func daysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(model.DateLayout)
}

func sampleProducts() []service.ProductRequest {
	return []service.ProductRequest{
		{
			Name:        "Lenovo ThinkPad X1 Carbon",
			Category:    "ordinateur-portable",
			CostPrimary: "800.00",
			Transport:   "50.00",
			SalePrice:   "1100.00",
			PackageSize: "35cm x 25cm x 3cm",
			ArrivalDate: daysAgo(5),
		},
		{
			Name:        "MacBook Air M2",
			Category:    "ordinateur-portable",
			CostPrimary: "1000.00",
			Transport:   "60.00",
			SalePrice:   "1400.00",
			PackageSize: "30cm x 22cm x 2cm",
			ArrivalDate: daysAgo(3),
		},
		{
			Name:        "Dell XPS 13",
			Category:    "ordinateur-portable",
			CostPrimary: "750.00",
			Transport:   "45.00",
			SalePrice:   "1050.00",
			PackageSize: "32cm x 23cm x 2.5cm",
			ArrivalDate: daysAgo(7),
			SaleDate:    daysAgo(1),
			Status:      string(model.StatusSold),
		},
		{
			Name:        "iPhone 14 Pro",
			Category:    "smartphone",
			CostPrimary: "600.00",
			Transport:   "25.00",
			SalePrice:   "850.00",
			PackageSize: "15cm x 8cm x 2cm",
			ArrivalDate: daysAgo(2),
		},
		{
			Name:        "Samsung Galaxy Tab S8",
			Category:    "tablet",
			CostPrimary: "400.00",
			Transport:   "30.00",
			SalePrice:   "580.00",
			PackageSize: "25cm x 18cm x 1.5cm",
			ArrivalDate: daysAgo(0),
		},
	}
}

// seedSampleData adds the sample catalog and sells the iPhone on credit,
// which leaves it Reserved with 550 outstanding.
func seedSampleData(st *store.Store, rate decimal.Decimal) (seedResult, error) {
	var result seedResult
	var creditProduct uint

	for _, req := range sampleProducts() {
		req := req
		product, err := st.Catalog.AddProduct(&req, rate)
		if err != nil {
			return result, err
		}
		result.products++
		if product.Name == "iPhone 14 Pro" {
			creditProduct = product.ID
		}
	}

	credit, err := st.Ledger.CreateCreditSale(&service.CreditSaleRequest{
		ProductID:    creditProduct,
		CustomerName: "Ahmed Benali",
		TotalAmount:  "850.00",
		AmountPaid:   "300.00",
	})
	if err != nil {
		return result, err
	}
	result.creditID = credit.Transaction.ID
	return result, nil
}
