package service

import (
	"bytes"
	"strings"
	"testing"

	"go-credit-inventory/internal/model"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductsCSV(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "Widget", "100")
	_, err := f.catalog.AddProduct(&ProductRequest{Name: "Dell XPS 13", Category: "ordinateur-portable", Status: string(model.StatusSold), SaleDate: "2024-03-14"}, testRate)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.export.ProductsCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,category,cost_primary,cost_secondary"))

	var rows []*productRow
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Widget", rows[0].Name)
	assert.Equal(t, "13450.00", rows[0].CostSecondary)
	assert.Equal(t, "Sold", rows[1].Status)
	assert.Equal(t, "2024-03-14", rows[1].SaleDate)
}

func TestCreditsCSV_UsesPlaceholderForDeletedProducts(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "iPhone 14 Pro", "600")
	f.sell(t, p.ID, "850", "300")
	require.NoError(t, f.catalog.DeleteProduct(p.ID))

	var buf bytes.Buffer
	require.NoError(t, f.export.CreditsCSV(&buf))

	var rows []*creditRow
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, model.DeletedProductName, rows[0].ProductName)
	assert.Equal(t, "850.00", rows[0].TotalAmount)
	assert.Equal(t, "550.00", rows[0].AmountRemaining)
	assert.Equal(t, "2024-03-15 10:30:00", rows[0].TransactionDate)
}

func TestBundle(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "iPhone 14 Pro", "600")
	f.sell(t, p.ID, "850", "300")
	profile := &model.Profile{Username: "alice", CurrencyRate: decimal.RequireFromString("134.5")}

	bundle, err := f.export.Bundle(profile)
	require.NoError(t, err)

	assert.Equal(t, ExportVersion, bundle.Version)
	assert.Equal(t, fixedNow, bundle.ExportDate)
	assert.Same(t, profile, bundle.Profile)
	assert.Len(t, bundle.Products, 1)
	assert.Len(t, bundle.Credits, 1)
	assert.Equal(t, int64(1), bundle.Analytics.Products.Reserved)
}
