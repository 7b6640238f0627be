package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Ijanques/pysteis/internal/database"
	"github.com/Ijanques/pysteis/internal/models"
	"github.com/Ijanques/pysteis/internal/store"
)

func addItem(t *testing.T, st *store.Store, saleID int64, p models.Product, qty int) {
	t.Helper()

	_, err := st.AddLineItem(context.Background(), saleID, store.LineItemInput{
		ProductID:   p.ID,
		ProductCode: p.Code,
		Quantity:    qty,
		UnitPrice:   p.Price,
	})
	require.NoError(t, err)
}

func TestCreateSaleStartsEmpty(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	sale, err := st.CreateSale(ctx)
	require.NoError(t, err)
	require.NotZero(t, sale.ID)
	require.Equal(t, models.SaleStatusOpen, sale.Status)
	require.True(t, sale.Total.IsZero())
	require.False(t, sale.Date.IsZero())

	items, err := st.ListLineItems(ctx, sale.ID)
	require.NoError(t, err)
	require.Empty(t, items)

	got, err := st.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.True(t, got.Total.IsZero())

	missing, err := st.GetSale(ctx, 999999)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestFinalizeSaleComputesTotal(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// P001 is seeded at 8.50, P002 at 9.00: 2×8.50 + 1×9.00 = 26.00.
	p1 := productByCode(t, st, "P001")
	p2 := productByCode(t, st, "P002")

	sale, err := st.CreateSale(ctx)
	require.NoError(t, err)

	addItem(t, st, sale.ID, p1, 2)
	addItem(t, st, sale.ID, p2, 1)

	finalized, err := st.FinalizeSale(ctx, sale.ID)
	require.NoError(t, err)
	require.Equal(t, models.SaleStatusFinalized, finalized.Status)
	require.True(t, finalized.Total.Equal(decimal.NewFromFloat(26.00)), "total %s", finalized.Total)

	got, err := st.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.True(t, got.Total.Equal(decimal.NewFromFloat(26.00)))
}

func TestFinalizedSaleRejectsMutation(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	p := productByCode(t, st, "P003")

	sale, err := st.CreateSale(ctx)
	require.NoError(t, err)
	addItem(t, st, sale.ID, p, 1)

	_, err = st.FinalizeSale(ctx, sale.ID)
	require.NoError(t, err)

	_, err = st.AddLineItem(ctx, sale.ID, store.LineItemInput{
		ProductID:   p.ID,
		ProductCode: p.Code,
		Quantity:    1,
		UnitPrice:   p.Price,
	})
	require.ErrorIs(t, err, database.ErrSaleFinalized)

	_, err = st.FinalizeSale(ctx, sale.ID)
	require.ErrorIs(t, err, database.ErrSaleFinalized)

	items, err := st.ListLineItems(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAddLineItemValidation(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	p := productByCode(t, st, "P001")

	_, err := st.AddLineItem(ctx, 999999, store.LineItemInput{
		ProductID:   p.ID,
		ProductCode: p.Code,
		Quantity:    1,
		UnitPrice:   p.Price,
	})
	require.ErrorIs(t, err, database.ErrSaleNotFound)

	sale, err := st.CreateSale(ctx)
	require.NoError(t, err)

	_, err = st.AddLineItem(ctx, sale.ID, store.LineItemInput{
		ProductID:   p.ID,
		ProductCode: p.Code,
		Quantity:    0,
		UnitPrice:   p.Price,
	})
	var cerr *database.ConstraintError
	require.True(t, errors.As(err, &cerr), "quantity 0 must hit the check constraint, got %v", err)
	require.Equal(t, database.ConstraintCheck, cerr.Kind)

	_, err = st.AddLineItem(ctx, sale.ID, store.LineItemInput{
		ProductID:   999999,
		ProductCode: "P999",
		Quantity:    1,
		UnitPrice:   decimal.NewFromFloat(1.00),
	})
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, database.ConstraintForeignKey, cerr.Kind)
}

func TestLineItemSnapshotsSurviveProductChanges(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	p := productByCode(t, st, "P005")

	sale, err := st.CreateSale(ctx)
	require.NoError(t, err)
	addItem(t, st, sale.ID, p, 3)

	// Re-code, rename, and re-price the product after the fact.
	_, err = st.UpdateProduct(ctx, p.ID, store.ProductInput{
		Code:        "P505",
		Name:        "Pastel Renomeado",
		Description: p.Description,
		Price:       decimal.NewFromFloat(99.00),
		CategoryID:  p.CategoryID,
	})
	require.NoError(t, err)

	items, err := st.ListLineItems(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	// Code and price are frozen at insertion time; the name is joined live
	// and follows the rename.
	require.Equal(t, "P005", item.ProductCode)
	require.True(t, item.UnitPrice.Equal(p.Price), "unit price %s", item.UnitPrice)
	require.Equal(t, "Pastel Renomeado", item.ProductName)
	require.True(t, item.Subtotal().Equal(p.Price.Mul(decimal.NewFromInt(3))))
}

func TestListSalesNewestFirst(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	first, err := st.CreateSale(ctx)
	require.NoError(t, err)
	second, err := st.CreateSale(ctx)
	require.NoError(t, err)

	sales, err := st.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2)

	for i := 1; i < len(sales); i++ {
		require.False(t, sales[i-1].Date.Before(sales[i].Date), "sales not ordered by date descending")
	}

	ids := []int64{sales[0].ID, sales[1].ID}
	require.ElementsMatch(t, []int64{first.ID, second.ID}, ids)
}

func TestRemoveSaleCascadesLineItems(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	p := productByCode(t, st, "P004")

	sale, err := st.CreateSale(ctx)
	require.NoError(t, err)
	addItem(t, st, sale.ID, p, 2)

	require.NoError(t, st.RemoveSale(ctx, sale.ID))

	got, err := st.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	items, err := st.ListLineItems(ctx, sale.ID)
	require.NoError(t, err)
	require.Empty(t, items)

	// With the cascade done nothing references the product anymore.
	require.NoError(t, st.RemoveProduct(ctx, p.ID))
}
