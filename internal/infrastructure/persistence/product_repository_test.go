package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_CreateAndFind(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormProductRepository(db.DB)
	ctx := context.Background()

	widget := seedProduct(t, repo, "Widget", "19.99", 5)
	gadget := seedProduct(t, repo, "Gadget", "0", 0)

	found, err := repo.FindByID(ctx, widget.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", found.Name)
	assert.True(t, decimal.RequireFromString("19.99").Equal(found.Price))
	assert.Equal(t, 5, found.Quantity)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, widget.ID, all[0].ID)
	assert.True(t, all[1].Price.IsZero())

	byIDs, err := repo.FindByIDs(ctx, []uint{gadget.ID, 999, widget.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, widget.ID, byIDs[0].ID)
	assert.Equal(t, gadget.ID, byIDs[1].ID)

	none, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_Update(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewGormProductRepository(db.DB)
	ctx := context.Background()

	product := seedProduct(t, repo, "Lamp", "30.00", 3)
	require.NoError(t, product.Update("Desk Lamp", decimal.RequireFromString("27.50"), 12))
	require.NoError(t, repo.Update(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", found.Name)
	assert.True(t, decimal.RequireFromString("27.50").Equal(found.Price))
	assert.Equal(t, 12, found.Quantity)

	missing := &catalog.Product{BaseEntity: shared.BaseEntity{ID: 999}, Name: "x"}
	assert.ErrorIs(t, repo.Update(ctx, missing), shared.ErrNotFound)
}

func TestGormProductRepository_Delete_RemovesOrderLines(t *testing.T) {
	db := newTestDatabase(t)
	products := NewGormProductRepository(db.DB)
	customers := NewGormCustomerRepository(db.DB)
	orders := NewGormOrderRepository(db.DB)
	ctx := context.Background()

	customer := seedCustomer(t, customers, "ivan")
	doomed := seedProduct(t, products, "Doomed", "1.00", 1)
	kept := seedProduct(t, products, "Kept", "2.00", 1)

	order, err := trade.NewOrder(customer.ID, time.Now())
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, order))
	for _, id := range []uint{doomed.ID, kept.ID} {
		line, err := trade.NewOrderProduct(order.ID, id, 1)
		require.NoError(t, err)
		require.NoError(t, orders.AddLine(ctx, line))
	}

	require.NoError(t, products.Delete(ctx, doomed.ID))

	lines, err := orders.FindLines(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, kept.ID, lines[0].ProductID)

	_, err = orders.FindByID(ctx, order.ID)
	assert.NoError(t, err, "the order itself survives")

	assert.ErrorIs(t, products.Delete(ctx, doomed.ID), shared.ErrNotFound)
}
