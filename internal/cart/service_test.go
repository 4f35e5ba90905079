package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopsphere/shopsphere-backend/internal/orders"
	"github.com/shopsphere/shopsphere-backend/internal/products"
	"github.com/shopsphere/shopsphere-backend/internal/users"
	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}))
	return db
}

func newCartService(t *testing.T, db *gorm.DB) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(db)
	svc, err := NewService(repo, products.NewRepository(db))
	require.NoError(t, err)
	return svc, repo
}

func mustCreateProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.NewFromInt(100),
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestGetWithoutCartReturnsEmptyList(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	svc, _ := newCartService(t, db)

	items, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddMergesIntoSingleLine(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	svc, _ := newCartService(t, db)
	product := mustCreateProduct(t, db, "Widget")
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, AddInput{ProductID: product.ID.String(), Quantity: 2})
	require.NoError(t, err)
	items, err := svc.Add(context.Background(), userID, AddInput{ProductID: product.ID.String(), Quantity: 3})
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "Widget", items[0].Name)

	var cartCount int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&cartCount).Error)
	assert.Equal(t, int64(1), cartCount)
}

func TestAddUnknownProductNotFound(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	svc, _ := newCartService(t, db)

	_, err := svc.Add(context.Background(), uuid.New(), AddInput{ProductID: uuid.NewString(), Quantity: 1})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateQuantityNonPositiveIsNoOp(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	svc, _ := newCartService(t, db)
	product := mustCreateProduct(t, db, "Widget")
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, AddInput{ProductID: product.ID.String(), Quantity: 4})
	require.NoError(t, err)

	items, err := svc.UpdateQuantity(context.Background(), userID, UpdateQuantityInput{ProductID: product.ID.String(), Quantity: 0})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestUpdateQuantityOverwrites(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	svc, _ := newCartService(t, db)
	product := mustCreateProduct(t, db, "Widget")
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, AddInput{ProductID: product.ID.String(), Quantity: 4})
	require.NoError(t, err)

	items, err := svc.UpdateQuantity(context.Background(), userID, UpdateQuantityInput{ProductID: product.ID.String(), Quantity: 9})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 9, items[0].Quantity)
}

func TestUpdateQuantityMissingLineNotFound(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	svc, _ := newCartService(t, db)
	product := mustCreateProduct(t, db, "Widget")
	other := mustCreateProduct(t, db, "Gadget")
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, AddInput{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(context.Background(), userID, UpdateQuantityInput{ProductID: other.ID.String(), Quantity: 2})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRemoveIsIdempotent(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	svc, _ := newCartService(t, db)
	product := mustCreateProduct(t, db, "Widget")
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, AddInput{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	items, err := svc.Remove(context.Background(), userID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = svc.Remove(context.Background(), userID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClearEmptiesButKeepsCartRow(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	svc, _ := newCartService(t, db)
	product := mustCreateProduct(t, db, "Widget")
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, AddInput{ProductID: product.ID.String(), Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(context.Background(), userID))

	items, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	var cartCount int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&cartCount).Error)
	assert.Equal(t, int64(1), cartCount)

	require.NoError(t, svc.Clear(context.Background(), uuid.New()))
}

// Placing an order leaves the cart untouched; the client clears it with a
// separate DELETE /api/cart/clear call.
func TestCartSurvivesOrderPlacement(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Address{}, &models.Order{}, &models.OrderItem{}))
	svc, _ := newCartService(t, db)
	product := mustCreateProduct(t, db, "Widget")

	user := &models.User{ID: uuid.New(), Username: "shopper", Email: "shopper@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	_, err := svc.Add(context.Background(), user.ID, AddInput{ProductID: product.ID.String(), Quantity: 2})
	require.NoError(t, err)

	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:  orders.NewRepository(db),
		Users: users.NewRepository(db),
		Logg:  logger.New(logger.Options{ServiceName: "cart-test"}),
	})
	require.NoError(t, err)

	_, err = orderSvc.Place(context.Background(), user.ID, orders.PlaceInput{
		Items:         []orders.ItemInput{{Name: "Widget", Price: decimal.NewFromInt(100), Quantity: 2}},
		Total:         decimal.NewFromInt(200),
		PaymentMethod: "cod",
		Shipping: orders.ShippingInput{
			Name:   "Shopper",
			Email:  "shopper@example.com",
			Street: "1 Main St",
			City:   "Springfield",
			Zip:    "12345",
		},
	})
	require.NoError(t, err)

	items, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
}

// Whole-line quantity writes are last-write-wins: two requests that read the
// same cart state both succeed, and the later write is the one that sticks.
func TestOverlappingQuantityWritesLastWins(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	svcA, _ := newCartService(t, db)
	svcB, _ := newCartService(t, db)
	product := mustCreateProduct(t, db, "Widget")
	userID := uuid.New()

	_, err := svcA.Add(context.Background(), userID, AddInput{ProductID: product.ID.String(), Quantity: 2})
	require.NoError(t, err)

	// Both requests observe the same line before either writes.
	_, err = svcA.Get(context.Background(), userID)
	require.NoError(t, err)
	_, err = svcB.Get(context.Background(), userID)
	require.NoError(t, err)

	_, err = svcA.UpdateQuantity(context.Background(), userID, UpdateQuantityInput{ProductID: product.ID.String(), Quantity: 5})
	require.NoError(t, err)
	items, err := svcB.UpdateQuantity(context.Background(), userID, UpdateQuantityInput{ProductID: product.ID.String(), Quantity: 3})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	items, err = svcA.Get(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestDeleteItemsOlderThan(t *testing.T) {
	t.Parallel()
	db := setupCartTestDB(t)
	_, repo := newCartService(t, db)
	product := mustCreateProduct(t, db, "Widget")
	userID := uuid.New()

	cart, err := repo.CreateCart(context.Background(), userID)
	require.NoError(t, err)
	item := &models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(context.Background(), item))

	stale := time.Now().Add(-100 * 24 * time.Hour)
	require.NoError(t, db.Model(&models.CartItem{}).Where("id = ?", item.ID).Update("updated_at", stale).Error)

	deleted, err := repo.DeleteItemsOlderThan(context.Background(), time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
