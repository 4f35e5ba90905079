package orders

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

	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))
	return db
}

func seedOrder(t *testing.T, repo *Repository, userID uuid.UUID, status enums.OrderStatus, total int64) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:        userID,
		Total:         decimal.NewFromInt(total),
		PaymentMethod: enums.PaymentMethodCOD,
		Status:        status,
		ShippingName:  "Asha Rao",
		ShippingEmail: "asha@example.com",
		ShippingStreet: "12 Lake Rd",
		ShippingCity:   "Pune",
		ShippingZip:    "411001",
		Items: []models.OrderItem{
			{Name: "Widget", Price: decimal.NewFromInt(total), Quantity: 1},
		},
	}
	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestSnapshotSurvivesProductEdit(t *testing.T) {
	t.Parallel()
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	product := &models.Product{ID: uuid.New(), Name: "Widget", Price: decimal.NewFromInt(500)}
	require.NoError(t, db.Create(product).Error)

	order := seedOrder(t, repo, uuid.New(), enums.OrderStatusPending, 500)

	require.NoError(t, db.Model(product).Update("price", decimal.NewFromInt(900)).Error)

	reloaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, reloaded.Items[0].Price.Equal(decimal.NewFromInt(500)))
}

func TestListByUserMostRecentFirst(t *testing.T) {
	t.Parallel()
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	first := seedOrder(t, repo, userID, enums.OrderStatusPending, 100)
	second := seedOrder(t, repo, userID, enums.OrderStatusPending, 200)
	seedOrder(t, repo, uuid.New(), enums.OrderStatusPending, 300)

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	rows, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
}

func TestRevenueExcludesCancelled(t *testing.T) {
	t.Parallel()
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	seedOrder(t, repo, uuid.New(), enums.OrderStatusDelivered, 700)
	seedOrder(t, repo, uuid.New(), enums.OrderStatusPending, 300)
	seedOrder(t, repo, uuid.New(), enums.OrderStatusCancelled, 9000)

	revenue, err := repo.Revenue(context.Background())
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.NewFromInt(1000)), "got %s", revenue)
}

func TestCountByStatus(t *testing.T) {
	t.Parallel()
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	seedOrder(t, repo, uuid.New(), enums.OrderStatusPending, 100)
	seedOrder(t, repo, uuid.New(), enums.OrderStatusPending, 100)
	seedOrder(t, repo, uuid.New(), enums.OrderStatusShipped, 100)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[enums.OrderStatusPending])
	assert.Equal(t, int64(1), counts[enums.OrderStatusShipped])
}
