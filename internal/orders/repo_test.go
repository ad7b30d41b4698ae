package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

var ordersSchemaSeq int

func setupOrdersDB(t *testing.T) *gorm.DB {
	t.Helper()

	ordersSchemaSeq++
	dsn := fmt.Sprintf("file:orders%d?mode=memory&cache=shared", ordersSchemaSeq)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE orders (
			id TEXT PRIMARY KEY,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_phone TEXT,
			delivery_address TEXT,
			status TEXT NOT NULL,
			total_cents INTEGER NOT NULL,
			currency TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			payfast_payment_id TEXT,
			payment_status TEXT,
			amount_gross_cents INTEGER,
			amount_fee_cents INTEGER,
			amount_net_cents INTEGER,
			completed_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE order_line_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			name TEXT NOT NULL,
			unit_price_cents INTEGER NOT NULL,
			quantity INTEGER NOT NULL,
			created_at DATETIME
		)`,
		`CREATE TABLE sales (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			payfast_payment_id TEXT NOT NULL UNIQUE,
			payment_status TEXT NOT NULL,
			gross_cents INTEGER NOT NULL,
			fee_cents INTEGER NOT NULL,
			net_cents INTEGER NOT NULL,
			currency TEXT NOT NULL,
			item_name TEXT,
			items TEXT,
			customer_email TEXT,
			status TEXT NOT NULL,
			created_at DATETIME
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, gdb.Exec(stmt).Error)
	}

	return gdb
}

func seedOrder(t *testing.T, gdb *gorm.DB, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		CustomerName:  "Thandi Nkosi",
		CustomerEmail: "thandi@example.com",
		Status:        status,
		TotalCents:    25000,
		Currency:      "ZAR",
		PaymentMethod: enums.PaymentMethodPayfast,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, gdb.Create(order).Error)
	return order
}

func testOutcome(paymentID string) PaymentOutcome {
	return PaymentOutcome{
		PaymentID:     paymentID,
		PaymentStatus: "COMPLETE",
		GrossCents:    25000,
		FeeCents:      575,
		NetCents:      24425,
		CompletedAt:   time.Now(),
	}
}

func TestCompletePaymentFlipsPendingOnce(t *testing.T) {
	gdb := setupOrdersDB(t)
	repo := NewRepository(gdb)
	order := seedOrder(t, gdb, enums.OrderStatusPending)

	flipped, err := repo.CompletePayment(context.Background(), order.ID, testOutcome("pf-1"))
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.CompletePayment(context.Background(), order.ID, testOutcome("pf-2"))
	require.NoError(t, err)
	assert.False(t, flipped)

	var reloaded models.Order
	require.NoError(t, gdb.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.PayfastPaymentID)
	assert.Equal(t, "pf-1", *reloaded.PayfastPaymentID)
}

func TestMarkUnsuccessfulDoesNotTouchTerminalOrders(t *testing.T) {
	gdb := setupOrdersDB(t)
	repo := NewRepository(gdb)
	order := seedOrder(t, gdb, enums.OrderStatusCompleted)

	flipped, err := repo.MarkUnsuccessful(context.Background(), order.ID, enums.OrderStatusCancelled, "pf-9", "CANCELLED")
	require.NoError(t, err)
	assert.False(t, flipped)

	var reloaded models.Order
	require.NoError(t, gdb.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCompleted, reloaded.Status)
}

func TestMarkUnsuccessfulSetsCancelled(t *testing.T) {
	gdb := setupOrdersDB(t)
	repo := NewRepository(gdb)
	order := seedOrder(t, gdb, enums.OrderStatusPending)

	flipped, err := repo.MarkUnsuccessful(context.Background(), order.ID, enums.OrderStatusCancelled, "pf-9", "CANCELLED")
	require.NoError(t, err)
	assert.True(t, flipped)

	var reloaded models.Order
	require.NoError(t, gdb.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCancelled, reloaded.Status)
}

func TestMarkUnsuccessfulRejectsSuccessStatus(t *testing.T) {
	gdb := setupOrdersDB(t)
	repo := NewRepository(gdb)
	order := seedOrder(t, gdb, enums.OrderStatusPending)

	_, err := repo.MarkUnsuccessful(context.Background(), order.ID, enums.OrderStatusCompleted, "pf-9", "COMPLETE")
	require.Error(t, err)
}

func TestFindByIDNotFound(t *testing.T) {
	gdb := setupOrdersDB(t)
	repo := NewRepository(gdb)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestListFiltersByStatus(t *testing.T) {
	gdb := setupOrdersDB(t)
	repo := NewRepository(gdb)
	seedOrder(t, gdb, enums.OrderStatusPending)
	seedOrder(t, gdb, enums.OrderStatusCompleted)
	seedOrder(t, gdb, enums.OrderStatusCompleted)

	list, total, err := repo.List(context.Background(), ListFilter{Status: enums.OrderStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
	for _, o := range list {
		assert.Equal(t, enums.OrderStatusCompleted, o.Status)
	}
}
