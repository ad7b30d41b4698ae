package payfast

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

	"github.com/hkb-commerce/storefront-backend/internal/orders"
	"github.com/hkb-commerce/storefront-backend/internal/sales"
	"github.com/hkb-commerce/storefront-backend/pkg/db"
	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
	"github.com/hkb-commerce/storefront-backend/pkg/outbox"
	pfgateway "github.com/hkb-commerce/storefront-backend/pkg/payfast"
)

var schemaSeq int

func setupDB(t *testing.T) *db.Client {
	t.Helper()

	schemaSeq++
	dsn := fmt.Sprintf("file:recon%d?mode=memory&cache=shared", schemaSeq)
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
		`CREATE TABLE outbox_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			published_at DATETIME,
			created_at DATETIME
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, gdb.Exec(stmt).Error)
	}

	return db.NewWithGorm(gdb)
}

func setupService(t *testing.T, client *db.Client) *Service {
	t.Helper()
	return setupServiceWithSales(t, client, sales.NewRepository(client.DB()))
}

func setupServiceWithSales(t *testing.T, client *db.Client, salesRepo sales.Repository) *Service {
	t.Helper()

	outboxSvc, err := outbox.NewService(outbox.NewRepository(client.DB()))
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		DB:     client,
		Orders: orders.NewRepository(client.DB()),
		Sales:  salesRepo,
		Outbox: outboxSvc,
	})
	require.NoError(t, err)
	return svc
}

// staleDedupeRepo answers the duplicate pre-check as if no sale had been
// recorded yet, reproducing a delivery whose check ran before a concurrent
// delivery committed.
type staleDedupeRepo struct {
	sales.Repository
}

func (staleDedupeRepo) ExistsByPaymentID(context.Context, string) (bool, error) {
	return false, nil
}

func seedPendingOrder(t *testing.T, client *db.Client, totalCents int64) *models.Order {
	t.Helper()

	id := uuid.New()
	order := &models.Order{
		ID:            id,
		CustomerName:  "Thandi Nkosi",
		CustomerEmail: "thandi@example.com",
		Status:        enums.OrderStatusPending,
		TotalCents:    totalCents,
		Currency:      "ZAR",
		PaymentMethod: enums.PaymentMethodPayfast,
		LineItems: []models.OrderLineItem{{
			ID:             uuid.New(),
			OrderID:        id,
			ProductID:      "sku-1",
			Name:           "Rooibos Gift Box",
			UnitPriceCents: totalCents,
			Quantity:       1,
		}},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, client.DB().Create(order).Error)
	return order
}

func notificationFor(orderID uuid.UUID, paymentID, status string) *pfgateway.Notification {
	return &pfgateway.Notification{
		PaymentID:     paymentID,
		PaymentStatus: status,
		OrderID:       orderID,
		ItemName:      "Rooibos Gift Box",
		CustomerEmail: "thandi@example.com",
		GrossCents:    25000,
		FeeCents:      575,
		NetCents:      24425,
	}
}

func TestHandleNotificationCompletesOrderAndRecordsSale(t *testing.T) {
	client := setupDB(t)
	svc := setupService(t, client)
	order := seedPendingOrder(t, client, 25000)

	outcome, err := svc.HandleNotification(context.Background(), notificationFor(order.ID, "pf-100", pfgateway.PaymentStatusComplete))
	require.NoError(t, err)
	assert.Equal(t, "completed", outcome)

	var reloaded models.Order
	require.NoError(t, client.DB().First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.PayfastPaymentID)
	assert.Equal(t, "pf-100", *reloaded.PayfastPaymentID)
	require.NotNil(t, reloaded.AmountNetCents)
	assert.Equal(t, int64(24425), *reloaded.AmountNetCents)
	assert.NotNil(t, reloaded.CompletedAt)

	var sale models.Sale
	require.NoError(t, client.DB().First(&sale, "order_id = ?", order.ID).Error)
	assert.Equal(t, "pf-100", sale.PayfastPaymentID)
	assert.Equal(t, int64(25000), sale.GrossCents)
	assert.Equal(t, int64(575), sale.FeeCents)
	assert.Equal(t, int64(24425), sale.NetCents)
	assert.Equal(t, enums.SaleStatusRecorded, sale.Status)
	assert.NotEmpty(t, sale.Items)

	var events []models.OutboxEvent
	require.NoError(t, client.DB().Where("event_type = ?", enums.EventPaymentCompleted).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestHandleNotificationLedgerUsesNotificationAmounts(t *testing.T) {
	client := setupDB(t)
	svc := setupService(t, client)
	// The order total disagrees with what the gateway settled.
	order := seedPendingOrder(t, client, 99999)

	_, err := svc.HandleNotification(context.Background(), notificationFor(order.ID, "pf-101", pfgateway.PaymentStatusComplete))
	require.NoError(t, err)

	var sale models.Sale
	require.NoError(t, client.DB().First(&sale, "order_id = ?", order.ID).Error)
	assert.Equal(t, int64(25000), sale.GrossCents)
	assert.Equal(t, int64(24425), sale.NetCents)
}

func TestHandleNotificationReplayIsNoOp(t *testing.T) {
	client := setupDB(t)
	svc := setupService(t, client)
	order := seedPendingOrder(t, client, 25000)

	n := notificationFor(order.ID, "pf-102", pfgateway.PaymentStatusComplete)

	_, err := svc.HandleNotification(context.Background(), n)
	require.NoError(t, err)

	outcome, err := svc.HandleNotification(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "duplicate", outcome)

	var count int64
	require.NoError(t, client.DB().Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHandleNotificationFailedMarksOrderFailed(t *testing.T) {
	client := setupDB(t)
	svc := setupService(t, client)
	order := seedPendingOrder(t, client, 25000)

	outcome, err := svc.HandleNotification(context.Background(), notificationFor(order.ID, "pf-103", pfgateway.PaymentStatusFailed))
	require.NoError(t, err)
	assert.Equal(t, "failed", outcome)

	var reloaded models.Order
	require.NoError(t, client.DB().First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusFailed, reloaded.Status)

	var count int64
	require.NoError(t, client.DB().Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	var events []models.OutboxEvent
	require.NoError(t, client.DB().Where("event_type = ?", enums.EventPaymentFailed).Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestHandleNotificationCancelledMarksOrderCancelled(t *testing.T) {
	client := setupDB(t)
	svc := setupService(t, client)
	order := seedPendingOrder(t, client, 25000)

	outcome, err := svc.HandleNotification(context.Background(), notificationFor(order.ID, "pf-107", pfgateway.PaymentStatusCancelled))
	require.NoError(t, err)
	assert.Equal(t, "failed", outcome)

	var reloaded models.Order
	require.NoError(t, client.DB().First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCancelled, reloaded.Status)
}

func TestHandleNotificationInterleavedDeliveriesSingleWinner(t *testing.T) {
	client := setupDB(t)
	order := seedPendingOrder(t, client, 25000)

	first := setupService(t, client)
	second := setupServiceWithSales(t, client, staleDedupeRepo{sales.NewRepository(client.DB())})

	n := notificationFor(order.ID, "pf-200", pfgateway.PaymentStatusComplete)

	outcome, err := first.HandleNotification(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "completed", outcome)

	// The second delivery's duplicate check saw no sale; the conditional
	// status flip decides the race.
	outcome, err = second.HandleNotification(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, "duplicate", outcome)

	var reloaded models.Order
	require.NoError(t, client.DB().First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.PayfastPaymentID)
	assert.Equal(t, "pf-200", *reloaded.PayfastPaymentID)

	var count int64
	require.NoError(t, client.DB().Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHandleNotificationConcurrentLedgerInsertIsDuplicate(t *testing.T) {
	client := setupDB(t)
	orderA := seedPendingOrder(t, client, 25000)
	orderB := seedPendingOrder(t, client, 25000)

	first := setupService(t, client)
	second := setupServiceWithSales(t, client, staleDedupeRepo{sales.NewRepository(client.DB())})

	_, err := first.HandleNotification(context.Background(), notificationFor(orderA.ID, "pf-201", pfgateway.PaymentStatusComplete))
	require.NoError(t, err)

	// Same payment id, stale duplicate check: this delivery reaches the
	// ledger insert and the unique index classifies it.
	outcome, err := second.HandleNotification(context.Background(), notificationFor(orderB.ID, "pf-201", pfgateway.PaymentStatusComplete))
	require.NoError(t, err)
	assert.Equal(t, "duplicate", outcome)

	var count int64
	require.NoError(t, client.DB().Model(&models.Sale{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHandleNotificationUnknownOrderIsAcknowledged(t *testing.T) {
	client := setupDB(t)
	svc := setupService(t, client)

	outcome, err := svc.HandleNotification(context.Background(), notificationFor(uuid.New(), "pf-104", pfgateway.PaymentStatusComplete))
	require.NoError(t, err)
	assert.Equal(t, "unknown_order", outcome)
}

func TestHandleNotificationTerminalOrderIgnoresLateFailure(t *testing.T) {
	client := setupDB(t)
	svc := setupService(t, client)
	order := seedPendingOrder(t, client, 25000)

	_, err := svc.HandleNotification(context.Background(), notificationFor(order.ID, "pf-105", pfgateway.PaymentStatusComplete))
	require.NoError(t, err)

	outcome, err := svc.HandleNotification(context.Background(), notificationFor(order.ID, "pf-106", pfgateway.PaymentStatusCancelled))
	require.NoError(t, err)
	assert.Equal(t, "duplicate", outcome)

	var reloaded models.Order
	require.NoError(t, client.DB().First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusCompleted, reloaded.Status)
}

func TestIdempotencyGuardFailsOpenOnStoreError(t *testing.T) {
	guard, err := NewIdempotencyGuard(failingStore{}, time.Hour)
	require.NoError(t, err)

	ok, err := guard.CheckAndMark(context.Background(), "evt-1")
	assert.True(t, ok)
	assert.Error(t, err)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, assert.AnError
}

func (failingStore) SetNX(context.Context, string, string, time.Duration) (bool, error) {
	return false, assert.AnError
}

func (failingStore) Del(context.Context, string) error {
	return assert.AnError
}
