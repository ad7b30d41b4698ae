package main

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hkb-commerce/storefront-backend/pkg/config"
	"github.com/hkb-commerce/storefront-backend/pkg/db/models"
	"github.com/hkb-commerce/storefront-backend/pkg/enums"
	"github.com/hkb-commerce/storefront-backend/pkg/outbox"
)

var publisherSchemaSeq int

func setupOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()

	publisherSchemaSeq++
	dsn := fmt.Sprintf("file:publisher%d?mode=memory&cache=shared", publisherSchemaSeq)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.Exec(`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		published_at DATETIME,
		created_at DATETIME
	)`).Error)

	return gdb
}

type fakeBroker struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (f *fakeBroker) Publish(_ context.Context, _ []byte, attributes map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, attributes["aggregate_id"])
	return uuid.NewString(), nil
}

func seedOutboxEvent(t *testing.T, gdb *gorm.DB) *models.OutboxEvent {
	t.Helper()

	event := &models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPaymentCompleted,
		AggregateType: enums.AggregateSale,
		AggregateID:   uuid.NewString(),
		Payload:       []byte(`{"version":1}`),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, gdb.Create(event).Error)
	return event
}

func testOutboxConfig() config.OutboxConfig {
	return config.OutboxConfig{
		PollInterval: time.Second,
		BatchSize:    10,
		MaxAttempts:  3,
	}
}

func TestDrainOncePublishesAndMarks(t *testing.T) {
	gdb := setupOutboxDB(t)
	broker := &fakeBroker{}
	svc, err := newPublisherService(outbox.NewRepository(gdb), broker, testOutboxConfig())
	require.NoError(t, err)

	event := seedOutboxEvent(t, gdb)

	published, err := svc.drainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	assert.Equal(t, []string{event.AggregateID}, broker.published)

	var reloaded models.OutboxEvent
	require.NoError(t, gdb.First(&reloaded, "id = ?", event.ID).Error)
	assert.NotNil(t, reloaded.PublishedAt)
}

func TestDrainOnceRecordsFailures(t *testing.T) {
	gdb := setupOutboxDB(t)
	broker := &fakeBroker{err: assert.AnError}
	svc, err := newPublisherService(outbox.NewRepository(gdb), broker, testOutboxConfig())
	require.NoError(t, err)

	event := seedOutboxEvent(t, gdb)

	published, err := svc.drainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, published)

	var reloaded models.OutboxEvent
	require.NoError(t, gdb.First(&reloaded, "id = ?", event.ID).Error)
	assert.Equal(t, 1, reloaded.Attempts)
	assert.Nil(t, reloaded.PublishedAt)
	require.NotNil(t, reloaded.LastError)
}

func TestDrainOnceSkipsExhaustedEvents(t *testing.T) {
	gdb := setupOutboxDB(t)
	broker := &fakeBroker{}
	svc, err := newPublisherService(outbox.NewRepository(gdb), broker, testOutboxConfig())
	require.NoError(t, err)

	event := seedOutboxEvent(t, gdb)
	require.NoError(t, gdb.Model(event).Update("attempts", 3).Error)

	published, err := svc.drainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, published)
	assert.Empty(t, broker.published)
}

func TestJitterStaysNearBase(t *testing.T) {
	base := 5 * time.Second
	for i := 0; i < 100; i++ {
		d := jitter(base)
		assert.GreaterOrEqual(t, d, base-base/10)
		assert.LessOrEqual(t, d, base+base/10)
	}
}
