package webhooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pfwebhook "github.com/hkb-commerce/storefront-backend/internal/webhooks/payfast"
	"github.com/hkb-commerce/storefront-backend/pkg/config"
	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	pfgateway "github.com/hkb-commerce/storefront-backend/pkg/payfast"
)

const testPassphrase = "test-passphrase"

type fakeHandler struct {
	mu      sync.Mutex
	calls   int
	lastN   *pfgateway.Notification
	outcome string
	err     error
}

func (f *fakeHandler) HandleNotification(_ context.Context, n *pfgateway.Notification) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastN = n
	if f.err != nil {
		return "error", f.err
	}
	return f.outcome, nil
}

func (f *fakeHandler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: map[string]string{}}
}

func (s *inMemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	return val, ok, nil
}

func (s *inMemoryStore) SetNX(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = value
	return true, nil
}

func (s *inMemoryStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func setupController(t *testing.T, handler *fakeHandler) *PayFastController {
	t.Helper()

	guard, err := pfwebhook.NewIdempotencyGuard(newInMemoryStore(), time.Hour)
	require.NoError(t, err)

	return NewPayFastController(handler, guard, config.PayFastConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  testPassphrase,
	}, nil)
}

func signedBody(t *testing.T, paymentID string) string {
	t.Helper()

	fields := map[string]string{
		"m_payment_id":   uuid.NewString(),
		"pf_payment_id":  paymentID,
		"payment_status": "COMPLETE",
		"item_name":      "Rooibos Gift Box",
		"amount_gross":   "250.00",
		"amount_fee":     "-5.75",
		"amount_net":     "244.25",
		"custom_str1":    uuid.NewString(),
		"email_address":  "thandi@example.com",
	}
	fields[pfgateway.SignatureField] = pfgateway.Sign(fields, testPassphrase)

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	return values.Encode()
}

func postNotification(ctrl *PayFastController, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payfast", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ctrl.Notify(rec, req)
	return rec
}

func TestNotifyProcessesValidNotification(t *testing.T) {
	handler := &fakeHandler{outcome: "completed"}
	ctrl := setupController(t, handler)

	rec := postNotification(ctrl, signedBody(t, "pf-200"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, handler.callCount())
	assert.Equal(t, "pf-200", handler.lastN.PaymentID)
	assert.Equal(t, int64(25000), handler.lastN.GrossCents)
}

func TestNotifyAcknowledgesInvalidSignatureWithoutProcessing(t *testing.T) {
	handler := &fakeHandler{outcome: "completed"}
	ctrl := setupController(t, handler)

	body := signedBody(t, "pf-201")
	tampered := strings.Replace(body, "amount_gross=250.00", "amount_gross=1.00", 1)

	rec := postNotification(ctrl, tampered)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, handler.callCount())
}

func TestNotifyAcknowledgesMalformedBodyWithoutProcessing(t *testing.T) {
	handler := &fakeHandler{outcome: "completed"}
	ctrl := setupController(t, handler)

	rec := postNotification(ctrl, "payment_status=COMPLETE")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, handler.callCount())
}

func TestNotifyDuplicateDeliveryProcessesOnce(t *testing.T) {
	handler := &fakeHandler{outcome: "completed"}
	ctrl := setupController(t, handler)
	body := signedBody(t, "pf-202")

	first := postNotification(ctrl, body)
	second := postNotification(ctrl, body)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, handler.callCount())
}

func TestNotifyStoreFailureReturnsRetryableAndReleasesGuard(t *testing.T) {
	handler := &fakeHandler{err: pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")}
	ctrl := setupController(t, handler)
	body := signedBody(t, "pf-203")

	rec := postNotification(ctrl, body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, 1, handler.callCount())

	// The gateway retries; the marker was released so the retry processes.
	handler.mu.Lock()
	handler.err = nil
	handler.outcome = "completed"
	handler.mu.Unlock()

	retry := postNotification(ctrl, body)
	assert.Equal(t, http.StatusOK, retry.Code)
	assert.Equal(t, 2, handler.callCount())
}
