package payfast

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/hkb-commerce/storefront-backend/pkg/config"
)

// RedirectRequest carries the order data needed to build the signed gateway
// redirect.
type RedirectRequest struct {
	OrderID       uuid.UUID
	CustomerName  string
	CustomerEmail string
	TotalCents    int64
	ItemName      string
}

// BuildRedirectURL assembles the signed process URL the buyer is sent to.
// The order id travels in both m_payment_id and custom_str1 so the
// notification can be correlated back.
func BuildRedirectURL(cfg config.PayFastConfig, req RedirectRequest) string {
	fields := map[string]string{
		"merchant_id":   cfg.MerchantID,
		"merchant_key":  cfg.MerchantKey,
		"return_url":    cfg.ReturnURL,
		"cancel_url":    cfg.CancelURL,
		"notify_url":    cfg.NotifyURL,
		"name_first":    req.CustomerName,
		"email_address": req.CustomerEmail,
		"m_payment_id":  req.OrderID.String(),
		"amount":        FormatAmount(req.TotalCents),
		"item_name":     req.ItemName,
		"custom_str1":   req.OrderID.String(),
	}
	fields[SignatureField] = Sign(fields, cfg.Passphrase)

	q := url.Values{}
	for k, v := range fields {
		if v == "" {
			continue
		}
		q.Set(k, v)
	}
	return cfg.ProcessURL + "?" + q.Encode()
}
