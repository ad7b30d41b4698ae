package payfast

import (
	"net/url"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
)

// Gateway payment statuses as sent in the notification body.
const (
	PaymentStatusComplete  = "COMPLETE"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusCancelled = "CANCELLED"
)

// Notification is a parsed instant payment notification. Amounts are kept in
// integer cents; the raw form fields are retained for signature checks and
// the ledger item copy.
type Notification struct {
	PaymentID     string
	PaymentStatus string
	OrderID       uuid.UUID
	ItemName      string
	CustomerEmail string
	MerchantID    string

	GrossCents int64
	FeeCents   int64
	NetCents   int64

	Fields map[string]string
}

// ParseNotification decodes an IPN form body. The order id rides in
// custom_str1; amounts are decimal strings converted to cents. The fee is
// reported negative by the gateway and stored as its magnitude.
func ParseNotification(body []byte) (*Notification, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "parse notification body")
	}

	fields := make(map[string]string, len(values))
	for k := range values {
		fields[k] = values.Get(k)
	}

	n := &Notification{
		PaymentID:     fields["pf_payment_id"],
		PaymentStatus: fields["payment_status"],
		ItemName:      fields["item_name"],
		CustomerEmail: fields["email_address"],
		MerchantID:    fields["merchant_id"],
		Fields:        fields,
	}

	if n.PaymentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification missing pf_payment_id")
	}
	if n.PaymentStatus == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification missing payment_status")
	}

	orderID, err := uuid.Parse(fields["custom_str1"])
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "notification custom_str1 is not an order id")
	}
	n.OrderID = orderID

	if n.GrossCents, err = amountCents(fields["amount_gross"]); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "notification amount_gross")
	}
	if n.FeeCents, err = amountCents(fields["amount_fee"]); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "notification amount_fee")
	}
	if n.FeeCents < 0 {
		n.FeeCents = -n.FeeCents
	}
	if n.NetCents, err = amountCents(fields["amount_net"]); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeValidation, "notification amount_net")
	}

	return n, nil
}

// IsComplete reports whether the gateway confirmed the payment.
func (n *Notification) IsComplete() bool {
	return n.PaymentStatus == PaymentStatusComplete
}

func amountCents(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// FormatAmount renders cents as the two-decimal string the gateway expects.
func FormatAmount(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
