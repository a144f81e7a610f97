package webhook

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentNotification is the typed view of a verified payment notification.
type PaymentNotification struct {
	OrderNo          string          `json:"orderNo"`
	VirtualAccountNo string          `json:"virtualAccountNo"`
	AccountReference string          `json:"accountReference,omitempty"`
	OrderAmount      decimal.Decimal `json:"orderAmount"`
	Currency         string          `json:"currency"`
	OrderStatus      int             `json:"orderStatus"`
	PayerAccountNo   string          `json:"payerAccountNo,omitempty"`
	PayerAccountName string          `json:"payerAccountName,omitempty"`
	PayerBankName    string          `json:"payerBankName,omitempty"`
	Reference        string          `json:"reference,omitempty"`
	CreatedTime      int64           `json:"createdTime"`

	Raw json.RawMessage `json:"-"`
}

func (p *PaymentNotification) Created() time.Time {
	return time.UnixMilli(p.CreatedTime)
}
