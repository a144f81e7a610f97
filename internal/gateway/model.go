package gateway

import (
	"encoding/json"
	"fmt"

	"vbank-adapter/internal/signature"

	"github.com/shopspring/decimal"
)

// Version is sent with every request as part of the signed parameter set.
const Version = "V1.1"

// SuccessCode is the respCode the gateway uses for a successful call.
const SuccessCode = "00000000"

const (
	DefaultPageIndex = 1
	DefaultPageSize  = 50
)

type IdentityType string

const (
	IdentityPersonal    IdentityType = "personal"
	IdentityPersonalNIN IdentityType = "personal_nin"
	IdentityCompany     IdentityType = "company"
)

func (t IdentityType) valid() bool {
	switch t {
	case IdentityPersonal, IdentityPersonalNIN, IdentityCompany:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountEnabled  AccountStatus = "Enabled"
	AccountDisabled AccountStatus = "Disabled"
)

// Response is the gateway envelope, returned verbatim on HTTP 2xx.
type Response[T any] struct {
	RespCode string          `json:"respCode"`
	RespMsg  string          `json:"respMsg"`
	Data     T               `json:"data"`
	Raw      json.RawMessage `json:"-"`
}

func (r *Response[T]) Succeeded() bool {
	return r.RespCode == SuccessCode
}

// ----------------- Requests -----------------

type CreateVirtualAccountRequest struct {
	VirtualAccountName string
	IdentityType       IdentityType
	LicenseNumber      string
	CustomerName       string
	Email              string
	AccountReference   string
}

func (r CreateVirtualAccountRequest) params() (signature.Params, error) {
	if err := required(
		"virtualAccountName", r.VirtualAccountName,
		"licenseNumber", r.LicenseNumber,
		"customerName", r.CustomerName,
	); err != nil {
		return nil, err
	}
	if !r.IdentityType.valid() {
		return nil, fmt.Errorf("%w: identityType %q", ErrInvalidRequest, r.IdentityType)
	}

	p := signature.Params{
		"virtualAccountName": r.VirtualAccountName,
		"identityType":       string(r.IdentityType),
		"licenseNumber":      r.LicenseNumber,
		"customerName":       r.CustomerName,
	}
	optional(p, "email", r.Email)
	optional(p, "accountReference", r.AccountReference)
	return p, nil
}

type UpdateVirtualAccountStatusRequest struct {
	VirtualAccountNo string
	Status           AccountStatus
}

func (r UpdateVirtualAccountStatusRequest) params() (signature.Params, error) {
	if err := required("virtualAccountNo", r.VirtualAccountNo); err != nil {
		return nil, err
	}
	if r.Status != AccountEnabled && r.Status != AccountDisabled {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidRequest, r.Status)
	}
	return signature.Params{
		"virtualAccountNo": r.VirtualAccountNo,
		"status":           string(r.Status),
	}, nil
}

type DeleteVirtualAccountRequest struct {
	VirtualAccountNo string
}

func (r DeleteVirtualAccountRequest) params() (signature.Params, error) {
	if err := required("virtualAccountNo", r.VirtualAccountNo); err != nil {
		return nil, err
	}
	return signature.Params{"virtualAccountNo": r.VirtualAccountNo}, nil
}

type QueryVirtualAccountRequest struct {
	VirtualAccountNo string
}

func (r QueryVirtualAccountRequest) params() (signature.Params, error) {
	if err := required("virtualAccountNo", r.VirtualAccountNo); err != nil {
		return nil, err
	}
	return signature.Params{"virtualAccountNo": r.VirtualAccountNo}, nil
}

type QueryOrderRequest struct {
	OrderNo string
}

func (r QueryOrderRequest) params() (signature.Params, error) {
	if err := required("orderNo", r.OrderNo); err != nil {
		return nil, err
	}
	return signature.Params{"orderNo": r.OrderNo}, nil
}

// QueryOrdersRequest selects one page of orders created in [StartTime, EndTime],
// both epoch milliseconds. PageIndex is 1-based.
type QueryOrdersRequest struct {
	StartTime        int64
	EndTime          int64
	VirtualAccountNo string
	PageIndex        int
	PageSize         int
}

func (r QueryOrdersRequest) params() (signature.Params, error) {
	if r.StartTime <= 0 || r.EndTime <= 0 {
		return nil, fmt.Errorf("%w: startTime and endTime are required", ErrInvalidRequest)
	}
	if r.EndTime < r.StartTime {
		return nil, fmt.Errorf("%w: endTime before startTime", ErrInvalidRequest)
	}
	if r.PageIndex < 0 || r.PageSize < 0 {
		return nil, fmt.Errorf("%w: negative page", ErrInvalidRequest)
	}

	pageIndex, pageSize := r.PageIndex, r.PageSize
	if pageIndex == 0 {
		pageIndex = DefaultPageIndex
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	p := signature.Params{
		"startTime": r.StartTime,
		"endTime":   r.EndTime,
		"pageIndex": pageIndex,
		"pageSize":  pageSize,
	}
	optional(p, "virtualAccountNo", r.VirtualAccountNo)
	return p, nil
}

// required takes name, value pairs and reports the first empty value in
// argument order.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRequest, pairs[i])
		}
	}
	return nil
}

// optional sets k only when v is present; absent fields are never sent as "".
func optional(p signature.Params, k, v string) {
	if v != "" {
		p[k] = v
	}
}

// ----------------- Responses -----------------

type VirtualAccount struct {
	VirtualAccountNo   string       `json:"virtualAccountNo"`
	VirtualAccountName string       `json:"virtualAccountName"`
	Status             string       `json:"status"`
	IdentityType       IdentityType `json:"identityType"`
	LicenseNumber      string       `json:"licenseNumber"`
	CustomerName       string       `json:"customerName"`
	Email              string       `json:"email,omitempty"`
	AccountReference   string       `json:"accountReference,omitempty"`
	CreatedTime        int64        `json:"createdTime,omitempty"`
}

type Order struct {
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
	UpdateTime       int64           `json:"updateTime,omitempty"`
}

type OrderPage struct {
	Total     int     `json:"total"`
	PageIndex int     `json:"pageIndex"`
	PageSize  int     `json:"pageSize"`
	List      []Order `json:"list"`
}
