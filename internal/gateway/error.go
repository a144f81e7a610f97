package gateway

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

type Category string

const (
	CategoryTimeout     Category = "timeout"
	CategoryUnreachable Category = "unreachable"
	CategoryRejected    Category = "rejected"
	// CategoryMalformed is a 2xx answer whose body could not be decoded.
	CategoryMalformed Category = "malformed"
)

// Sentinels for errors.Is; they match any *Error of the same category.
var (
	ErrTimeout     = &Error{Category: CategoryTimeout}
	ErrUnreachable = &Error{Category: CategoryUnreachable}
	ErrRejected    = &Error{Category: CategoryRejected}
	ErrMalformed   = &Error{Category: CategoryMalformed}
)

var ErrInvalidRequest = errors.New("invalid gateway request")

// Error is every failure reported by the gateway or the network path to it.
type Error struct {
	Category    Category
	Operation   string
	Message     string
	StatusCode  int
	RespCode    string
	RespMsg     string
	RawResponse []byte
	Err         error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("gateway %s", e.Category)
	if e.Operation != "" {
		msg += " (" + e.Operation + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": http %d", e.StatusCode)
	}
	if e.RespCode != "" {
		msg += fmt.Sprintf(": %s %s", e.RespCode, e.RespMsg)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Category == e.Category
}

func newRejected(op string, status int, body []byte) *Error {
	e := &Error{
		Category:    CategoryRejected,
		Operation:   op,
		StatusCode:  status,
		RawResponse: body,
	}
	if gjson.ValidBytes(body) {
		res := gjson.GetManyBytes(body, "respCode", "respMsg")
		e.RespCode = res[0].String()
		e.RespMsg = res[1].String()
	}
	return e
}
