package order

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// StatusPending is assigned to orders that arrive without a status.
const StatusPending = "pending"

// Order represents a storefront order. The four fields the service cares
// about are typed; everything else the caller sent is kept in Extra and
// written back untouched.
type Order struct {
	ID       string
	Status   string
	FullName string
	Phone    string
	Extra    map[string]json.RawMessage
}

// ParseOrder decodes a request body. The body may be a JSON object or a JSON
// string holding an encoded object. Empty bodies and JSON values that are not
// objects decode as an empty order.
func ParseOrder(body []byte) (Order, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Order{}, nil
	}
	if !json.Valid(body) {
		return Order{}, ErrInvalidJSON
	}
	if body[0] == '"' {
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return Order{}, ErrInvalidJSON
		}
		body = bytes.TrimSpace([]byte(s))
		if !json.Valid(body) {
			return Order{}, ErrInvalidJSON
		}
	}
	if body[0] != '{' {
		return Order{}, nil
	}

	var o Order
	if err := json.Unmarshal(body, &o); err != nil {
		return Order{}, ErrInvalidJSON
	}
	return o, nil
}

// Validate requires a truthy fullName or a truthy phone. Either one is enough.
func (o Order) Validate() error {
	if o.has("fullName", o.FullName) || o.has("phone", o.Phone) {
		return nil
	}
	return ErrMissingContact
}

// Normalize fills in id and status when the caller left them falsy.
func (o *Order) Normalize(now time.Time) {
	if !o.has("id", o.ID) {
		o.ID = NewID(now)
		delete(o.Extra, "id")
	}
	if !o.has("status", o.Status) {
		o.Status = StatusPending
		delete(o.Extra, "status")
	}
}

// NewID returns an order id derived from the given instant in milliseconds.
func NewID(now time.Time) string {
	return "ord-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// Identifier returns the order id as text, including ids the caller sent as
// non-string JSON values.
func (o Order) Identifier() string {
	if o.ID != "" {
		return o.ID
	}
	raw, ok := o.Extra["id"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// IDJSON returns the order id encoded exactly as it will be stored.
func (o Order) IDJSON() json.RawMessage {
	if o.ID == "" {
		if raw, ok := o.Extra["id"]; ok {
			return raw
		}
	}
	raw, _ := marshalJSON(o.ID)
	return raw
}

// CommitMessage is the document store change description for o.
func CommitMessage(o Order) string {
	return "Add order " + o.Identifier()
}

func (o Order) has(key, value string) bool {
	return value != "" || truthy(o.Extra[key])
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Order) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*o = Order{}
	for key, raw := range fields {
		if field := o.field(key); field != nil && isString(raw) {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				*field = s
				continue
			}
		}
		if o.Extra == nil {
			o.Extra = make(map[string]json.RawMessage)
		}
		o.Extra[key] = raw
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Order) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(o.Extra)+4)
	for k, v := range o.Extra {
		fields[k] = v
	}
	for key, value := range map[string]string{
		"id":       o.ID,
		"status":   o.Status,
		"fullName": o.FullName,
		"phone":    o.Phone,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return marshalJSON(fields)
}

func (o *Order) field(key string) *string {
	switch key {
	case "id":
		return &o.ID
	case "status":
		return &o.Status
	case "fullName":
		return &o.FullName
	case "phone":
		return &o.Phone
	}
	return nil
}

func isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

// truthy follows JavaScript truthiness for a decoded JSON value: null, false,
// zero and the empty string are falsy, everything else is truthy.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '{', '[':
		return true
	case '"':
		var s string
		return json.Unmarshal(raw, &s) == nil && s != ""
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	return err == nil && f != 0
}

// marshalJSON encodes v without HTML escaping so stored text matches what
// the caller sent.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
