package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// EmptyDocument is the content used to seed a fresh store.
var EmptyDocument = []byte("{\n  \"orders\": []\n}")

// Document is the stored JSON object. Orders is newest first. Top-level
// fields other than orders are kept in Extra.
type Document struct {
	Orders []json.RawMessage
	Extra  map[string]json.RawMessage
}

// DecodeDocument parses stored content. A missing or non-array orders field
// decodes as an empty list.
func DecodeDocument(content []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(content, &fields); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if fields == nil {
		return nil, errors.New("parse document: not a JSON object")
	}

	doc := &Document{Extra: fields}
	if raw, ok := fields["orders"]; ok {
		delete(doc.Extra, "orders")
		var orders []json.RawMessage
		if err := json.Unmarshal(raw, &orders); err == nil {
			doc.Orders = orders
		}
	}
	return doc, nil
}

// Prepend puts o at the head of the order list.
func (d *Document) Prepend(o Order) error {
	raw, err := marshalJSON(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	d.Orders = append([]json.RawMessage{raw}, d.Orders...)
	return nil
}

// EncodeDocument serializes d with a two space indent.
func EncodeDocument(d *Document) ([]byte, error) {
	fields := make(map[string]any, len(d.Extra)+1)
	for k, v := range d.Extra {
		fields[k] = v
	}
	orders := d.Orders
	if orders == nil {
		orders = []json.RawMessage{}
	}
	fields["orders"] = orders

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fields); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
