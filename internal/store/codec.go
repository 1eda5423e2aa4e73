package store

import (
	"encoding/json"
	"fmt"

	"github.com/BIHBOB/ssiteJungle/internal/models"
)

// JSON columns (product images/labels, order line items) are encoded and
// decoded here and nowhere else. Handlers only ever see typed values.

func marshalStrings(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func unmarshalStrings(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var v []string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return []string{}
	}
	return v
}

func marshalItems(items []models.OrderItem) (string, error) {
	if items == nil {
		items = []models.OrderItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode order items: %w", err)
	}
	return string(b), nil
}

func unmarshalItems(raw string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	return items, nil
}
