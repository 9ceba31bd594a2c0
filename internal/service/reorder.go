package service

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"signage/internal/errors"
	"signage/internal/model"
)

// RawOrderUpdate is one reorder entry exactly as a client sent it.
// Clients send ids as numbers or numeric strings; order must be a JSON integer.
type RawOrderUpdate struct {
	ID    json.RawMessage `json:"id" swaggertype:"integer"`
	Order json.RawMessage `json:"order" swaggertype:"integer"`
}

// ParseOrderUpdates validates a whole reorder batch before anything is written.
// Any malformed entry or a repeated id rejects the batch.
func ParseOrderUpdates(raw []RawOrderUpdate) ([]model.OrderUpdate, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no entries", errors.ErrInvalidBatch)
	}

	updates := make([]model.OrderUpdate, 0, len(raw))
	seen := make(map[uint]struct{}, len(raw))
	for i, entry := range raw {
		id, ok := parseEntryID(entry.ID)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: id must be a positive integer", errors.ErrInvalidBatch, i)
		}
		order, ok := parseEntryOrder(entry.Order)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: order must be an integer", errors.ErrInvalidBatch, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: entry %d: duplicate id %d", errors.ErrInvalidBatch, i, id)
		}
		seen[id] = struct{}{}
		updates = append(updates, model.OrderUpdate{ID: id, Order: order})
	}
	return updates, nil
}

func parseEntryID(raw json.RawMessage) (uint, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	id, err := strconv.ParseUint(string(raw), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseEntryOrder(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	n, err := strconv.ParseInt(string(raw), 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
