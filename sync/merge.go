// ABOUTME: Array merge-by-identity for snapshot downloads
// ABOUTME: Union-biased merge keyed on the stable "id" field of each element
package sync

import (
	"encoding/json"
	"fmt"
)

// MergeByID merges the incoming array into the local array by element
// identity. Starting from local: elements whose id appears in both are
// shallow-merged field by field with incoming winning per field; incoming
// elements with unknown ids are appended; elements present only locally are
// kept. Deletions are not representable: a remotely removed element
// reappears if the local copy still holds it.
func MergeByID(local, incoming json.RawMessage) (json.RawMessage, error) {
	localItems, err := decodeArray(local)
	if err != nil {
		return nil, fmt.Errorf("local value is not an array: %w", err)
	}
	incomingItems, err := decodeArray(incoming)
	if err != nil {
		return nil, fmt.Errorf("incoming value is not an array: %w", err)
	}

	incomingByID := make(map[string]map[string]any, len(incomingItems))
	for _, item := range incomingItems {
		if key, ok := idKey(item); ok {
			incomingByID[key] = item
		}
	}

	merged := make([]map[string]any, 0, len(localItems)+len(incomingItems))
	seen := make(map[string]bool, len(localItems))

	for _, item := range localItems {
		key, ok := idKey(item)
		if !ok {
			merged = append(merged, item)
			continue
		}
		seen[key] = true
		if upd, found := incomingByID[key]; found {
			merged = append(merged, mergeFields(item, upd))
		} else {
			merged = append(merged, item)
		}
	}

	for _, item := range incomingItems {
		key, ok := idKey(item)
		if !ok || !seen[key] {
			merged = append(merged, item)
		}
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged array: %w", err)
	}
	return out, nil
}

// decodeArray parses raw as a JSON array of objects. Absent or null values
// decode as an empty array.
func decodeArray(raw json.RawMessage) ([]map[string]any, error) {
	if emptyValue(raw) {
		return nil, nil
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// idKey returns a comparable key for an element's "id" field. Handles string
// and numeric ids; elements without an id cannot be matched and merge
// positionally (kept or appended as-is).
func idKey(item map[string]any) (string, bool) {
	id, ok := item["id"]
	if !ok || id == nil {
		return "", false
	}
	key, err := json.Marshal(id)
	if err != nil {
		return "", false
	}
	return string(key), true
}

// mergeFields shallow-merges incoming over base: old fields first, incoming
// wins per field.
func mergeFields(base, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(incoming))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}
