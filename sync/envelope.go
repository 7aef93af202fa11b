// ABOUTME: SyncEnvelope wire format for the snapshot backend
// ABOUTME: Raw-JSON sub-collections so the payload round-trips byte-for-byte
package sync

import (
	"encoding/json"
	"fmt"
)

// EnvelopeVersion is the wire format version written by this build.
const EnvelopeVersion = "1.0"

// Envelope is the unit exchanged with the snapshot backend: a timestamped
// whole copy of the snapshot-synced collections.
type Envelope struct {
	Timestamp int64        `json:"timestamp"` // epoch-ms
	Version   string       `json:"version"`
	Data      EnvelopeData `json:"data"`
}

// EnvelopeData holds the sub-collections. Values stay raw so unknown fields
// written by newer builds survive a download/upload cycle unchanged.
type EnvelopeData struct {
	Clients           json.RawMessage `json:"clients"`
	RateSheets        json.RawMessage `json:"rateSheets"`
	ApprovedReportIDs json.RawMessage `json:"approvedReportIds"`
}

// ParseEnvelope decodes and shape-validates a remote envelope. A payload
// missing timestamp or data fails with ErrMalformedData.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var probe struct {
		Timestamp *int64           `json:"timestamp"`
		Version   string           `json:"version"`
		Data      *json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if probe.Timestamp == nil || probe.Data == nil {
		return nil, fmt.Errorf("%w: missing timestamp or data", ErrMalformedData)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return &env, nil
}

// Encode serializes the envelope for upload.
func (e *Envelope) Encode() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return raw, nil
}
