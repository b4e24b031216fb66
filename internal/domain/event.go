package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// LocalityRequest is the JSON body of a source message and of the HTTP
// georef endpoint.
type LocalityRequest struct {
	ID       string `json:"id,omitempty"`
	Location string `json:"location"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ParseLocalityRequest decodes a source message. A request without an id
// takes the message key, or failing that an id derived from the location.
func ParseLocalityRequest(raw RawEvent) (LocalityRequest, error) {
	var req LocalityRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return LocalityRequest{}, fmt.Errorf("parse locality request: %w", err)
	}
	if strings.TrimSpace(req.Location) == "" {
		return LocalityRequest{}, fmt.Errorf("parse locality request: %w", ErrEmptyLocation)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	if req.ID == "" {
		req.ID = RequestID(req.Location)
	}
	return req, nil
}

// RequestID derives a deterministic id from a location so that replays of
// the same request produce the same output key.
func RequestID(location string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(location)))
	return "loc-" + hex.EncodeToString(hash[:8])
}

// SerializeResult encodes a result for the sink topic, keyed by request id.
func SerializeResult(r GeorefResult) (OutputEvent, error) {
	value, err := json.Marshal(r)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize result %q: %w", r.ID, err)
	}
	return OutputEvent{
		Key:   []byte(r.ID),
		Value: value,
		Headers: map[string]string{
			"status":       r.Status,
			"processed_at": r.ProcessedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
