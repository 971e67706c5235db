package drain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// RecordKind classifies an incoming record once, at the boundary, so the
// rest of the pipeline never probes loose JSON fields.
type RecordKind int

const (
	// KindMalformed covers null records, unknown types, and data records
	// missing a usable payload. They are skipped, never fatal.
	KindMalformed RecordKind = iota
	// KindData is a well-formed activity record eligible for normalization.
	KindData
	// KindError is a terminal error report from the upstream source.
	KindError
	// KindStop is a stop signal from the upstream source.
	KindStop
)

// Record is the decoded form of one element of an ingest batch.
type Record struct {
	Kind         RecordKind
	EntryID      string
	Category     string
	CreatedAt    time.Time
	DataType     string
	URL          string
	ThumbnailURL string
	RawEnvelope  json.RawMessage // the record's "raw" field, kept as the entry payload
	Raw          json.RawMessage // the whole record as received, reported verbatim for error/stop
}

type rawRecord struct {
	Type     string          `json:"type"`
	EntryID  json.RawMessage `json:"entry_id"`
	Category string          `json:"category"`
	Raw      json.RawMessage `json:"raw"`
	Data     *rawRecordData  `json:"data"`
}

type rawRecordData struct {
	Type         string          `json:"type"`
	CreatedAt    json.RawMessage `json:"created_at"`
	URL          string          `json:"url"`
	ThumbnailURL string          `json:"thumbnail_url"`
}

// UnmarshalJSON decodes one batch element into the closed Record variant
// set. Decode problems inside a single record downgrade it to KindMalformed
// rather than failing the batch.
func (r *Record) UnmarshalJSON(data []byte) error {
	*r = Record{Raw: append(json.RawMessage(nil), data...)}

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	switch raw.Type {
	case "error":
		r.Kind = KindError
		return nil
	case "stop":
		r.Kind = KindStop
		return nil
	case "data":
	default:
		return nil
	}

	if raw.Data == nil || len(raw.Data.CreatedAt) == 0 {
		return nil
	}
	createdAt, ok := parseCreatedAt(raw.Data.CreatedAt)
	if !ok {
		return nil
	}

	r.Kind = KindData
	r.EntryID = stringifyID(raw.EntryID)
	r.Category = raw.Category
	r.CreatedAt = createdAt
	r.DataType = raw.Data.Type
	r.URL = raw.Data.URL
	r.ThumbnailURL = raw.Data.ThumbnailURL
	r.RawEnvelope = raw.Raw
	return nil
}

// parseCreatedAt accepts the timestamp shapes sources actually send: epoch
// milliseconds as a JSON number, or a textual timestamp (RFC 3339 or the
// twitter-style ruby date).
func parseCreatedAt(raw json.RawMessage) (time.Time, bool) {
	var millis float64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return time.UnixMilli(int64(millis)).UTC(), true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RubyDate} {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// stringifyID flattens an entry_id of any JSON scalar type into its string
// form, matching how ids were historically written.
func stringifyID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return trimmed
}
