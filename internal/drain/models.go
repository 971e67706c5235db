package drain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is one normalized activity record, stored as part of a day bucket.
// The JSON shape is the persisted wire format and must stay stable across
// ingests, since stored entries are re-read and re-validated on every merge.
type Entry struct {
	ID             string          `json:"id"`
	CreatedAt      time.Time       `json:"at"`
	Day            string          `json:"day"`
	Service        string          `json:"service"`
	User           string          `json:"user"`
	Category       string          `json:"category,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	ImageThumbnail string          `json:"image_thumbnail,omitempty"`
	Reference      string          `json:"idr"`
}

// UserIndex summarizes everything stored for one service/user pair: entry
// counts per day, the time of the last successful ingest, and the last
// error or stop record the source reported, verbatim.
type UserIndex struct {
	Days   map[string]int  `json:"days"`
	Synced time.Time       `json:"synced"`
	Error  json.RawMessage `json:"error,omitempty"`
}

func dayKey(service, user, day string) string {
	return fmt.Sprintf("%s/%s/%s.json", service, user, day)
}

func indexKey(service, user string) string {
	return fmt.Sprintf("%s/%s/index.json", service, user)
}
