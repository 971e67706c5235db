package drain

import (
	"net/url"
	"time"
)

// normalizeEntry converts a decoded data record into its canonical stored
// form. It is a pure transform; the caller has already filtered out
// anything that is not a usable data record.
func normalizeEntry(rec Record, service, user string) Entry {
	entry := Entry{
		ID:        rec.EntryID,
		CreatedAt: rec.CreatedAt,
		Day:       utcDay(rec.CreatedAt),
		Service:   service,
		User:      user,
		Category:  rec.Category,
		Data:      rec.RawEnvelope,
	}

	if rec.DataType == "photo" {
		entry.ImageURL = rec.URL
		entry.ImageThumbnail = rec.ThumbnailURL
	}

	entry.Reference = buildReference(rec.DataType, service, user, rec.Category, entry.ID)
	return entry
}

// buildReference composes the canonical address of an entry:
// {source-type}://{user}@{service}/{category}#{id}.
func buildReference(sourceType, service, user, category, id string) string {
	ref := url.URL{
		Scheme:   sourceType,
		User:     url.User(user),
		Host:     service,
		Path:     "/" + category,
		Fragment: id,
	}
	return ref.String()
}

// utcDay derives the calendar-day bucket key for an instant. Write path and
// revalidation path must agree on this, so both go through here.
func utcDay(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

// dayOK re-validates a previously stored entry against its own timestamp.
// Entries without a day field predate the normalizer and are presumed
// valid; anything else whose recomputed day drifted away from what was
// written is silently dropped from the bucket during the next merge.
func dayOK(entry Entry) bool {
	if entry.Day == "" {
		return true
	}
	return utcDay(entry.CreatedAt) == entry.Day
}
