package drain

import (
	"testing"
	"time"
)

func TestNormalizeEntryDerivesUTCDay(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	createdAt := time.Date(2013, 4, 30, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))

	entry := normalizeEntry(Record{
		Kind:      KindData,
		EntryID:   "42",
		Category:  "statuses",
		CreatedAt: createdAt,
		DataType:  "tweet",
	}, "twitter", "alice")

	if entry.Day != "2013-05-01" {
		t.Fatalf("expected day 2013-05-01, got %s", entry.Day)
	}
	if !entry.CreatedAt.Equal(createdAt) {
		t.Fatalf("createdAt changed during normalization")
	}
}

func TestNormalizeEntryBuildsReference(t *testing.T) {
	entry := normalizeEntry(Record{
		Kind:      KindData,
		EntryID:   "9001",
		Category:  "checkins",
		CreatedAt: time.Date(2013, 5, 1, 12, 0, 0, 0, time.UTC),
		DataType:  "checkin",
	}, "foursquare", "bob")

	want := "checkin://bob@foursquare/checkins#9001"
	if entry.Reference != want {
		t.Fatalf("expected reference %s, got %s", want, entry.Reference)
	}
}

func TestNormalizeEntryCopiesPhotoURLs(t *testing.T) {
	entry := normalizeEntry(Record{
		Kind:         KindData,
		EntryID:      "7",
		CreatedAt:    time.Date(2013, 5, 1, 12, 0, 0, 0, time.UTC),
		DataType:     "photo",
		URL:          "http://img.example.com/full.jpg",
		ThumbnailURL: "http://img.example.com/thumb.jpg",
	}, "instagram", "carol")

	if entry.ImageURL != "http://img.example.com/full.jpg" {
		t.Fatalf("unexpected image url: %s", entry.ImageURL)
	}
	if entry.ImageThumbnail != "http://img.example.com/thumb.jpg" {
		t.Fatalf("unexpected thumbnail: %s", entry.ImageThumbnail)
	}
}

func TestNormalizeEntryNonPhotoLeavesImagesEmpty(t *testing.T) {
	entry := normalizeEntry(Record{
		Kind:      KindData,
		EntryID:   "8",
		CreatedAt: time.Date(2013, 5, 1, 12, 0, 0, 0, time.UTC),
		DataType:  "tweet",
		URL:       "http://example.com/status/8",
	}, "twitter", "dave")

	if entry.ImageURL != "" || entry.ImageThumbnail != "" {
		t.Fatalf("expected no image fields for non-photo entry")
	}
}

func TestDayOK(t *testing.T) {
	valid := Entry{
		Day:       "2013-05-01",
		CreatedAt: time.Date(2013, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	if !dayOK(valid) {
		t.Fatalf("expected matching entry to pass revalidation")
	}

	misfiled := Entry{
		Day:       "2013-05-01",
		CreatedAt: time.Date(2013, 5, 2, 8, 0, 0, 0, time.UTC),
	}
	if dayOK(misfiled) {
		t.Fatalf("expected misfiled entry to fail revalidation")
	}

	// Entries written before the day field existed are presumed valid.
	legacy := Entry{CreatedAt: time.Date(2013, 5, 2, 8, 0, 0, 0, time.UTC)}
	if !dayOK(legacy) {
		t.Fatalf("expected legacy entry without day to pass revalidation")
	}
}
