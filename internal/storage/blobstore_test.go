package storage

import (
	"bytes"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	payload := []byte(`[{"id":"1","day":"2013-05-01"}]`)

	packed, err := compress(payload)
	if err != nil {
		t.Fatalf("compress returned error: %v", err)
	}
	if bytes.Equal(packed, payload) {
		t.Fatalf("expected compressed bytes to differ from input")
	}
	if !bytes.HasPrefix(packed, gzipMagic) {
		t.Fatalf("expected gzip framing on compressed output")
	}

	out, err := decompress(packed)
	if err != nil {
		t.Fatalf("decompress returned error: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("round trip mismatch: got %s", out)
	}
}

func TestDecompressPassesThroughPlainBytes(t *testing.T) {
	payload := []byte(`{"days":{"2013-05-01":3}}`)

	out, err := decompress(payload)
	if err != nil {
		t.Fatalf("decompress returned error: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("expected uncompressed object returned verbatim, got %s", out)
	}
}

func TestDecompressEmptyInput(t *testing.T) {
	out, err := decompress(nil)
	if err != nil {
		t.Fatalf("decompress returned error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %d bytes", len(out))
	}
}

func TestDecompressTruncatedStream(t *testing.T) {
	packed, err := compress([]byte("a long enough payload to truncate meaningfully"))
	if err != nil {
		t.Fatalf("compress returned error: %v", err)
	}

	if _, err := decompress(packed[:len(packed)-4]); err == nil {
		t.Fatalf("expected truncated gzip stream to fail")
	}
}
