package drain

import "errors"

var (
	// ErrMalformedBatch indicates the request body was not a JSON array of records.
	ErrMalformedBatch = errors.New("malformed batch")
)
