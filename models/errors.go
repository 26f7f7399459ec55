package models

import "errors"

var (
	// ErrConfiguration marks a malformed collection schema or service config.
	ErrConfiguration = errors.New("configuration error")
	// ErrIndexEngine wraps transport and status failures of the index engine.
	ErrIndexEngine = errors.New("index engine error")
	ErrNotFound    = errors.New("not found")
	// ErrUnknownCollection is returned for a collection name with no schema.
	ErrUnknownCollection = errors.New("unknown collection")
)
