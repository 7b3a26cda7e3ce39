package cloudconnections

import "encoding/json"

// Repo stores cloud connection documents by id.
type Repo interface {
	// Keys returns every id in ascending order.
	Keys() []string
	// Get returns the document for id and whether it exists.
	Get(id string) (json.RawMessage, bool)
	// Upsert stores value under id and reports whether id was new.
	Upsert(id string, value json.RawMessage) (created bool, err error)
	// Delete removes id, failing with ErrNotFound when it does not exist.
	Delete(id string) error
}

// DefaultConnections is the data a fresh process starts with.
func DefaultConnections() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"connection1": json.RawMessage(`{"foo":"bar"}`),
		"connection2": json.RawMessage(`{"foo":"baz"}`),
	}
}
