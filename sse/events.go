package sse

import (
	"bytes"
	"encoding/json"
)

// Event names written on the stream.
const (
	// EventConnected is sent once when a client connects.
	EventConnected = "connected"

	// EventStatus carries a pipeline status snapshot.
	EventStatus = "status"
)

// Event is one named message for every connected client.
type Event struct {
	Name string
	Data []byte
}

// Broadcaster delivers events to connected clients.
type Broadcaster interface {
	Broadcast(e Event)
}

// encodeData renders v as single-line JSON without HTML escaping, so a
// topology such as "SUP -[1]-> CON" reaches the client as written.
func encodeData(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
