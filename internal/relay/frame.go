package relay

import "encoding/json"

// frame is the wire envelope for every websocket message in both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event names understood by the relay and its clients.
const (
	eventJoin     = "join"
	eventJoined   = "joined"
	eventProgress = "progress"
)

// joinedFrame acknowledges a join to the issuing session only.
var joinedFrame = []byte(`{"event":"joined","data":"room joined"}`)

// progressFrame wraps a bus payload for delivery. The payload bytes are
// spliced in verbatim, so clients see exactly what the workflow engine
// published.
func progressFrame(payload []byte) ([]byte, error) {
	return json.Marshal(frame{Event: eventProgress, Data: json.RawMessage(payload)})
}
