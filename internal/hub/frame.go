package hub

import "encoding/json"

// encodeFrame marshals a command object into a single text frame. The
// socket protocol (spec §6) is plain JSON over text frames; there is no
// separate wire envelope to manage.
func encodeFrame(command map[string]any) ([]byte, error) {
	return json.Marshal(command)
}
