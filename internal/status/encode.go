// internal/status/encode.go
package status

import "encoding/json"

// Encode converts a Snapshot into the health topic payload.
// No IO. No side effects.
func Encode(s Snapshot) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
