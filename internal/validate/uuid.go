// Package validate holds small input-validation helpers shared by the
// WebDAV adapter, the HTTP front door, and mount control — each of which
// needs to reject a malformed client id the same way (spec §4.G: "Validate
// client_id is a version-4 UUID; reject otherwise").
package validate

import "github.com/google/uuid"

// IsUUID reports whether s parses as a version-4 UUID, the kind the relay
// mints for every endpoint id.
func IsUUID(s string) bool {
	u, err := uuid.Parse(s)
	return err == nil && u.Version() == 4
}
