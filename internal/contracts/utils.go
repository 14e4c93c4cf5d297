package contracts

import "github.com/google/uuid"

// GenerateID returns a prefixed, collision-resistant identifier for a
// contract, mismatch, or frontend-call record.
func GenerateID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
