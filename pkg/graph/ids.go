package graph

import "github.com/google/uuid"

// NewNodeID returns prefix followed by a random UUID.
func NewNodeID(prefix string) string {
	return prefix + uuid.NewString()
}
