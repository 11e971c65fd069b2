package core

import gonanoid "github.com/matoous/go-nanoid/v2"

const idSize = 15

// NewID returns a short random identifier for rows lacking a natural key.
func NewID() string {
	return gonanoid.Must(idSize)
}
