package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// IDSize is the length of listing, town, claim and transition IDs.
var IDSize = 32

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID returns a random alphanumeric row ID.
func NewID() string {
	return NewIDOfSize(IDSize)
}

// NewIDOfSize is NewID with a custom length. Zero means IDSize; upload keys
// use shorter IDs.
func NewIDOfSize(size int) string {
	if size <= 0 {
		size = IDSize
	}
	return gonanoid.MustGenerate(idAlphabet, size)
}
