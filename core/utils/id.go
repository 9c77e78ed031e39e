package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateStateNonce returns the opaque nonce used to bind an OAuth connect
// redirect to the user who initiated it.
func GenerateStateNonce() (string, error) {
	return gonanoid.Generate(idAlphabet, 32)
}
