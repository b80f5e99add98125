package id

import (
	"github.com/google/uuid"
	"github.com/teris-io/shortid"
)

// New returns a random document id.
func New() string {
	return uuid.NewString()
}

// InviteCode returns a short URL-safe one-time code. Falls back to a uuid
// when the shortid generator fails.
func InviteCode() string {
	code, err := shortid.Generate()
	if err != nil {
		return uuid.NewString()
	}
	return code
}
