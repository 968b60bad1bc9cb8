package model

import "context"

// Hasher provides one-way password hashing and verification.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// CodeGenerator produces a fixed-width numeric one-time code.
type CodeGenerator interface {
	Generate() (string, error)
}

// Notifier delivers a plaintext message to a destination address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// TokenIssuer mints an opaque bearer token bound to a username.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// TokenVerifier resolves the username bound to a bearer token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
