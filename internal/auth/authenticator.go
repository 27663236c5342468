// Package auth handles account registration, credential checks and the
// bearer tokens that protect every group, expense and settlement call.
package auth

import (
	"context"

	"github.com/mmynk/spendwise/internal/models"
)

// Authenticator verifies who is calling. Groups are owned by the user that
// created them, so every non-auth RPC depends on an Authenticator having
// issued the caller a token first.
type Authenticator interface {
	// Register creates a new account. The credential format depends on the
	// implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user owning email if credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential rejects credentials that can never be accepted.
	ValidateCredential(credential string) error
}
