package ports

import (
	"context"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

// TokenVerifier checks a bearer token against the external verifier.
type TokenVerifier interface {
	// Verify returns the user id carried by a valid token, or an error for
	// any invalid token (expired, malformed, wrong signature).
	Verify(ctx context.Context, token string) (string, error)
}

// ResolveInput carries the optional credentials presented by a caller.
type ResolveInput struct {
	BearerToken string // raw token, empty when absent
	SessionID   string // client-supplied session id, empty when absent
}

// IdentityResolver derives an owning identity from inbound credentials.
type IdentityResolver interface {
	// Resolve never fails the caller on token verification errors: it
	// degrades to an anonymous identity, minting a session id if none was
	// supplied. When a token verifies and a prior session id is also
	// presented, unclaimed scans under that session are transferred to the
	// user as a side effect.
	Resolve(ctx context.Context, input ResolveInput) domain.Identity

	// Claim transfers every unclaimed scan owned by sessionID to the
	// authenticated user and returns the count. Idempotent.
	Claim(ctx context.Context, sessionID string, identity domain.Identity) (int64, error)
}
