package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

// IdentityService derives an owning identity from inbound credentials and
// handles the anonymous-to-user ownership transfer.
type IdentityService struct {
	verifier ports.TokenVerifier
	scans    ports.ScanRepository
	logger   zerolog.Logger
}

func NewIdentityService(verifier ports.TokenVerifier, scans ports.ScanRepository, logger zerolog.Logger) *IdentityService {
	return &IdentityService{verifier: verifier, scans: scans, logger: logger}
}

// Resolve turns optional bearer credentials and an optional client-supplied
// session id into an Identity. Token verification failure is non-fatal: the
// caller degrades to anonymous instead of being rejected.
func (s *IdentityService) Resolve(ctx context.Context, input ports.ResolveInput) domain.Identity {
	if input.BearerToken != "" {
		userID, err := s.verifier.Verify(ctx, input.BearerToken)
		if err == nil && userID != "" {
			// First authenticated appearance of a prior anonymous session:
			// transfer its unclaimed scans to the user.
			if input.SessionID != "" {
				claimed, claimErr := s.scans.ClaimSessionScans(ctx, input.SessionID, userID)
				if claimErr != nil {
					s.logger.Warn().Err(claimErr).Str("user_id", userID).Msg("scan claim on resolve failed")
				} else if claimed > 0 {
					s.logger.Info().Int64("claimed", claimed).Str("user_id", userID).Msg("anonymous scans claimed")
				}
			}
			return domain.AuthenticatedUser(userID)
		}
		s.logger.Debug().Err(err).Msg("token verification failed, degrading to anonymous")
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return domain.AnonymousSession(sessionID)
}

// Claim transfers every unclaimed scan owned by sessionID to the
// authenticated caller. Repeating the claim transfers nothing further.
func (s *IdentityService) Claim(ctx context.Context, sessionID string, identity domain.Identity) (int64, error) {
	if !identity.Authenticated() {
		return 0, domain.ErrAuthRequired
	}
	count, err := s.scans.ClaimSessionScans(ctx, sessionID, identity.UserID)
	if err != nil {
		return 0, fmt.Errorf("claim scans: %w", err)
	}
	return count, nil
}

var _ ports.IdentityResolver = (*IdentityService)(nil)
