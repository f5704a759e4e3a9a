package domain

// Identity is the ephemeral per-request owner identity: either an
// authenticated user or an anonymous session. It is derived at the edge and
// passed explicitly through every call that needs it — never stored.
type Identity struct {
	UserID    string
	SessionID string
}

// Authenticated reports whether the identity carries a verified user id.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// AuthenticatedUser builds an identity for a verified user.
func AuthenticatedUser(userID string) Identity {
	return Identity{UserID: userID}
}

// AnonymousSession builds an identity for an anonymous session.
func AnonymousSession(sessionID string) Identity {
	return Identity{SessionID: sessionID}
}
