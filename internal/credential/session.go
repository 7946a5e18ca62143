package credential

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role names as issued by the backend, without the ROLE_ prefix.
const (
	RoleAdmin         = "ADMIN"
	RoleFaculty       = "FACULTY"
	RoleClubAssociate = "CLUB_ASSOCIATE"
	RoleGeneralUser   = "GENERAL_USER"
)

// ErrNoToken is returned by ParseSession for an empty token.
var ErrNoToken = errors.New("no token")

type sessionClaims struct {
	Roles  []string `json:"roles"`
	ClubID *int64   `json:"clubId,omitempty"`
	jwt.RegisteredClaims
}

// Session is what the client knows about the signed-in user. The backend
// verifies every request, so the claims are only used to decide which
// views to offer.
type Session struct {
	Username  string
	Roles     []string
	ClubID    *int64
	ExpiresAt time.Time
}

// ParseSession decodes token claims without verifying the signature.
func ParseSession(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	s := &Session{
		Username: claims.Subject,
		ClubID:   claims.ClubID,
	}
	for _, r := range claims.Roles {
		s.Roles = append(s.Roles, strings.ToUpper(strings.TrimPrefix(r, "ROLE_")))
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// HasRole reports whether the session carries role (case-insensitive).
func (s *Session) HasRole(role string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Roles, strings.ToUpper(role))
}

// Expired reports whether the token has an expiry before now.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// CanPost reports whether the user may post event-scoped notifications.
func (s *Session) CanPost() bool {
	return s.HasRole(RoleAdmin) || s.HasRole(RoleFaculty) || s.HasRole(RoleClubAssociate)
}

// CanBroadcast reports whether the user may broadcast to everyone.
func (s *Session) CanBroadcast() bool {
	return s.HasRole(RoleAdmin)
}
