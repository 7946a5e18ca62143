package credential

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-server-key"))
	require.NoError(t, err)
	return token
}

func TestParseSessionStripsRolePrefix(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signToken(t, jwt.MapClaims{
		"sub":    "alice",
		"roles":  []string{"ROLE_ADMIN", "faculty"},
		"clubId": 7,
		"exp":    exp.Unix(),
	})

	s, err := ParseSession(token)
	require.NoError(t, err)
	require.Equal(t, "alice", s.Username)
	require.Equal(t, []string{"ADMIN", "FACULTY"}, s.Roles)
	require.NotNil(t, s.ClubID)
	require.Equal(t, int64(7), *s.ClubID)
	require.True(t, exp.Equal(s.ExpiresAt))
	require.True(t, s.CanBroadcast())
	require.True(t, s.CanPost())
}

func TestSessionPermissions(t *testing.T) {
	general := &Session{Roles: []string{RoleGeneralUser}}
	require.False(t, general.CanPost())
	require.False(t, general.CanBroadcast())

	club := &Session{Roles: []string{RoleClubAssociate}}
	require.True(t, club.CanPost())
	require.False(t, club.CanBroadcast())
	require.True(t, club.HasRole("club_associate"))

	var none *Session
	require.False(t, none.CanPost())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	require.True(t, (&Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now))
	require.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	require.False(t, (&Session{}).Expired(now))
}

func TestParseSessionRejectsGarbage(t *testing.T) {
	_, err := ParseSession("")
	require.ErrorIs(t, err, ErrNoToken)

	_, err = ParseSession("not-a-jwt")
	require.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("abc")

	token, err := store.Token()
	require.NoError(t, err)
	require.Equal(t, "abc", token)

	require.NoError(t, store.ClearToken())
	token, err = store.Token()
	require.NoError(t, err)
	require.Empty(t, token)

	require.NoError(t, store.SetToken("xyz"))
	token, _ = store.Token()
	require.Equal(t, "xyz", token)
}
