package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionDetails struct {
	RemoteAddr string
}

func TestSubstitute_GroupAuthority(t *testing.T) {
	details := &sessionDetails{RemoteAddr: "10.0.0.1"}
	alice := New("alice", true, details, Authenticated, "admins")

	sub := Substitute(alice, "admins", Authenticated)

	assert.Equal(t, KindSubstitute, sub.Kind())
	assert.True(t, sub.IsSubstitute())
	assert.Equal(t, "admins", sub.Name())
	assert.Equal(t, "admins", sub.Principal())
	assert.Equal(t, []Authority{"admins", Authenticated}, sub.Authorities())
	assert.True(t, sub.IsAuthenticated())
	assert.Same(t, details, sub.Details())
	assert.Same(t, alice, sub.Credentials())
	assert.Same(t, alice, sub.Original())
}

func TestSubstitute_BaselineOnly(t *testing.T) {
	alice := New("alice", true, nil, Authenticated)

	sub := Substitute(alice, Authenticated)

	assert.Equal(t, "authenticated", sub.Name())
	assert.Equal(t, []Authority{Authenticated}, sub.Authorities())
	assert.True(t, sub.IsAuthenticated())
	assert.True(t, sub.HasAuthority(Authenticated))
}

func TestSubstitute_MirrorsUnauthenticatedFlag(t *testing.T) {
	pending := New("carol", false, nil, "admins")

	sub := Substitute(pending, "admins")

	assert.False(t, sub.IsAuthenticated())
}

func TestSubstitute_DoesNotValidateAuthority(t *testing.T) {
	alice := New("alice", true, nil, Authenticated)

	sub := Substitute(alice, "editors")

	assert.Equal(t, "editors", sub.Name())
	assert.False(t, alice.HasAuthority("editors"))
}

func TestSubstitute_Nested(t *testing.T) {
	alice := New("alice", true, nil, Authenticated, "admins", "devs")
	first := Substitute(alice, "admins", Authenticated)

	second := Substitute(first, Authenticated)

	assert.Equal(t, "authenticated", second.Name())
	assert.Same(t, first, second.Original())
	assert.Same(t, alice, second.Original().Original())
}

func TestSubstitute_NilOriginal(t *testing.T) {
	sub := Substitute(nil, "admins")

	require.NotNil(t, sub.Original())
	assert.Equal(t, "anonymous", sub.Original().Name())
	assert.False(t, sub.IsAuthenticated())
}

func TestNew_CopiesAuthorities(t *testing.T) {
	authorities := []Authority{Authenticated, "admins"}
	a := New("alice", true, nil, authorities...)

	authorities[1] = "root"
	got := a.Authorities()
	got[0] = "mutated"

	assert.Equal(t, []Authority{Authenticated, "admins"}, a.Authorities())
	assert.Nil(t, a.Credentials())
	assert.Nil(t, a.Original())
	assert.False(t, a.IsSubstitute())
}

func TestNilAuthentication(t *testing.T) {
	var a *Authentication
	assert.Equal(t, "", a.Name())
	assert.False(t, a.IsAuthenticated())
	assert.Nil(t, a.Authorities())
	assert.False(t, a.HasAuthority(Authenticated))
	assert.Equal(t, KindNormal, a.Kind())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "normal", KindNormal.String())
	assert.Equal(t, "substitute", KindSubstitute.String())
	assert.Equal(t, "unknown", Kind(7).String())
}
