package service

import (
	"context"
	"testing"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage/memory"
	"github.com/bcnelson/yatube/internal/storage/storagetest"
	"github.com/bcnelson/yatube/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signupForm(username string) validation.SignupForm {
	return validation.SignupForm{
		Username:  username,
		FullName:  "Alice Liddell",
		Email:     username + "@example.com",
		Password:  "correct horse",
		Password2: "correct horse",
	}
}

func TestSignupAndLogin(t *testing.T) {
	store := memory.New()
	svc := NewAccountService(store)
	ctx := context.Background()

	form := signupForm("alice")
	form.Username = " alice "
	user, verrs, err := svc.Signup(ctx, form)
	require.NoError(t, err)
	require.Empty(t, verrs)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice Liddell", user.DisplayName())
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	got, err := svc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, "alice", "wrong horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSignupDuplicate(t *testing.T) {
	store := memory.New()
	svc := NewAccountService(store)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, signupForm("alice"))
	require.NoError(t, err)

	user, verrs, err := svc.Signup(ctx, signupForm("alice"))
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Contains(t, verrs.ByField(), "username")
}

func TestSignupInvalid(t *testing.T) {
	svc := NewAccountService(memory.New())
	form := signupForm("alice")
	form.Password2 = "something else"

	user, verrs, err := svc.Signup(context.Background(), form)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Contains(t, verrs.ByField(), "password2")
}

func TestLoginWithoutPassword(t *testing.T) {
	store := memory.New()
	svc := NewAccountService(store)
	storagetest.NewUser(t, store, "oidc-only")

	_, err := svc.Login(context.Background(), "oidc-only", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func external(subject, hint, email string) ExternalIdentity {
	return ExternalIdentity{
		Issuer:       "https://id.example.com",
		Subject:      subject,
		UsernameHint: hint,
		Email:        email,
	}
}

func TestFindOrCreateExternal(t *testing.T) {
	store := memory.New()
	svc := NewAccountService(store)
	ctx := context.Background()
	storagetest.NewUser(t, store, "alice")

	second := external("sub-2", "alice", "alice@other.org")
	second.FullName = "Other Alice"
	created, err := svc.FindOrCreateExternal(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "alice-2", created.Username)
	assert.Equal(t, "Other Alice", created.FullName)
	assert.Empty(t, created.PasswordHash)
	require.NotNil(t, created.OIDCSubject)
	assert.Equal(t, "sub-2", *created.OIDCSubject)

	third, err := svc.FindOrCreateExternal(ctx, external("sub-3", "alice", "alice@third.org"))
	require.NoError(t, err)
	assert.Equal(t, "alice-3", third.Username)

	again, err := svc.FindOrCreateExternal(ctx, external("sub-2", "renamed", "changed@other.org"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	otherIssuer := external("sub-2", "alice", "alice@other.org")
	otherIssuer.Issuer = "https://other.example.com"
	fourth, err := svc.FindOrCreateExternal(ctx, otherIssuer)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, fourth.ID)

	_, err = svc.FindOrCreateExternal(ctx, ExternalIdentity{UsernameHint: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFindOrCreateExternalNeverLinksByEmail(t *testing.T) {
	store := memory.New()
	svc := NewAccountService(store)
	ctx := context.Background()

	victim, verrs, err := svc.Signup(ctx, signupForm("victim"))
	require.NoError(t, err)
	require.Empty(t, verrs)

	user, err := svc.FindOrCreateExternal(ctx, external("attacker-sub", "victim", "victim@example.com"))
	require.NoError(t, err)
	assert.NotEqual(t, victim.ID, user.ID)
	assert.Equal(t, "victim-2", user.Username)
	assert.Empty(t, user.PasswordHash)

	got, err := svc.Login(ctx, "victim", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, victim.ID, got.ID)
}

func TestUsernameFromHint(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"alice", "alice"},
		{"Alice Smith", "AliceSmith"},
		{"алиса", "user"},
		{"", "user"},
		{"a/b", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			assert.Equal(t, tt.want, usernameFromHint(tt.hint))
		})
	}
}
