package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bcnelson/yatube/internal/auth"
	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/validation"
	"github.com/google/uuid"
)

// maxUsernameAttempts bounds the suffix search for a free username.
const maxUsernameAttempts = 100

// AccountService manages user accounts and credential checks.
type AccountService struct {
	store storage.Storage
	now   func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(store storage.Storage) *AccountService {
	return &AccountService{
		store: store,
		now:   time.Now,
	}
}

// Signup validates form and creates a local account with a password.
// A taken username is reported as a validation error on the username field.
func (s *AccountService) Signup(ctx context.Context, form validation.SignupForm) (*domain.User, validation.ValidationErrors, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)

	if verrs := validation.ValidateSignupForm(form); verrs.HasErrors() {
		return nil, verrs, nil
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     form.Username,
		FullName:     form.FullName,
		Email:        form.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			var verrs validation.ValidationErrors
			verrs.Add("username", form.Username, "A user with that username already exists.")
			return nil, verrs, nil
		}
		return nil, nil, fmt.Errorf("creating user %s: %w", form.Username, err)
	}

	return user, nil, nil
}

// Login checks a username and password. Unknown users and wrong
// passwords both return domain.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		auth.CheckMissingUser(password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// User returns the user with the given id.
func (s *AccountService) User(ctx context.Context, id string) (*domain.User, error) {
	return s.store.GetUser(ctx, id)
}

// ExternalIdentity is a user asserted by an identity provider.
// Issuer and Subject identify it; the other fields only seed a new account.
type ExternalIdentity struct {
	Issuer       string
	Subject      string
	UsernameHint string
	Email        string
	FullName     string
}

// FindOrCreateExternal returns the account linked to the identity's issuer
// and subject, creating a new one on first login. Existing local accounts
// are never linked by email. New accounts have no local password.
func (s *AccountService) FindOrCreateExternal(ctx context.Context, id ExternalIdentity) (*domain.User, error) {
	if id.Issuer == "" || id.Subject == "" {
		return nil, fmt.Errorf("external identity without issuer or subject: %w", domain.ErrInvalidInput)
	}

	user, err := s.store.GetUserByExternalID(ctx, id.Issuer, id.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("looking up external user: %w", err)
	}

	base := usernameFromHint(id.UsernameHint)
	for i := 1; i <= maxUsernameAttempts; i++ {
		username := base
		if i > 1 {
			username = fmt.Sprintf("%s-%d", base, i)
		}

		user := &domain.User{
			ID:          uuid.New().String(),
			Username:    username,
			FullName:    id.FullName,
			Email:       id.Email,
			CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
			OIDCIssuer:  &id.Issuer,
			OIDCSubject: &id.Subject,
		}
		err := s.store.CreateUser(ctx, user)
		if err == nil {
			log.Printf("Created account %s for subject %s of %s", username, id.Subject, id.Issuer)
			return user, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("creating user %s: %w", username, err)
		}

		// A concurrent first login may have linked the subject already.
		if linked, err := s.store.GetUserByExternalID(ctx, id.Issuer, id.Subject); err == nil {
			return linked, nil
		}
	}

	return nil, fmt.Errorf("no free username for %q: %w", base, domain.ErrAlreadyExists)
}

// usernameFromHint keeps the characters usernames allow and leaves room
// for a numeric suffix.
func usernameFromHint(hint string) string {
	var b strings.Builder
	for _, r := range hint {
		if r < 0x80 && validation.ValidateUsername(string(r)) == nil {
			b.WriteRune(r)
		}
	}

	name := b.String()
	if len(name) > validation.MaxUsernameLength-4 {
		name = name[:validation.MaxUsernameLength-4]
	}
	if name == "" {
		name = "user"
	}
	return name
}
