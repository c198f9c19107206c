package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/invoxia/auth/jwt"
	"github.com/kbukum/invoxia/database"
	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/store"
	"github.com/kbukum/invoxia/util"
)

// InvalidCredentialsMessage is the only signin failure message, whatever
// the cause.
const InvalidCredentialsMessage = "Invalid credentials"

// PasswordHasher derives and checks password digests.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, digest, plaintext string) (bool, error)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(sub jwt.Subject) (string, error)
}

// SignupInput is a validated signup request. Exactly one of NewTenantName
// and ExistingTenantName is set, and at least one of Email and
// WhatsAppNumber.
type SignupInput struct {
	Email              string
	Password           string
	NewTenantName      string
	ExistingTenantName string
	WhatsAppNumber     string
}

// Session is the result of a successful signup or signin.
type Session struct {
	User   *store.User
	Tenant *store.Tenant
	Token  string
}

// Profile is a user together with its tenant.
type Profile struct {
	User   *store.User
	Tenant *store.Tenant
}

// AuthService implements account flows.
type AuthService struct {
	store  *store.Store
	hasher PasswordHasher
	tokens TokenIssuer
	log    *logger.Logger

	decoyOnce   sync.Once
	decoyDigest string
}

// NewAuthService creates an AuthService.
func NewAuthService(s *store.Store, hasher PasswordHasher, tokens TokenIssuer, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{store: s, hasher: hasher, tokens: tokens, log: log.WithComponent("auth-service")}
}

// Signup creates a user, and a tenant when NewTenantName is set. The
// creator of a tenant becomes its ADMIN; users joining one are USER.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	createTenant := in.NewTenantName != ""
	tenantName := in.NewTenantName
	if !createTenant {
		tenantName = in.ExistingTenantName
	}

	existing, err := s.store.Tenants().FindByName(ctx, tenantName)
	if err != nil {
		return nil, err
	}
	switch {
	case createTenant && existing != nil:
		return nil, errors.Conflict(fmt.Sprintf("Tenant %s already exists", existing.Name))
	case !createTenant && existing == nil:
		return nil, errors.Conflict(fmt.Sprintf("Tenant %s does not exist", tenantName))
	}

	if in.Email != "" {
		u, err := s.store.Users().FindByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return nil, errors.Conflict("Email already registered")
		}
	}
	if in.WhatsAppNumber != "" {
		u, err := s.store.Users().FindByWhatsApp(ctx, in.WhatsAppNumber)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return nil, errors.Conflict("WhatsApp number is already registered")
		}
	}

	user := &store.User{
		Email:          util.NilIfEmpty(in.Email),
		WhatsAppNumber: util.NilIfEmpty(in.WhatsAppNumber),
		Role:           store.RoleUser,
	}
	if in.Password != "" {
		digest, err := s.hasher.Hash(ctx, in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = &digest
	}

	tenant := existing
	var newTenant *store.Tenant
	if createTenant {
		newTenant = &store.Tenant{Name: tenantName}
		tenant = newTenant
		user.Role = store.RoleAdmin
	} else {
		user.TenantID = existing.ID
	}

	if err := s.store.CreateUserAndTenant(ctx, newTenant, user); err != nil {
		if database.IsDuplicateError(err) {
			return nil, errors.Conflict("Account or tenant already exists").WithCause(err)
		}
		return nil, err
	}

	s.log.WithContext(ctx).Info("User signed up", map[string]interface{}{
		"user_id":        user.ID,
		"tenant_id":      tenant.ID,
		"tenant_created": createTenant,
	})
	return s.session(user, tenant)
}

// Signin resolves identifier as an email first and a WhatsApp number
// second, then checks the password. Every failure reads the same.
func (s *AuthService) Signin(ctx context.Context, identifier, password string) (*Session, error) {
	user, err := s.store.Users().FindByEmail(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if user, err = s.store.Users().FindByWhatsApp(ctx, identifier); err != nil {
			return nil, err
		}
	}
	if user == nil || user.Password == nil {
		s.verifyDecoy(ctx, password)
		return nil, errors.Authentication(InvalidCredentialsMessage)
	}

	ok, err := s.hasher.Verify(ctx, *user.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Authentication(InvalidCredentialsMessage)
	}

	tenant, err := s.tenantOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.session(user, tenant)
}

// GetProfile returns the user with its tenant.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenantOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Tenant: tenant}, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if user.Password == nil {
		return errors.Authentication("User has no password configured")
	}
	ok, err := s.hasher.Verify(ctx, *user.Password, current)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Authentication("Current password is incorrect")
	}

	digest, err := s.hasher.Hash(ctx, next)
	if err != nil {
		return err
	}
	updated, err := s.store.Users().UpdatePassword(ctx, userID, digest)
	if err != nil {
		return err
	}
	if !updated {
		return errors.NotFound("User", userID)
	}
	s.log.WithContext(ctx).Info("Password changed")
	return nil
}

// LinkWhatsApp attaches a WhatsApp number to the user. A number owned by
// another user is a conflict.
func (s *AuthService) LinkWhatsApp(ctx context.Context, userID, number string) (*store.User, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	owner, err := s.store.Users().FindByWhatsApp(ctx, number)
	if err != nil {
		return nil, err
	}
	if owner != nil && owner.ID != userID {
		return nil, errors.Conflict("WhatsApp number already in use")
	}
	if owner == nil {
		if _, err := s.store.Users().SetWhatsApp(ctx, userID, number); err != nil {
			if database.IsDuplicateError(err) {
				return nil, errors.Conflict("WhatsApp number already in use").WithCause(err)
			}
			return nil, err
		}
		user.WhatsAppNumber = &number
	}
	return user, nil
}

// verifyDecoy spends one verification on a throwaway digest so signins for
// unknown or passwordless accounts cost as much as a wrong password.
func (s *AuthService) verifyDecoy(ctx context.Context, password string) {
	s.decoyOnce.Do(func() {
		digest, err := s.hasher.Hash(ctx, "invoxia-signin-decoy")
		if err != nil {
			s.log.Warn("Could not derive decoy digest", logger.Fields(logger.FieldError, err.Error()))
			return
		}
		s.decoyDigest = digest
	})
	if s.decoyDigest != "" {
		_, _ = s.hasher.Verify(ctx, s.decoyDigest, password)
	}
}

func (s *AuthService) user(ctx context.Context, id string) (*store.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("User", id)
	}
	return user, nil
}

func (s *AuthService) tenantOf(ctx context.Context, user *store.User) (*store.Tenant, error) {
	tenant, err := s.store.Tenants().FindByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, errors.NotFound("Tenant", user.TenantID)
	}
	return tenant, nil
}

func (s *AuthService) session(user *store.User, tenant *store.Tenant) (*Session, error) {
	sub := jwt.Subject{
		UserID:   user.ID,
		TenantID: tenant.ID,
		Role:     string(user.Role),
	}
	if user.Email != nil {
		sub.Email = *user.Email
	}
	token, err := s.tokens.Issue(sub)
	if err != nil {
		return nil, errors.Internal("Could not issue token", err)
	}
	return &Session{User: user, Tenant: tenant, Token: token}, nil
}
