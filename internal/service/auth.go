// Package service contains application services for authentication and shipments.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/and161185/cargodesk/internal/crypto"
	"github.com/and161185/cargodesk/internal/errs"
	"github.com/and161185/cargodesk/internal/limiter"
	"github.com/and161185/cargodesk/internal/model"
	"github.com/and161185/cargodesk/internal/repository"
	"github.com/and161185/cargodesk/internal/request"
	"github.com/and161185/cargodesk/internal/token"
)

// AuthService defines authentication and provisioning operations.
type AuthService interface {
	// Login verifies credentials, applies rate-limiting by (email, ip) and issues a session token.
	// A non-empty tenantID must match the user's tenant.
	Login(ctx context.Context, in request.Login, ip string) (model.Session, error)
	// CreateUser provisions a login with an argon2id password hash.
	CreateUser(ctx context.Context, in request.NewUser) (model.UserSummary, error)
}

type AuthServiceImpl struct {
	users         repository.UserRepository
	signKey       []byte
	tokenTTL      time.Duration
	lim           limiter.Limiter
	defaultTenant string
}

// NewAuthService constructs AuthService with required dependencies.
// A nil limiter disables throttling.
func NewAuthService(users repository.UserRepository, signKey []byte, tokenTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	if lim == nil {
		lim = limiter.Noop{}
	}
	return &AuthServiceImpl{
		users:         users,
		signKey:       signKey,
		tokenTTL:      tokenTTL,
		lim:           lim,
		defaultTenant: model.DefaultTenant,
	}
}

// WithDefaultTenant overrides the tenant assigned to users created without one.
func (s *AuthServiceImpl) WithDefaultTenant(tenant string) *AuthServiceImpl {
	if tenant != "" {
		s.defaultTenant = tenant
	}
	return s
}

// Login authenticates with rate limiting by (email, ip).
//
// Unknown email and wrong password are both ErrUnauthorized. The tenant check
// runs only once the password has verified, and fails with ErrForbidden.
func (s *AuthServiceImpl) Login(ctx context.Context, in request.Login, ip string) (model.Session, error) {
	if err := request.FromValidation(in.Validate()); err != nil {
		return model.Session{}, err
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, in.Email, ipHash)
	if err != nil {
		return model.Session{}, err
	}
	if !allowed {
		return model.Session{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return model.Session{}, s.fail(ctx, in.Email, ipHash)
	case err != nil:
		return model.Session{}, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := pkgcrypto.VerifyPassword(u.PwdHash, in.Password)
	if err != nil {
		return model.Session{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	if !ok {
		return model.Session{}, s.fail(ctx, in.Email, ipHash)
	}

	// Credentials are correct; reset counters (best-effort).
	_ = s.lim.Success(ctx, in.Email, ipHash)

	if in.TenantID != "" && in.TenantID != u.TenantID {
		return model.Session{}, errs.ErrForbidden
	}

	tok, exp, err := token.Issue(model.Claims{UserID: u.ID, Email: u.Email, TenantID: u.TenantID}, s.signKey, s.tokenTTL)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: tok, ExpiresAt: exp, User: u.Summary()}, nil
}

// fail records a failed attempt; a lockout triggered by it surfaces as ErrRateLimited.
func (s *AuthServiceImpl) fail(ctx context.Context, email string, ipHash []byte) error {
	if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
		return errs.ErrRateLimited
	}
	return errs.ErrUnauthorized
}

// CreateUser validates input, hashes the password and stores the user.
func (s *AuthServiceImpl) CreateUser(ctx context.Context, in request.NewUser) (model.UserSummary, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := request.FromValidation(in.Validate()); err != nil {
		return model.UserSummary{}, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.UserSummary{}, err
	}
	hash, err := pkgcrypto.HashPassword(in.Password)
	if err != nil {
		return model.UserSummary{}, err
	}
	tenant := strings.TrimSpace(in.TenantID)
	if tenant == "" {
		tenant = s.defaultTenant
	}

	u := &model.User{ID: uid, Email: in.Email, PwdHash: hash, TenantID: tenant}
	if err := s.users.Create(ctx, u); err != nil {
		return model.UserSummary{}, err
	}
	return u.Summary(), nil
}
