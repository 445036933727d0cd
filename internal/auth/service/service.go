// Package service implements authentication business logic: registration,
// login, token rotation, and account provisioning from anonymous quotes.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"agency_portal_backend/internal/auth/repository"
	"agency_portal_backend/internal/auth/token"
	domainevents "agency_portal_backend/internal/events"
	"agency_portal_backend/platform/apperr"
	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/events"
	"agency_portal_backend/platform/logger"
	"agency_portal_backend/platform/phone"
)

// RoleClient and RoleAdmin are the two roles in the system.
const (
	RoleClient = "CLIENT"
	RoleAdmin  = "ADMIN"
)

// Repository is the persistence port for the auth service.
type Repository interface {
	CreateUser(ctx context.Context, u *repository.User) (*repository.User, error)
	FindUserByEmail(ctx context.Context, email string) (*repository.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*repository.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*repository.User, error)
	CountUsers(ctx context.Context) (int64, error)
	StoreRefreshToken(ctx context.Context, t *repository.RefreshToken) error
	FindRefreshTokenByHash(ctx context.Context, hash string) (*repository.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) error
	RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

// RegisterParams are the inputs for self-service registration.
type RegisterParams struct {
	Email    string
	Name     string
	Password string
	Phone    string
	Company  string
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds until the access token expires
}

type Service struct {
	repo Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
	bus  events.Bus
	now  func() time.Time
}

func New(repo Repository, cfg config.AuthServiceConfig, log *logger.Logger, bus events.Bus) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, bus: bus, now: time.Now}
}

// Register creates a CLIENT account.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*repository.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not hash password", err)
	}

	user := &repository.User{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: string(hash),
		Roles:        []string{RoleClient},
	}
	if params.Phone != "" {
		normalized := phone.NormalizeE164(params.Phone)
		user.Phone = &normalized
	}
	if params.Company != "" {
		user.Company = &params.Company
	}

	created, err := s.repo.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		s.log.AuthEvent("register", params.Email, false, "duplicate email")
		return nil, apperr.Conflict("an account with this email already exists")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not create user", err)
	}

	s.log.AuthEvent("register", created.Email, true, "")
	s.bus.Publish(ctx, domainevents.UserRegistered{
		BaseEvent: domainevents.NewBaseEvent(),
		UserID:    created.ID,
		Email:     created.Email,
		Name:      created.Name,
	})
	return created, nil
}

// Login verifies credentials and issues a token pair. Failures are reported
// with a single generic message to avoid leaking which part failed.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, *repository.User, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("login", email, false, "unknown email")
		return nil, nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInternal, "login failed", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return nil, nil, apperr.Unauthorized("invalid credentials")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.log.AuthEvent("login", email, true, "")
	return pair, user, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A revoked or expired token yields 401.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	stored, err := s.repo.FindRefreshTokenByHash(ctx, token.HashSHA256(rawToken))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "refresh failed", err)
	}
	if stored.RevokedAt != nil || s.now().After(stored.ExpiresAt) {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	user, err := s.repo.FindUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	if err := s.repo.RevokeRefreshToken(ctx, stored.ID); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "refresh failed", err)
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token. Unknown tokens are a no-op so
// logout is idempotent.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	stored, err := s.repo.FindRefreshTokenByHash(ctx, token.HashSHA256(rawToken))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "logout failed", err)
	}
	return s.repo.RevokeRefreshToken(ctx, stored.ID)
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*repository.User, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not load user", err)
	}
	return user, nil
}

// ListUsers returns a page of users plus the total count. Admin only.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*repository.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "could not list users", err)
	}
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "could not count users", err)
	}
	return users, total, nil
}

// ProvisionByEmail finds the user owning an email or creates a CLIENT account
// with an unusable random password. Anonymous quote submissions call this so
// every quote has an owner. Returns whether a new account was created.
func (s *Service) ProvisionByEmail(ctx context.Context, email, name, phoneNumber, company string) (*repository.User, bool, error) {
	existing, err := s.repo.FindUserByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, apperr.Wrap(apperr.KindInternal, "could not look up user", err)
	}

	randomSecret, err := token.GenerateRandom()
	if err != nil {
		return nil, false, apperr.Wrap(apperr.KindInternal, "could not provision user", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(randomSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, apperr.Wrap(apperr.KindInternal, "could not provision user", err)
	}

	if name == "" {
		name = email
	}
	user := &repository.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Roles:        []string{RoleClient},
	}
	if phoneNumber != "" {
		normalized := phone.NormalizeE164(phoneNumber)
		user.Phone = &normalized
	}
	if company != "" {
		user.Company = &company
	}

	created, err := s.repo.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost a race with a concurrent submission for the same email.
		existing, lookupErr := s.repo.FindUserByEmail(ctx, email)
		if lookupErr != nil {
			return nil, false, apperr.Wrap(apperr.KindInternal, "could not provision user", lookupErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, apperr.Wrap(apperr.KindInternal, "could not provision user", err)
	}

	s.log.AuthEvent("provision", created.Email, true, "")
	s.bus.Publish(ctx, domainevents.UserRegistered{
		BaseEvent:   domainevents.NewBaseEvent(),
		UserID:      created.ID,
		Email:       created.Email,
		Name:        created.Name,
		Provisioned: true,
	})
	return created, true, nil
}

func (s *Service) issueTokens(ctx context.Context, user *repository.User) (*TokenPair, error) {
	ttl := s.cfg.GetAccessTokenTTL()
	now := s.now()

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"roles": user.Roles,
		"type":  "access",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not sign token", err)
	}

	rawRefresh, err := token.GenerateRandom()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not create refresh token", err)
	}
	refresh := &repository.RefreshToken{
		UserID:    user.ID,
		TokenHash: token.HashSHA256(rawRefresh),
		ExpiresAt: now.Add(s.cfg.GetRefreshTokenTTL()),
	}
	if err := s.repo.StoreRefreshToken(ctx, refresh); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not store refresh token", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		ExpiresIn:    int64(ttl.Seconds()),
	}, nil
}
