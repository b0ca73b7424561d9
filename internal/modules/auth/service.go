package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"astroseva/internal/domain"
	"astroseva/internal/modules/identity"
	"astroseva/internal/repository"
)

// Service is the identity provider: credentials, access tokens and rotating
// refresh tokens.
type Service struct {
	users    UserStore
	profiles ProfileWriter
	roles    RoleWriter
	tokens   RefreshTokenStore
	jwt      TokenIssuer
	sessions SessionResolver

	accessTTL          time.Duration
	refreshTTL         time.Duration
	refreshTokenPepper string
}

func NewService(
	users UserStore,
	profiles ProfileWriter,
	roles RoleWriter,
	tokens RefreshTokenStore,
	jwt TokenIssuer,
	sessions SessionResolver,
	accessTTL time.Duration,
	refreshTTL time.Duration,
	refreshTokenPepper string,
) *Service {
	return &Service{
		users:              users,
		profiles:           profiles,
		roles:              roles,
		tokens:             tokens,
		jwt:                jwt,
		sessions:           sessions,
		accessTTL:          accessTTL,
		refreshTTL:         refreshTTL,
		refreshTokenPepper: refreshTokenPepper,
	}
}

type LoginResult struct {
	User   *domain.User
	Tokens Tokens
}

// Register creates the credential record, an empty profile and the default
// role row, then signs the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Email: req.Email, PasswordHash: hashed}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	profile := &domain.Profile{ID: user.ID, FullName: strings.TrimSpace(req.FullName)}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	if err := s.roles.Set(ctx, user.ID, domain.RoleUser); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	tokens, err := s.issue(ctx, user, uuid.NewString())
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &LoginResult{User: user, Tokens: *tokens}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issue(ctx, user, uuid.NewString())
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &LoginResult{User: user, Tokens: *tokens}, nil
}

// Refresh rotates a refresh token. Presenting a token that was already
// rotated or revoked revokes every token of its family.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*Tokens, error) {
	current, err := s.tokens.GetByHash(ctx, hashTokenWithPepper(refreshRaw, s.refreshTokenPepper))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if current.IsExpired(time.Now()) {
		return nil, ErrInvalidRefreshToken
	}
	if current.UsedAt != nil || current.IsRevoked() {
		return nil, s.reuseDetected(ctx, current)
	}

	if err := s.tokens.MarkUsed(ctx, current.ID); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, s.reuseDetected(ctx, current)
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return s.issue(ctx, user, current.FamilyID)
}

func (s *Service) reuseDetected(ctx context.Context, t *domain.RefreshToken) error {
	log.Printf("auth: refresh token reuse user_id=%s family_id=%s", t.UserID, t.FamilyID)
	if err := s.tokens.RevokeFamily(ctx, t.FamilyID); err != nil {
		return err
	}
	return ErrRefreshTokenReused
}

// Logout revokes the refresh token family, when one is presented, and drops
// the actor's cached role. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, actorID, refreshRaw string) error {
	if actorID != "" {
		s.sessions.Invalidate(ctx, actorID)
	}
	if refreshRaw == "" {
		return nil
	}

	t, err := s.tokens.GetByHash(ctx, hashTokenWithPepper(refreshRaw, s.refreshTokenPepper))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if actorID == "" {
		s.sessions.Invalidate(ctx, t.UserID)
	}
	return s.tokens.RevokeFamily(ctx, t.FamilyID)
}

// Session resolves the current session. An empty actorID is the signed-out
// session and is not an error.
func (s *Service) Session(ctx context.Context, actorID string) (*SessionView, error) {
	if actorID == "" {
		return &SessionView{}, nil
	}
	res, err := s.sessions.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return sessionView(res), nil
}

// SetSession adopts tokens obtained elsewhere, either directly or from an
// OAuth redirect URL. A redirect without tokens yields the signed-out session.
func (s *Service) SetSession(ctx context.Context, req SetSessionRequest) (*SessionView, error) {
	access, refresh := req.AccessToken, req.RefreshToken
	if access == "" && req.CallbackURL != "" {
		cb, ok, err := identity.ParseCallback(req.CallbackURL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &SessionView{}, nil
		}
		access, refresh = cb.AccessToken, cb.RefreshToken
	}
	if access == "" {
		return &SessionView{}, nil
	}

	claims, err := s.jwt.ValidateToken(access)
	if err != nil {
		return nil, ErrUnauthorized
	}
	view, err := s.Session(ctx, claims.ActorID())
	if err != nil {
		return nil, err
	}
	view.Tokens = &Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    secondsUntil(claims.ExpiresAt.Time),
		TokenType:    "bearer",
	}
	return view, nil
}

func (s *Service) issue(ctx context.Context, user *domain.User, familyID string) (*Tokens, error) {
	access, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	raw, hash, err := generateOpaqueRefreshToken(s.refreshTokenPepper)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		FamilyID:  familyID,
		ExpiresAt: time.Now().UTC().Add(s.refreshTTL),
	}); err != nil {
		return nil, err
	}
	return &Tokens{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		TokenType:    "bearer",
	}, nil
}

func sessionView(res identity.Resolution) *SessionView {
	if res.Actor.Anonymous() {
		return &SessionView{}
	}
	actor := res.Actor
	return &SessionView{
		Authenticated:     true,
		Actor:             &actor,
		Profile:           res.Profile,
		NeedsBirthDetails: res.Profile.NeedsBirthDetails(),
	}
}

func secondsUntil(t time.Time) int {
	d := time.Until(t)
	if d < 0 {
		return 0
	}
	return int(d.Seconds())
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateOpaqueRefreshToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	hash = hashTokenWithPepper(raw, pepper)
	return raw, hash, nil
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}
