package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/modules/repo"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/utils/secrets"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/utils/tokens"
	"github.com/AbelardoOk/PlanTracker/internal/telemetry"
)

const (
	maxUsernameLen   = 150
	sessionSecretLen = 32
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}.@+\-_]+$`)

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginOutput, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*repo.Session, error)
}

type userService struct {
	users    repo.UserRepo
	sessions repo.SessionRepo
	cfg      *config.Config
	log      *zap.Logger
	metrics  *telemetry.Metrics
	now      func() time.Time
}

func NewUserService(users repo.UserRepo, sessions repo.SessionRepo, cfg *config.Config, log *zap.Logger, metrics *telemetry.Metrics) UserService {
	return &userService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type LoginOutput struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	v := &ValidationError{}

	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		v.Add("username", msgRequired)
	case len(username) > maxUsernameLen || !usernamePattern.MatchString(username):
		v.Add("username", "use at most 150 letters, digits and @/./+/-/_ characters")
	}

	email, err := s.checkEmail(in.Email)
	if err != nil {
		v.Add("email", err.Error())
	}

	switch {
	case in.Password == "":
		v.Add("password", msgRequired)
	case in.Password != in.PasswordConfirm:
		v.Add("password_confirm", "passwords do not match")
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, Invalid("username", "a user with that username already exists")
	}

	hash, err := secrets.HashPassword(in.Password, s.cfg.Auth.SecretPepper)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{Username: username, Email: email, PasswordHashPHC: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Invalid("username", "a user with that username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// checkEmail returns the bare address when it parses and its domain is allowed.
func (s *userService) checkEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New(msgRequired)
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", errors.New("enter a valid email address")
	}

	allowed := s.cfg.Auth.AllowedEmailDomains
	if len(allowed) == 0 {
		return addr.Address, nil
	}
	domain := strings.ToLower(addr.Address[strings.LastIndex(addr.Address, "@")+1:])
	for _, d := range allowed {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(d), "@"), domain) {
			return addr.Address, nil
		}
	}
	return "", fmt.Errorf("email must end with @%s", strings.Join(allowed, ", @"))
}

func (s *userService) Login(ctx context.Context, username, password string) (*LoginOutput, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	ok, err := secrets.VerifyPassword(password, s.cfg.Auth.SecretPepper, u.PasswordHashPHC)
	if err != nil {
		s.log.Error("stored password hash unusable", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
	if !ok {
		s.metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}

	secret, err := secrets.RandomToken(sessionSecretLen)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	now := s.now()
	ttl := time.Duration(s.cfg.Auth.SessionTTLSec) * time.Second
	sess := &repo.Session{UserID: u.ID, Username: u.Username, CreatedAt: now.UTC()}
	if err := s.sessions.Create(ctx, tokens.HMAC256Hex(s.cfg.Auth.SecretPepper, secret), sess, ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.metrics.RecordLogin(true)
	return &LoginOutput{
		Token:     s.cfg.Auth.SessionTokenPrefix + secret,
		ExpiresAt: now.Add(ttl).UTC(),
		User:      u,
	}, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	secret, ok := tokens.ParseToken(token, s.cfg.Auth.SessionTokenPrefix)
	if !ok {
		return ErrUnauthenticated
	}
	return s.sessions.Delete(ctx, tokens.HMAC256Hex(s.cfg.Auth.SecretPepper, secret))
}

// Authenticate resolves a bearer token to its session.
func (s *userService) Authenticate(ctx context.Context, token string) (*repo.Session, error) {
	secret, ok := tokens.ParseToken(token, s.cfg.Auth.SessionTokenPrefix)
	if !ok {
		return nil, ErrUnauthenticated
	}
	sess, err := s.sessions.Get(ctx, tokens.HMAC256Hex(s.cfg.Auth.SecretPepper, secret))
	if err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}
