package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astro_consult/internal/model"
	"astro_consult/internal/repository"
	"astro_consult/internal/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an issued token is declared valid
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionConfig controls session issuance and resolution
type SessionConfig struct {
	TTL time.Duration
	// EnforceExpiry makes ResolveToken reject sessions past expires_at.
	// Off by default: tokens issued by the previous backend were never checked.
	EnforceExpiry bool
}

// AuthService provides registration, login and token resolution
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	IssueSession(ctx context.Context, userID bson.ObjectID) (string, error)
	ResolveToken(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	cfg         SessionConfig
	log         *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, cfg SessionConfig, log *zap.Logger) AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// Register creates a new account and signs it in
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error) {
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleAstrologer {
		return nil, "", ErrInvalidRole
	}
	if req.RatePerMin != nil && *req.RatePerMin < 0 {
		return nil, "", ErrNegativeAmount
	}
	if len(req.Password) > utils.MaxPasswordBytes {
		return nil, "", ErrPasswordTooLong
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrEmailTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           bson.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		RatePerMin:   req.RatePerMin,
		Bio:          req.Bio,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The session goes in first so a failure here leaves no account behind
	token, err := s.IssueSession(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race against a concurrent registration with the same email,
		// the session issued above points at no user and never resolves
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("role", user.Role))
	return user, token, nil
}

// Login authenticates a user and issues a fresh session.
// Unknown email and wrong password fail identically.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if utils.IsLegacyHash(user.PasswordHash) {
		s.log.Warn("user still has an unsalted legacy password hash", zap.String("user_id", user.ID.Hex()))
	}

	token, err := s.IssueSession(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}
	return user, token, nil
}

// IssueSession persists a new opaque token for userID
func (s *authService) IssueSession(ctx context.Context, userID bson.ObjectID) (string, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	session := &model.Session{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// ResolveToken returns the user owning token
func (s *authService) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, ErrInvalidToken
	}
	if s.cfg.EnforceExpiry && session.Expired(s.now()) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
