package service

import (
	"context"

	"github.com/arcadia/loyalty/internal/auth"
	"github.com/arcadia/loyalty/internal/domain"
	"github.com/arcadia/loyalty/internal/guard"
	"github.com/arcadia/loyalty/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login.
type AuthService struct {
	pool   *pgxpool.Pool
	users  repository.UserRepository
	outbox repository.OutboxRepository
	jwtMgr *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(pool *pgxpool.Pool, users repository.UserRepository, outbox repository.OutboxRepository, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{pool: pool, users: users, outbox: outbox, jwtMgr: jwtMgr}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token   string      `json:"token"`
	UserID  uuid.UUID   `json:"user_id"`
	Email   string      `json:"email"`
	Role    domain.Role `json:"role"`
	Balance domain.Balances `json:"balance"`
}

// Register creates a new player account. Registration always grants the player
// role; admin accounts are seeded out of band.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}

	existing, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RolePlayer,
	}
	if err := s.users.Create(ctx, tx, user); err != nil {
		return nil, domain.ErrInternal("create user", err)
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewUserCreatedEvent(user.ID, user.Email, user.Role)); err != nil {
		return nil, domain.ErrInternal("insert user event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	token, err := s.jwtMgr.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:  token,
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

// LoginInput holds the login request fields. RemoteIP is filled in by the
// handler, never from the request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	RemoteIP string `json:"-"`
}

// Login authenticates a user and returns a signed session token. Accounts with
// too many recent failed attempts are locked out before the password check so
// the lockout also throttles hash computation.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := guard.CheckLocked(ctx, s.pool, input.Email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		guard.RecordAttempt(ctx, s.pool, input.Email, input.RemoteIP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Email, input.RemoteIP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	guard.RecordAttempt(ctx, s.pool, input.Email, input.RemoteIP, true)

	token, err := s.jwtMgr.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:   token,
		UserID:  user.ID,
		Email:   user.Email,
		Role:    user.Role,
		Balance: user.Balances,
	}, nil
}

// Me returns the current user's profile.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}
