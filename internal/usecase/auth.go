package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
	"TradeGate/internal/services/auth"
)

// ErrInvalidCredentials is the generic login failure; it never discloses
// whether the email exists.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthUseCase handles registration and token-based login.
type AuthUseCase struct {
	users  domrepo.UserStore
	tokens *auth.Manager
}

func NewAuthUseCase(users domrepo.UserStore, tokens *auth.Manager) *AuthUseCase {
	return &AuthUseCase{users: users, tokens: tokens}
}

// Register creates an account with a bcrypt-hashed password.
func (uc *AuthUseCase) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates the user and issues an access token. A bcrypt compare
// runs even when the email is unknown so both paths take comparable time.
func (uc *AuthUseCase) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	user, err := uc.users.FindByEmail(ctx, req.Email)

	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // dummy hash
	if err == nil {
		passwordHash = user.PasswordHash
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password))
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := uc.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &models.TokenResponse{AccessToken: token, TokenType: "Bearer"}, nil
}
