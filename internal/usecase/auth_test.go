package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"TradeGate/internal/domain/models"
	domrepo "TradeGate/internal/domain/repository"
	"TradeGate/internal/repository"
	"TradeGate/internal/services/auth"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by email
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domrepo.ErrNotFound
}

func (s *memUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domrepo.ErrNotFound
}

var _ domrepo.UserStore = (*memUserStore)(nil)

func newTestAuth() (*AuthUseCase, *auth.Manager) {
	tokens := auth.NewManager("test-secret", time.Hour)
	return NewAuthUseCase(newMemUserStore(), tokens), tokens
}

func TestRegisterHashesPassword(t *testing.T) {
	uc, _ := newTestAuth()

	u, err := uc.Register(context.Background(), models.RegisterRequest{
		Email:    " Alice@Example.COM ",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", u.Email)
	}
	if u.PasswordHash == "hunter2hunter2" || u.PasswordHash == "" {
		t.Fatal("password stored without hashing")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if u.ID == "" || u.CreatedAt.IsZero() {
		t.Fatalf("incomplete user: %+v", u)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc, _ := newTestAuth()
	ctx := context.Background()

	req := models.RegisterRequest{Email: "bob@example.com", Password: "hunter2hunter2"}
	if _, err := uc.Register(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Register(ctx, req); !errors.Is(err, repository.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	uc, tokens := newTestAuth()
	ctx := context.Background()

	u, err := uc.Register(ctx, models.RegisterRequest{Email: "carol@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := uc.Login(ctx, models.LoginRequest{Email: "carol@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.AccessToken == "" {
		t.Fatalf("bad token response: %+v", resp)
	}

	claims, err := tokens.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != u.ID || claims.Email != "carol@example.com" {
		t.Fatalf("claims = %+v, want user %s", claims, u.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	uc, _ := newTestAuth()
	ctx := context.Background()

	if _, err := uc.Register(ctx, models.RegisterRequest{Email: "dave@example.com", Password: "hunter2hunter2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Login(ctx, models.LoginRequest{Email: "dave@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	uc, _ := newTestAuth()

	_, err := uc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
