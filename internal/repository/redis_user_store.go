package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"TradeGate/internal/domain/models"
	domainrepo "TradeGate/internal/domain/repository"
	"TradeGate/pkg/cache"
)

// RedisUserStore keeps registered accounts in Redis: the user record as
// JSON under its id, plus an email index for login lookups. Accounts never
// expire.
type RedisUserStore struct {
	cache cache.Service
}

func NewRedisUserStore(c cache.Service) *RedisUserStore {
	return &RedisUserStore{cache: c}
}

func userKey(id string) string       { return "user:id:" + id }
func emailKey(email string) string   { return "user:email:" + normalizeEmail(email) }
func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// ErrEmailTaken is returned when registering an already-known email.
var ErrEmailTaken = errors.New("email already registered")

func (s *RedisUserStore) Create(ctx context.Context, u *models.User) error {
	exists, err := s.cache.Exists(ctx, emailKey(u.Email))
	if err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}
	if err := s.cache.Set(ctx, userKey(u.ID), u, 0); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	if err := s.cache.Set(ctx, emailKey(u.Email), u.ID, 0); err != nil {
		return fmt.Errorf("user create email index: %w", err)
	}
	return nil
}

func (s *RedisUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var id string
	if err := s.cache.Get(ctx, emailKey(email), &id); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, domainrepo.ErrNotFound
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return s.FindByID(ctx, id)
}

func (s *RedisUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.cache.Get(ctx, userKey(id), &u); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, domainrepo.ErrNotFound
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return &u, nil
}

var _ domainrepo.UserStore = (*RedisUserStore)(nil)
