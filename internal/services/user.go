package services

import (
	"context"
	"strings"

	"github.com/SigNoz/storefront-go-app/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Login starts a session for email. Any non-empty email and password are
// accepted; nothing is verified or stored beyond the session record.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name, _, _ := strings.Cut(email, "@")
	user := &models.User{
		ID:         s.nextID(),
		Name:       name,
		Email:      email,
		IsLoggedIn: true,
	}
	s.user = user
	s.view = models.ViewHome

	s.persist(ctx, s.keys.User, user)
	s.recordActiveUsers(ctx, 1)
	s.logger.Info().Int64("user_id", user.ID).Str("name", user.Name).Msg("user signed in")

	out := *user
	return &out, nil
}

// Register behaves exactly like Login
func (s *Store) Register(ctx context.Context, email, password string) (*models.User, error) {
	return s.Login(ctx, email, password)
}

// Logout ends the session and forgets the persisted user
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.view = models.ViewHome

	s.remove(ctx, s.keys.User)
	s.recordActiveUsers(ctx, 0)
	s.logger.Info().Msg("user signed out")
}

// User returns the signed-in user, or nil
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	out := *s.user
	return &out
}

func (s *Store) recordActiveUsers(ctx context.Context, n int64) {
	s.metrics.ActiveUsersCount.Record(ctx, n, metric.WithAttributes(s.metrics.WithServiceName([]attribute.KeyValue{
		attribute.String("session_type", "authenticated"),
	})...))
}
