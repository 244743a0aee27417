package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/ports"
	"github.com/peoplehub/accounts-api/pkg/logger"
)

type stubTokenCache struct {
	pairs  map[string]domain.TokenPair
	getErr error
}

func newStubTokenCache() *stubTokenCache {
	return &stubTokenCache{pairs: make(map[string]domain.TokenPair)}
}

func (c *stubTokenCache) Get(_ context.Context, nonce string) (*domain.TokenPair, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if pair, ok := c.pairs[nonce]; ok {
		return &pair, nil
	}
	return nil, nil
}

func (c *stubTokenCache) Store(_ context.Context, nonce string, pair domain.TokenPair) error {
	c.pairs[nonce] = pair
	return nil
}

func issueInput() ports.IssueInput {
	return ports.IssueInput{
		UserID:    "user-1",
		Email:     "a@x.com",
		Nonce:     "abc123",
		RoleNames: []string{"user"},
	}
}

func parseClaims(t *testing.T, token, secret string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	return claims
}

func TestJWTTokenIssuer_Issue_Claims(t *testing.T) {
	issuer := NewJWTTokenIssuer("secret", time.Minute, time.Hour, nil, logger.Init(logger.Options{Level: "error"}))

	pair, err := issuer.Issue(context.Background(), issueInput())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	access := parseClaims(t, pair.AccessToken, "secret")
	if access["sub"] != "user-1" || access["email"] != "a@x.com" || access["nonce"] != "abc123" {
		t.Fatalf("unexpected access claims: %+v", access)
	}
	roles, ok := access["roles"].([]any)
	if !ok || len(roles) != 1 || roles[0] != "user" {
		t.Fatalf("unexpected roles claim: %v", access["roles"])
	}

	refresh := parseClaims(t, pair.RefreshToken, "secret")
	accessExp, _ := access["exp"].(float64)
	refreshExp, _ := refresh["exp"].(float64)
	if refreshExp <= accessExp {
		t.Fatalf("refresh token must outlive access token (%v <= %v)", refreshExp, accessExp)
	}
}

func TestJWTTokenIssuer_Issue_ReusesCachedPair(t *testing.T) {
	cache := newStubTokenCache()
	issuer := NewJWTTokenIssuer("secret", time.Minute, time.Hour, cache, logger.Init(logger.Options{Level: "error"}))

	first, err := issuer.Issue(context.Background(), issueInput())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	second, err := issuer.Issue(context.Background(), issueInput())
	if err != nil {
		t.Fatalf("retried Issue returned error: %v", err)
	}

	if first != second {
		t.Fatalf("retried issuance with the same nonce must return the cached pair")
	}
}

func TestJWTTokenIssuer_Issue_CacheFailureIsNonFatal(t *testing.T) {
	cache := newStubTokenCache()
	cache.getErr = errors.New("redis down")
	issuer := NewJWTTokenIssuer("secret", time.Minute, time.Hour, cache, logger.Init(logger.Options{Level: "error"}))

	pair, err := issuer.Issue(context.Background(), issueInput())
	if err != nil {
		t.Fatalf("Issue must mint a fresh pair when the cache fails: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected a complete pair, got %+v", pair)
	}
}
