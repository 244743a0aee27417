package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/peoplehub/accounts-api/internal/core/domain"
	"github.com/peoplehub/accounts-api/internal/core/ports"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenCache abstracts the nonce-keyed reissue store (Redis). Get returns
// (nil, nil) on a cache miss.
type TokenCache interface {
	Get(ctx context.Context, nonce string) (*domain.TokenPair, error)
	Store(ctx context.Context, nonce string, pair domain.TokenPair) error
}

// JWTTokenIssuer mints HS256-signed access/refresh pairs. When a cache is
// attached, a retried Issue with the same nonce returns the pair minted the
// first time, making issuance idempotent across retries.
type JWTTokenIssuer struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	cache      TokenCache
	log        zerolog.Logger
}

// NewJWTTokenIssuer creates an issuer. cache may be nil to disable reissue
// caching.
func NewJWTTokenIssuer(secret string, accessTTL, refreshTTL time.Duration, cache TokenCache, log zerolog.Logger) *JWTTokenIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &JWTTokenIssuer{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		cache:      cache,
		log:        log,
	}
}

// Issue mints the token pair for a freshly registered user. Cache failures
// are logged and ignored — minting a fresh pair is always safe.
func (i *JWTTokenIssuer) Issue(ctx context.Context, in ports.IssueInput) (domain.TokenPair, error) {
	if i.cache != nil {
		pair, err := i.cache.Get(ctx, in.Nonce)
		if err != nil {
			i.log.Warn().Err(err).Msg("token cache lookup failed, minting fresh pair")
		} else if pair != nil {
			return *pair, nil
		}
	}

	now := time.Now().UTC()
	access, err := i.sign(in, now, i.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := i.sign(in, now, i.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair := domain.TokenPair{AccessToken: access, RefreshToken: refresh}

	if i.cache != nil {
		if err := i.cache.Store(ctx, in.Nonce, pair); err != nil {
			i.log.Warn().Err(err).Msg("failed to cache issued token pair")
		}
	}
	return pair, nil
}

func (i *JWTTokenIssuer) sign(in ports.IssueInput, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   in.UserID,
		"email": in.Email,
		"roles": in.RoleNames,
		"nonce": in.Nonce,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(i.secret))
}
