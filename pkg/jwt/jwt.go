package jwt

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// Token kinds carried in the "kind" claim. An access token can never be
// used where a refresh token is expected and vice versa.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

const (
	refreshKeyPrefix   = "refresh_token:"
	blacklistKeyPrefix = "blacklist:"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongKind      = errors.New("unexpected token kind")
	ErrRevokedToken   = errors.New("token has been revoked")
	ErrInvalidClaim   = errors.New("invalid token claims")
	ErrRegistry       = errors.New("token registry unavailable")
)

// SessionClaims represents the JWT claims for a session token
type SessionClaims struct {
	Role      string `json:"role"`
	AccountID int64  `json:"account_id"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair bundles the access and refresh tokens issued together.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Config holds TokenManager configuration
type Config struct {
	Secret     string
	Algorithm  string // HMAC family only, e.g. "HS256"
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager issues, verifies, rotates and revokes session tokens.
// Refresh tokens are additionally tracked in a Redis registry: a
// structurally valid refresh token that is absent from the registry is
// treated as revoked. Revoked tokens of either kind land in a blacklist
// keyed by the token with TTL equal to the remaining lifetime.
type TokenManager struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	registry   *redis.Client
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(cfg Config, registry *redis.Client) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}

	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", cfg.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not in the HMAC family", cfg.Algorithm)
	}

	return &TokenManager{
		secret:     []byte(cfg.Secret),
		method:     method,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		registry:   registry,
	}, nil
}

// IssueAccess signs a short-lived access token for the given subject.
func (tm *TokenManager) IssueAccess(email, role string, accountID int64) (string, error) {
	return tm.sign(email, role, accountID, KindAccess, tm.accessTTL)
}

// IssueRefresh signs a refresh token and records it in the registry with
// a TTL matching the token expiry.
func (tm *TokenManager) IssueRefresh(ctx context.Context, email, role string, accountID int64) (string, error) {
	token, err := tm.sign(email, role, accountID, KindRefresh, tm.refreshTTL)
	if err != nil {
		return "", err
	}

	if err := tm.registry.Set(ctx, refreshKeyPrefix+token, accountID, tm.refreshTTL).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRegistry, err)
	}

	return token, nil
}

// IssuePair issues an access+refresh pair for the given subject.
func (tm *TokenManager) IssuePair(ctx context.Context, email, role string, accountID int64) (*TokenPair, error) {
	access, err := tm.IssueAccess(email, role, accountID)
	if err != nil {
		return nil, err
	}

	refresh, err := tm.IssueRefresh(ctx, email, role, accountID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (tm *TokenManager) sign(email, role string, accountID int64, kind string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		Role:      role,
		AccountID: accountID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tm.issuer,
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(tm.method, claims)
	signedToken, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify validates a token of the expected kind and returns its claims.
// Refresh tokens must additionally be present in the registry; tokens of
// either kind must not be blacklisted.
func (tm *TokenManager) Verify(ctx context.Context, tokenString, expectedKind string) (*SessionClaims, error) {
	claims, err := tm.parse(tokenString, true)
	if err != nil {
		return nil, err
	}

	if claims.Kind != expectedKind {
		return nil, ErrWrongKind
	}

	blacklisted, err := tm.IsBlacklisted(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrRevokedToken
	}

	if expectedKind == KindRefresh {
		exists, err := tm.registry.Exists(ctx, refreshKeyPrefix+tokenString).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRegistry, err)
		}
		if exists == 0 {
			return nil, ErrRevokedToken
		}
	}

	return claims, nil
}

// Revoke blacklists a token for its remaining lifetime and removes it
// from the active-refresh registry. Malformed or already-expired tokens
// are a no-op: revoking garbage is harmless.
func (tm *TokenManager) Revoke(ctx context.Context, tokenString string) error {
	claims, err := tm.parse(tokenString, false)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}

	pipe := tm.registry.TxPipeline()
	pipe.Set(ctx, blacklistKeyPrefix+tokenString, 1, remaining)
	pipe.Del(ctx, refreshKeyPrefix+tokenString)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistry, err)
	}

	return nil
}

// Rotate verifies oldRefresh as an active refresh token, atomically
// consumes its registry entry, issues a fresh access+refresh pair and
// blacklists the old token. The registry entry is claimed with GETDEL,
// so of two concurrent rotations of the same token exactly one succeeds;
// the loser observes ErrRevokedToken. Refresh tokens are single-use.
func (tm *TokenManager) Rotate(ctx context.Context, oldRefresh string) (*TokenPair, error) {
	claims, err := tm.parse(oldRefresh, true)
	if err != nil {
		return nil, err
	}
	if claims.Kind != KindRefresh {
		return nil, ErrWrongKind
	}

	blacklisted, err := tm.IsBlacklisted(ctx, oldRefresh)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrRevokedToken
	}

	// Claim the registry entry. GETDEL is a single round trip, so a
	// concurrent second rotation of the same token finds nothing.
	if err := tm.registry.GetDel(ctx, refreshKeyPrefix+oldRefresh).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRevokedToken
		}
		return nil, fmt.Errorf("%w: %v", ErrRegistry, err)
	}

	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			if err := tm.registry.Set(ctx, blacklistKeyPrefix+oldRefresh, 1, remaining).Err(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRegistry, err)
			}
		}
	}

	return tm.IssuePair(ctx, claims.Subject, claims.Role, claims.AccountID)
}

// IsBlacklisted reports whether a token has been revoked.
func (tm *TokenManager) IsBlacklisted(ctx context.Context, tokenString string) (bool, error) {
	exists, err := tm.registry.Exists(ctx, blacklistKeyPrefix+tokenString).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRegistry, err)
	}
	return exists > 0, nil
}

// parse validates signature and structure. With validate=false expired
// tokens still parse, which Revoke uses to compute the remaining TTL.
func (tm *TokenManager) parse(tokenString string, validate bool) (*SessionClaims, error) {
	opts := []jwt.ParserOption{}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

// AccessTTL returns the access token lifetime.
func (tm *TokenManager) AccessTTL() time.Duration {
	return tm.accessTTL
}

// RefreshTTL returns the refresh token lifetime.
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

// TimingSafeCompare performs a timing-safe comparison of two strings
// This prevents timing attacks when comparing tokens
func TimingSafeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
