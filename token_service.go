package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenExpiration is the token lifetime when none is configured
const DefaultTokenExpiration = 24 * time.Hour

// TokenServiceImpl implements the TokenService interface using HS256
type TokenServiceImpl struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
	logger     Logger
}

var _ TokenService = (*TokenServiceImpl)(nil)

// NewTokenService creates a new TokenService instance. An empty signing
// key is a configuration error.
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, logger Logger) (*TokenServiceImpl, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	if ttl <= 0 {
		ttl = DefaultTokenExpiration
	}

	return &TokenServiceImpl{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		now:        time.Now,
		logger:     normalizeLogger(logger),
	}, nil
}

// NewTokenServiceFromConfig builds the service from auth Config. Token
// expiration is expressed in hours.
func NewTokenServiceFromConfig(cfg Config, logger Logger) (*TokenServiceImpl, error) {
	ttl := time.Duration(cfg.GetTokenExpiration()) * time.Hour
	return NewTokenService([]byte(cfg.GetSigningKey()), ttl, cfg.GetIssuer(), logger)
}

// WithClock replaces the time source used to stamp and check tokens
func (ts *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	if now != nil {
		ts.now = now
	}
	return ts
}

// TTL returns the lifetime of issued tokens
func (ts *TokenServiceImpl) TTL() time.Duration {
	return ts.ttl
}

// Issue creates a signed token for identity
func (ts *TokenServiceImpl) Issue(identity *Identity) (string, error) {
	if identity == nil || identity.ID <= 0 {
		return "", ErrInternal.WithMessage("cannot issue token without identity")
	}

	now := ts.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		Username: identity.Username,
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *Claims) (string, error) {
	if claims == nil {
		return "", ErrInternal.WithMessage("claims must not be nil")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", ErrInternal.WithMessage("failed to sign JWT").Wrap(err)
	}

	return signed, nil
}

// Verify parses and validates a token string, returning its claims
func (ts *TokenServiceImpl) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Warn("token signed with unexpected method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidOrExpiredToken.Wrap(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidOrExpiredToken
	}

	if _, err := claims.SubjectID(); err != nil {
		return nil, err
	}

	return claims, nil
}
