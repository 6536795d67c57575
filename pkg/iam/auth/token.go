package auth

import (
	"errors"
	"time"

	"github.com/Abraxas-365/bolsa/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by access tokens
type Claims struct {
	UserID    kernel.UserID    `json:"user_id"`
	CompanyID kernel.CompanyID `json:"company_id,omitempty"`
	Scopes    []string         `json:"scopes"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 access tokens
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, issuer string) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// GenerateAccessToken signs a token for a user with the given scopes
func (s *TokenService) GenerateAccessToken(userID kernel.UserID, companyID kernel.CompanyID, scopes []string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    userID,
		CompanyID: companyID,
		Scopes:    scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateAccessToken parses a token and checks its signature and expiry
func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired()
		}
		return nil, ErrInvalidToken().WithCause(err)
	}
	if !token.Valid || claims.UserID.IsEmpty() {
		return nil, ErrInvalidToken()
	}
	return &claims, nil
}
