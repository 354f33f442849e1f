package services

import (
	"fmt"
	"time"

	"passkey_api_ms/dtos/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-uuid"
	"github.com/redis/go-redis/v9"
)

const signinTokenPurpose = "sign_in"

// ISigninTokenService issues and verifies the one time sign-in tokens that
// bypass the client side ceremony. Issuance is feature gated; every token
// is single-use.
type ISigninTokenService interface {
	Generate(tenant string, userId string) (*response.SigninTokenResponse, error)
	Verify(tenant string, token string) (*response.VerifySigninTokenResponse, error)
}

type SigninTokenService struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	rdb      *redis.Client
	features IFeatureService
	events   IEventService
}

func NewSigninTokenService(secret []byte, issuer string, ttl time.Duration, rdb *redis.Client, features IFeatureService, events IEventService) ISigninTokenService {
	return &SigninTokenService{
		secret:   secret,
		issuer:   issuer,
		ttl:      ttl,
		rdb:      rdb,
		features: features,
		events:   events,
	}
}

func (s *SigninTokenService) Generate(tenant string, userId string) (*response.SigninTokenResponse, error) {
	features, err := s.features.GetFeatures(tenant)
	if err != nil {
		return nil, err
	}
	if !features.IsGenerateSignInTokenEndpointEnabled {
		return nil, ErrTokenEndpointDisabled
	}

	jti, err := uuid.GenerateUUID()
	if err != nil {
		return nil, ErrInternal
	}

	expiresAt := time.Now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     userId,
		"iss":     s.issuer,
		"aud":     tenant,
		"jti":     jti,
		"purpose": signinTokenPurpose,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, ErrInternal
	}

	s.events.LogEvent(tenant, EventSignInTokenIssued, "api", userId, SeverityInformational, "A one time sign-in token was issued.")

	return &response.SigninTokenResponse{Token: signed, ExpiresAt: expiresAt.UTC()}, nil
}

func (s *SigninTokenService) Verify(tenant string, tokenStr string) (*response.VerifySigninTokenResponse, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(tenant), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if purpose, _ := claims["purpose"].(string); purpose != signinTokenPurpose {
		return nil, ErrInvalidToken
	}
	userId, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	if userId == "" || jti == "" {
		return nil, ErrInvalidToken
	}

	// SETNX makes consumption atomic: the first verifier wins, every retry
	// of the same token afterwards fails.
	set, err := s.rdb.SetNX(ctx, fmt.Sprintf("signin_token:%s:%s", tenant, jti), "1", s.ttl).Result()
	if err != nil {
		return nil, ErrInternal
	}
	if !set {
		return nil, ErrInvalidToken
	}

	s.events.LogEvent(tenant, EventSignInTokenVerified, userId, jti, SeverityInformational, "A one time sign-in token was verified.")

	return &response.VerifySigninTokenResponse{UserId: userId}, nil
}
