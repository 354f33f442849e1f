package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"passkey_api_ms/util"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

// Ceremony purposes a challenge can be bound to.
const (
	PurposeRegister = "register"
	PurposeSignIn   = "sign-in"
	PurposeStepUp   = "step-up"
)

// ChallengeSession binds an issued challenge to the tenant, RP ID, origin
// and purpose it was created for. The whole envelope lives in redis under an
// opaque session token; nothing about the ceremony is trusted from the
// client at finish time.
type ChallengeSession struct {
	Tenant           string                               `json:"tenant"`
	RPID             string                               `json:"rp_id"`
	Origin           string                               `json:"origin"`
	Purpose          string                               `json:"purpose"`
	UserId           string                               `json:"user_id"`
	Username         string                               `json:"username"`
	UserVerification protocol.UserVerificationRequirement `json:"user_verification"`
	Attestation      string                               `json:"attestation"`
	Discoverable     bool                                 `json:"discoverable"`
	Aliases          []string                             `json:"aliases,omitempty"`
	Nickname         string                               `json:"nickname,omitempty"`
	Session          webauthn.SessionData                 `json:"session"`
	IssuedAt         time.Time                            `json:"issued_at"`
}

type IChallengeService interface {
	// Store persists a new session and returns its opaque token.
	Store(session *ChallengeSession) (string, error)
	// Consume atomically removes and returns the session. Exactly one
	// concurrent caller wins; all later callers get ErrChallengeAlreadyUsed
	// and a token that lapsed without being presented gets
	// ErrChallengeExpired.
	Consume(token string) (*ChallengeSession, error)
}

type ChallengeService struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewChallengeService(rdb *redis.Client, ttl time.Duration) IChallengeService {
	return &ChallengeService{rdb: rdb, ttl: ttl}
}

func (s *ChallengeService) Store(session *ChallengeSession) (string, error) {
	token, err := util.GenerateSessionToken()
	if err != nil {
		return "", ErrInternal
	}
	session.IssuedAt = time.Now().UTC()
	data, err := json.Marshal(session)
	if err != nil {
		return "", ErrInternal
	}
	if err := s.rdb.Set(ctx, challengeKey(token), data, s.ttl).Err(); err != nil {
		return "", ErrInternal
	}
	return token, nil
}

func (s *ChallengeService) Consume(token string) (*ChallengeSession, error) {
	val, err := s.rdb.GetDel(ctx, challengeKey(token)).Result()
	if err == redis.Nil {
		// A tombstone tells a replayed token apart from one that lapsed.
		used, terr := s.rdb.Exists(ctx, consumedKey(token)).Result()
		if terr == nil && used > 0 {
			return nil, ErrChallengeAlreadyUsed
		}
		return nil, ErrChallengeExpired
	}
	if err != nil {
		return nil, ErrInternal
	}

	var session ChallengeSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, ErrInternal
	}

	// Mark the token consumed for the remainder of its natural lifetime so
	// replays stay distinguishable even after a failed finish.
	if err := s.rdb.Set(ctx, consumedKey(token), "1", remainingLifetime(s.ttl, session.IssuedAt)).Err(); err != nil {
		log.Warn("Failed to mark ceremony session consumed: ", err)
	}
	return &session, nil
}

// remainingLifetime is how long a consumed-token tombstone should outlive
// the consumption, never shorter than a second so the key cannot expire
// mid-ceremony.
func remainingLifetime(ttl time.Duration, issuedAt time.Time) time.Duration {
	remaining := ttl - time.Since(issuedAt)
	if remaining < time.Second {
		remaining = time.Second
	}
	return remaining
}

func challengeKey(token string) string {
	return fmt.Sprintf("ceremony:%s", token)
}

func consumedKey(token string) string {
	return fmt.Sprintf("ceremony:used:%s", token)
}
