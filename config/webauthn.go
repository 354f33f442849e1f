package config

import (
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

const DefaultChallengeTTL = 2 * time.Minute

// ChallengeTTL returns the configured ceremony challenge lifetime.
func ChallengeTTL() time.Duration {
	if Conf.Application.WebAuthn.ChallengeValidityInSeconds > 0 {
		return time.Duration(Conf.Application.WebAuthn.ChallengeValidityInSeconds) * time.Second
	}
	return DefaultChallengeTTL
}

// NewWebAuthn builds a webauthn instance bound to the RP ID and origin the
// request carries explicitly. Ceremony validation must not infer these from
// transport headers, so one instance is created per ceremony.
func NewWebAuthn(rpId, origin string) (*webauthn.WebAuthn, error) {
	return webauthn.New(&webauthn.Config{
		RPDisplayName: Conf.Application.WebAuthn.RpDisplayName,
		RPID:          rpId,
		RPOrigins:     []string{origin},
		Timeouts: webauthn.TimeoutsConfig{
			Login: webauthn.TimeoutConfig{
				Enforce: true,
				Timeout: ChallengeTTL(),
			},
			Registration: webauthn.TimeoutConfig{
				Enforce: true,
				Timeout: ChallengeTTL(),
			},
		},
	})
}
