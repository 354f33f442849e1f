package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"passkey_api_ms/config"
	"passkey_api_ms/domain"
	"passkey_api_ms/dtos/request"
	"passkey_api_ms/dtos/response"
	"passkey_api_ms/repository"
	"passkey_api_ms/util"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

type ICeremonyService interface {
	RegisterBegin(tenant string, req *request.RegisterBeginRequest) (*response.RegisterBeginResponse, error)
	RegisterFinish(tenant string, sessionToken string, r *http.Request) (*response.RegisterFinishResponse, error)
	SigninBegin(tenant string, req *request.SigninBeginRequest) (*response.SigninBeginResponse, error)
	SigninFinish(tenant string, sessionToken string, r *http.Request) (*response.SigninFinishResponse, error)
}

type CeremonyService struct {
	db         *gorm.DB
	credRepo   repository.ICredentialRepository
	aliasRepo  repository.IAliasRepository
	features   IFeatureService
	challenges IChallengeService
	events     IEventService
}

func NewCeremonyService(db *gorm.DB, credRepo repository.ICredentialRepository, aliasRepo repository.IAliasRepository, features IFeatureService, challenges IChallengeService, events IEventService) ICeremonyService {
	return &CeremonyService{
		db:         db,
		credRepo:   credRepo,
		aliasRepo:  aliasRepo,
		features:   features,
		challenges: challenges,
		events:     events,
	}
}

// RegisterBegin issues a registration challenge bound to the tenant, RP ID
// and origin carried by the request. Policy checks run before any
// cryptographic work.
func (s *CeremonyService) RegisterBegin(tenant string, req *request.RegisterBeginRequest) (*response.RegisterBeginResponse, error) {
	features, err := s.features.GetFeatures(tenant)
	if err != nil {
		return nil, err
	}

	attestation := req.Attestation
	if attestation == "" {
		attestation = "none"
	}
	if err := validateAttestation(attestation, features); err != nil {
		return nil, err
	}

	existing, err := s.credRepo.FindByUser(s.db, tenant, req.UserId)
	if err != nil {
		return nil, ErrInternal
	}

	// A brand new user must not push the tenant over its user quota.
	if features.MaxUsers != nil && len(existing) == 0 {
		count, err := s.credRepo.CountDistinctUsers(s.db, tenant)
		if err != nil {
			return nil, ErrInternal
		}
		if count >= *features.MaxUsers {
			return nil, ErrUserQuotaExceeded
		}
	}

	wa, err := config.NewWebAuthn(req.RPID, req.Origin)
	if err != nil {
		return nil, ErrInternal
	}

	user := domain.NewCeremonyUser(req.UserId, req.Username, req.DisplayName, existing)

	exclusions := make([]protocol.CredentialDescriptor, 0, len(existing))
	for _, cred := range existing {
		exclusions = append(exclusions, protocol.CredentialDescriptor{
			Type:         protocol.PublicKeyCredentialType,
			CredentialID: cred.DescriptorId,
			Transport:    cred.Transports(),
		})
	}

	uv := userVerification(req.UserVerification)
	residentKey := protocol.ResidentKeyRequirementDiscouraged
	if req.Discoverable {
		residentKey = protocol.ResidentKeyRequirementRequired
	}

	options, sessionData, err := wa.BeginRegistration(user,
		webauthn.WithExclusions(exclusions),
		webauthn.WithConveyancePreference(protocol.ConveyancePreference(attestation)),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			ResidentKey:      residentKey,
			UserVerification: uv,
		}),
	)
	if err != nil {
		return nil, ErrInternal
	}

	token, err := s.challenges.Store(&ChallengeSession{
		Tenant:           tenant,
		RPID:             req.RPID,
		Origin:           req.Origin,
		Purpose:          PurposeRegister,
		UserId:           req.UserId,
		Username:         req.Username,
		UserVerification: uv,
		Attestation:      attestation,
		Discoverable:     req.Discoverable,
		Aliases:          req.Aliases,
		Nickname:         req.Nickname,
		Session:          *sessionData,
	})
	if err != nil {
		return nil, err
	}

	return &response.RegisterBeginResponse{Options: options, SessionToken: token}, nil
}

// RegisterFinish verifies the attestation response against the consumed
// challenge session and persists the new credential. The session token is
// single-use regardless of outcome.
func (s *CeremonyService) RegisterFinish(tenant string, sessionToken string, r *http.Request) (*response.RegisterFinishResponse, error) {
	session, err := s.consumeFor(tenant, sessionToken, PurposeRegister)
	if err != nil {
		return nil, err
	}

	parsed, err := protocol.ParseCredentialCreationResponse(r)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	if err := checkBinding(session, &parsed.Response.CollectedClientData, &parsed.Response.AttestationObject.AuthData, protocol.CreateCeremony); err != nil {
		return nil, err
	}

	features, err := s.features.GetFeatures(tenant)
	if err != nil {
		return nil, err
	}
	format := parsed.Response.AttestationObject.Format
	if format != "none" {
		if !features.AllowAttestation {
			return nil, ErrAttestationNotAllowed
		}
		if session.Attestation != "direct" && session.Attestation != "indirect" {
			return nil, ErrUnsupportedAttestationFormat
		}
	}

	wa, err := config.NewWebAuthn(session.RPID, session.Origin)
	if err != nil {
		return nil, ErrInternal
	}

	user := &domain.CeremonyUser{
		Id:          session.UserId,
		Username:    session.Username,
		DisplayName: session.Username,
		Handle:      session.Session.UserID,
	}

	cred, err := wa.CreateCredential(user, session.Session, parsed)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	now := time.Now().UTC()
	stored := &domain.StoredCredential{
		Tenant:               tenant,
		DescriptorId:         cred.ID,
		PublicKey:            cred.PublicKey,
		UserHandle:           session.Session.UserID,
		UserId:               session.UserId,
		SignatureCounter:     cred.Authenticator.SignCount,
		AttestationFmt:       format,
		CredType:             string(protocol.PublicKeyCredentialType),
		AaGuid:               cred.Authenticator.AAGUID,
		RPID:                 session.RPID,
		Origin:               session.Origin,
		Device:               deviceInfo(r),
		Nickname:             session.Nickname,
		DescriptorTransports: joinTransports(cred.Transport),
		BackupEligible:       cred.Flags.BackupEligible,
		BackupState:          cred.Flags.BackupState,
		IsDiscoverable:       session.Discoverable,
		CreatedAt:            &now,
	}

	if err := s.credRepo.Create(s.db, stored); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrDuplicateCredential
		}
		return nil, ErrInternal
	}

	if len(session.Aliases) > 0 {
		if err := s.saveAliases(tenant, session.UserId, session.Aliases, features.AliasHashing); err != nil {
			log.Error("Failed to persist aliases after registration: ", err)
		}
	}

	s.events.LogEvent(tenant, EventRegistrationCompleted, session.UserId, base64Id(cred.ID), SeverityInformational, "A new credential completed registration.")

	return &response.RegisterFinishResponse{
		CredentialId: base64Id(cred.ID),
		UserId:       session.UserId,
	}, nil
}

// SigninBegin issues an authentication challenge. An alias is resolved to a
// user id first; with neither user id nor alias the ceremony is
// discoverable and the allow-list stays empty.
func (s *CeremonyService) SigninBegin(tenant string, req *request.SigninBeginRequest) (*response.SigninBeginResponse, error) {
	features, err := s.features.GetFeatures(tenant)
	if err != nil {
		return nil, err
	}

	userId := req.UserId
	if userId == "" && req.Alias != "" {
		alias := req.Alias
		if features.AliasHashing {
			alias = util.HashAlias(alias)
		}
		pointer, err := s.aliasRepo.Resolve(s.db, tenant, alias)
		if err == repository.ErrNotFound {
			return nil, ErrUnknownCredential
		}
		if err != nil {
			return nil, ErrInternal
		}
		userId = pointer.UserId
	}

	wa, err := config.NewWebAuthn(req.RPID, req.Origin)
	if err != nil {
		return nil, ErrInternal
	}

	uv := userVerification(req.UserVerification)
	purpose := PurposeSignIn
	if req.StepUp {
		purpose = PurposeStepUp
	}

	var options *protocol.CredentialAssertion
	var sessionData *webauthn.SessionData

	if userId != "" {
		creds, err := s.credRepo.FindByUser(s.db, tenant, userId)
		if err != nil {
			return nil, ErrInternal
		}
		if len(creds) == 0 {
			return nil, ErrUnknownCredential
		}
		user := domain.NewCeremonyUser(userId, userId, "", creds)
		options, sessionData, err = wa.BeginLogin(user, webauthn.WithUserVerification(uv))
		if err != nil {
			return nil, ErrInternal
		}
	} else {
		options, sessionData, err = wa.BeginDiscoverableLogin(webauthn.WithUserVerification(uv))
		if err != nil {
			return nil, ErrInternal
		}
	}

	token, err := s.challenges.Store(&ChallengeSession{
		Tenant:           tenant,
		RPID:             req.RPID,
		Origin:           req.Origin,
		Purpose:          purpose,
		UserId:           userId,
		UserVerification: uv,
		Session:          *sessionData,
	})
	if err != nil {
		return nil, err
	}

	return &response.SigninBeginResponse{Options: options, SessionToken: token}, nil
}

// SigninFinish verifies the assertion against the consumed challenge
// session, enforces the signature counter rule and updates usage metadata.
func (s *CeremonyService) SigninFinish(tenant string, sessionToken string, r *http.Request) (*response.SigninFinishResponse, error) {
	session, err := s.consumeFor(tenant, sessionToken, PurposeSignIn)
	if err != nil {
		return nil, err
	}

	parsed, err := protocol.ParseCredentialRequestResponse(r)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	if err := checkBinding(session, &parsed.Response.CollectedClientData, &parsed.Response.AuthenticatorData, protocol.AssertCeremony); err != nil {
		return nil, err
	}

	cred, err := s.credRepo.FindByID(s.db, tenant, parsed.RawID)
	if err == repository.ErrNotFound {
		return nil, ErrUnknownCredential
	}
	if err != nil {
		return nil, ErrInternal
	}

	if session.Session.UserVerification == protocol.VerificationRequired && !parsed.Response.AuthenticatorData.Flags.UserVerified() {
		return nil, ErrUserVerificationRequired
	}

	wa, err := config.NewWebAuthn(session.RPID, session.Origin)
	if err != nil {
		return nil, ErrInternal
	}

	if len(session.Session.UserID) > 0 {
		user := &domain.CeremonyUser{
			Id:          cred.UserId,
			Username:    cred.UserId,
			DisplayName: cred.UserId,
			Handle:      session.Session.UserID,
			Credentials: []domain.StoredCredential{*cred},
		}
		if _, err := wa.ValidateLogin(user, session.Session, parsed); err != nil {
			return nil, ErrInvalidSignature
		}
	} else {
		handler := func(rawID, userHandle []byte) (webauthn.User, error) {
			if subtle.ConstantTimeCompare(userHandle, cred.UserHandle) != 1 {
				return nil, ErrUnknownCredential
			}
			return &domain.CeremonyUser{
				Id:          cred.UserId,
				Username:    cred.UserId,
				DisplayName: cred.UserId,
				Handle:      cred.UserHandle,
				Credentials: []domain.StoredCredential{*cred},
			}, nil
		}
		if _, err := wa.ValidateDiscoverableLogin(handler, session.Session, parsed); err != nil {
			return nil, ErrInvalidSignature
		}
	}

	now := time.Now().UTC()
	presented := parsed.Response.AuthenticatorData.Counter
	backupState := parsed.Response.AuthenticatorData.Flags.HasBackupState()

	switch counterCheck(cred.SignatureCounter, presented) {
	case counterAccept:
		err = s.credRepo.UpdateCounterAndUsage(s.db, tenant, cred.DescriptorId, cred.SignatureCounter, presented, now, backupState)
		if err == repository.ErrCounterConflict {
			// A concurrent authentication advanced the counter first; this
			// assertion no longer satisfies monotonicity.
			s.logCloning(tenant, cred, presented)
			return nil, ErrCredentialCloning
		}
		if err != nil {
			return nil, ErrInternal
		}
	case counterNotUsed:
		if err := s.credRepo.TouchUsage(s.db, tenant, cred.DescriptorId, now, backupState); err != nil {
			return nil, ErrInternal
		}
	case counterCloned:
		// Keep the stored counter untouched as a forensic high-water mark.
		s.logCloning(tenant, cred, presented)
		return nil, ErrCredentialCloning
	}

	s.events.LogEvent(tenant, EventSignInCompleted, cred.UserId, base64Id(cred.DescriptorId), SeverityInformational, "A credential completed sign-in.")

	return &response.SigninFinishResponse{
		UserId:       cred.UserId,
		CredentialId: base64Id(cred.DescriptorId),
		LastUsedAt:   &now,
	}, nil
}

// consumeFor consumes the session token and checks it belongs to the
// calling tenant and to a compatible ceremony purpose.
func (s *CeremonyService) consumeFor(tenant, token, purpose string) (*ChallengeSession, error) {
	session, err := s.challenges.Consume(token)
	if err != nil {
		return nil, err
	}
	// Cross tenant tokens are indistinguishable from expired ones on
	// purpose; nothing about another tenant's ceremony may leak.
	if session.Tenant != tenant {
		return nil, ErrChallengeExpired
	}
	if purpose == PurposeSignIn {
		if session.Purpose != PurposeSignIn && session.Purpose != PurposeStepUp {
			return nil, ErrChallengeMismatch
		}
	} else if session.Purpose != purpose {
		return nil, ErrChallengeMismatch
	}
	if !session.Session.Expires.IsZero() && time.Now().After(session.Session.Expires) {
		return nil, ErrChallengeExpired
	}
	return session, nil
}

func (s *CeremonyService) saveAliases(tenant, userId string, aliases []string, hashing bool) error {
	pointers := make([]domain.AliasPointer, 0, len(aliases))
	for _, alias := range aliases {
		pointer := domain.AliasPointer{Tenant: tenant, UserId: userId}
		if hashing {
			pointer.Alias = util.HashAlias(alias)
		} else {
			pointer.Alias = alias
			pointer.Plaintext = alias
		}
		pointers = append(pointers, pointer)
	}
	return s.aliasRepo.SetForUser(s.db, tenant, userId, pointers)
}

func (s *CeremonyService) logCloning(tenant string, cred *domain.StoredCredential, presented uint32) {
	s.events.LogEvent(tenant, EventCredentialCloningDetected, cred.UserId, base64Id(cred.DescriptorId), SeverityAlert,
		"An assertion presented a non increasing signature counter; the credential may be cloned.")
	log.Warnf("possible credential cloning: tenant=%s stored=%d presented=%d", tenant, cred.SignatureCounter, presented)
}

type counterResult int

const (
	counterAccept counterResult = iota
	counterNotUsed
	counterCloned
)

// counterCheck applies the anti-cloning rule. A pair of zero counters means
// the authenticator does not implement one; otherwise the presented value
// must strictly exceed the stored high-water mark.
func counterCheck(stored, presented uint32) counterResult {
	if stored == 0 && presented == 0 {
		return counterNotUsed
	}
	if presented <= stored {
		return counterCloned
	}
	return counterAccept
}

// checkBinding verifies the client data and authenticator data against the
// values the challenge was bound to at begin time. Each mismatch has its
// own deterministic rejection so callers can tell what went wrong.
func checkBinding(session *ChallengeSession, clientData *protocol.CollectedClientData, authData *protocol.AuthenticatorData, ceremony protocol.CeremonyType) error {
	if clientData.Type != ceremony {
		return ErrChallengeMismatch
	}
	if subtle.ConstantTimeCompare([]byte(clientData.Challenge), []byte(session.Session.Challenge)) != 1 {
		return ErrChallengeMismatch
	}
	if clientData.Origin != session.Origin {
		return ErrOriginMismatch
	}
	rpIdHash := sha256.Sum256([]byte(session.RPID))
	if subtle.ConstantTimeCompare(authData.RPIDHash, rpIdHash[:]) != 1 {
		return ErrRpIdMismatch
	}
	return nil
}

func validateAttestation(attestation string, features *domain.AppFeature) error {
	if strings.EqualFold(attestation, "none") {
		return nil
	}
	if !features.AllowAttestation {
		return ErrAttestationNotAllowed
	}
	if attestation != "direct" && attestation != "indirect" {
		return ErrUnsupportedAttestationFormat
	}
	return nil
}

func userVerification(value string) protocol.UserVerificationRequirement {
	switch value {
	case "required":
		return protocol.VerificationRequired
	case "discouraged":
		return protocol.VerificationDiscouraged
	default:
		return protocol.VerificationPreferred
	}
}

func joinTransports(transports []protocol.AuthenticatorTransport) string {
	parts := make([]string, 0, len(transports))
	for _, t := range transports {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}

func deviceInfo(r *http.Request) string {
	ua := r.UserAgent()
	if len(ua) > 256 {
		ua = ua[:256]
	}
	return ua
}

func base64Id(id []byte) string {
	return base64.RawURLEncoding.EncodeToString(id)
}
