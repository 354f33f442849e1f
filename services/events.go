package services

import (
	"encoding/json"
	"time"

	"passkey_api_ms/dtos/request"

	"github.com/IBM/sarama"
	"github.com/gofiber/fiber/v2/log"
	"github.com/hashicorp/go-uuid"
)

// Event types emitted to the audit trail.
const (
	EventApiKeyInvalidUsed         = "api-key-invalid-used"
	EventApiKeyLockedUsed          = "api-key-locked-used"
	EventRegistrationCompleted     = "registration-completed"
	EventSignInCompleted           = "sign-in-completed"
	EventSignInTokenIssued         = "sign-in-token-issued"
	EventSignInTokenVerified       = "sign-in-token-verified"
	EventCredentialCloningDetected = "credential-cloning-detected"
	EventCredentialDeleted         = "credential-deleted"
	EventApiKeyLocked              = "api-key-locked"
	EventApiKeyUnlocked            = "api-key-unlocked"
	EventApiKeyDeleted             = "api-key-deleted"
	EventFeaturesChanged           = "features-changed"
	EventAppCreated                = "app-created"
	EventAppMarkedForDeletion      = "app-marked-for-deletion"
	EventAppDeletionCancelled      = "app-deletion-cancelled"
)

const (
	SeverityInformational = "informational"
	SeverityWarning       = "warning"
	SeverityAlert         = "alert"
)

type IEventService interface {
	// LogEvent is fire-and-forget: it must never block a ceremony response
	// and a broker failure must never surface to the caller.
	LogEvent(tenant, eventType, performedBy, subject, severity, message string)
}

type EventService struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventService(producer sarama.SyncProducer, topic string) IEventService {
	return &EventService{producer: producer, topic: topic}
}

func (s *EventService) LogEvent(tenant, eventType, performedBy, subject, severity, message string) {
	id, _ := uuid.GenerateUUID()
	event := &request.CeremonyEvent{
		Id:          id,
		Tenant:      tenant,
		EventType:   eventType,
		PerformedBy: performedBy,
		Subject:     subject,
		Severity:    severity,
		Message:     message,
		CreatedAt:   time.Now().UTC(),
	}
	go s.send(event)
}

func (s *EventService) send(event *request.CeremonyEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error("Failed to marshal audit event: ", err)
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(event.Tenant),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		log.Error("Failed to send audit event: ", err)
	}
}

// NopEventService swallows events when Kafka is not configured.
type NopEventService struct {
}

func NewNopEventService() IEventService {
	return &NopEventService{}
}

func (s *NopEventService) LogEvent(tenant, eventType, performedBy, subject, severity, message string) {
}
