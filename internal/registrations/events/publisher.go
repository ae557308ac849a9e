package events

import (
	"context"
	"strings"
	"time"

	"confreg/pkg/kafka"
	"confreg/pkg/model"
)

const (
	EventRegistrationRecorded = "registration.recorded"
	SchemaVersion             = "1"
	Source                    = "registration"
)

// RegistrationRecorded is published after a registration row has been saved.
type RegistrationRecorded struct {
	FullName          string    `json:"full_name"`
	Church            string    `json:"church"`
	City              string    `json:"city"`
	Phone             string    `json:"phone,omitempty"`
	Email             string    `json:"email,omitempty"`
	ContactMethod     string    `json:"contact_method,omitempty"`
	FirstTimeAttendee string    `json:"first_time_attendee,omitempty"`
	RecordedAt        time.Time `json:"recorded_at"`
}

type Publisher interface {
	RegistrationRecorded(ctx context.Context, reg *model.Registration, correlationID string) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	now      func() time.Time
}

func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: producer, now: time.Now}
}

func (p *kafkaPublisher) RegistrationRecorded(ctx context.Context, reg *model.Registration, correlationID string) error {
	msg, err := NewRecordedMessage(reg, correlationID, p.now())
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// NewRecordedMessage keys the event by phone so that repeated registrations
// of one attendee land on the same partition. Without a phone the name is
// used.
func NewRecordedMessage(reg *model.Registration, correlationID string, at time.Time) (kafka.Message, error) {
	key := reg.Phone
	if key == "" {
		key = strings.ToLower(reg.FullName)
	}

	return kafka.NewMessage().
		WithKey(key).
		WithValue(RegistrationRecorded{
			FullName:          reg.FullName,
			Church:            reg.Church,
			City:              reg.City,
			Phone:             reg.Phone,
			Email:             reg.Email,
			ContactMethod:     reg.ContactMethod,
			FirstTimeAttendee: reg.FirstTimeAttendee,
			RecordedAt:        at.UTC(),
		}).
		WithEventID("").
		WithEventType(EventRegistrationRecorded).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(correlationID).
		Build()
}

type nopPublisher struct{}

// NewNopPublisher is used when no Kafka broker is configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) RegistrationRecorded(context.Context, *model.Registration, string) error {
	return nil
}
