package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confreg/pkg/kafka"
	"confreg/pkg/model"
)

func TestNewRecordedMessage(t *testing.T) {
	at := time.Date(2025, 12, 24, 9, 0, 0, 0, time.UTC)
	reg := &model.Registration{FullName: "Ama Boateng", Church: "Grace Chapel", City: "Accra", Phone: "0241234567"}

	msg, err := NewRecordedMessage(reg, "req-1", at)
	require.NoError(t, err)

	assert.Equal(t, "0241234567", msg.Key)
	assert.Equal(t, EventRegistrationRecorded, msg.GetEventType())
	assert.Equal(t, "req-1", msg.GetCorrelationID())
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, SchemaVersion, msg.Headers[kafka.HeaderSchemaVersion])

	var payload RegistrationRecorded
	require.NoError(t, msg.DecodeValue(&payload))
	assert.Equal(t, "Ama Boateng", payload.FullName)
	assert.True(t, payload.RecordedAt.Equal(at))
}

func TestNewRecordedMessage_KeyWithoutPhone(t *testing.T) {
	msg, err := NewRecordedMessage(&model.Registration{FullName: "Ama Boateng"}, "", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "ama boateng", msg.Key)
	assert.Empty(t, msg.GetCorrelationID())
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NewNopPublisher().RegistrationRecorded(context.Background(), &model.Registration{}, ""))
}
