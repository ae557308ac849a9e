package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confreg/pkg/client"
	"confreg/pkg/logger"
)

const conference = "IYC Conference 2025"

type fakeGateway struct {
	ready     bool
	resp      *client.SMSResponse
	err       error
	recipient string
	message   string
	calls     int
}

func (g *fakeGateway) Ready() bool { return g.ready }

func (g *fakeGateway) SendQuick(ctx context.Context, recipient, message string) (*client.SMSResponse, error) {
	g.calls++
	g.recipient = recipient
	g.message = message
	return g.resp, g.err
}

func TestConfirmationMessage(t *testing.T) {
	assert.Equal(t,
		"Hello AMA!\n\nThank you for registering for IYC Conference 2025! Your registration is confirmed.\n\n",
		ConfirmationMessage("Ama Boateng", conference),
	)
	assert.Contains(t, ConfirmationMessage("   ", conference), "Hello GUEST!")
	assert.Contains(t, ConfirmationMessage("", conference), "Hello GUEST!")
}

func TestSendConfirmation_NotInitialized(t *testing.T) {
	gw := &fakeGateway{ready: false}
	n := newSMSNotifier(gw, conference, logger.NewNop())

	sent, msg := n.SendConfirmation(context.Background(), "0241234567", "Ama Boateng")

	assert.False(t, sent)
	assert.Equal(t, MsgNotInitialized, msg)
	assert.Zero(t, gw.calls, "no network call without a key")
}

func TestSendConfirmation_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		resp     *client.SMSResponse
		err      error
		wantSent bool
		wantMsg  string
		wantTo   string
	}{
		{
			name:     "accepted by code",
			phone:    "0241234567",
			resp:     &client.SMSResponse{Code: "2000"},
			wantSent: true,
			wantMsg:  "SMS sent successfully to 0241234567",
			wantTo:   "0241234567",
		},
		{
			name:     "accepted by status, international number normalized",
			phone:    "+233241234567",
			resp:     &client.SMSResponse{Status: "success"},
			wantSent: true,
			wantMsg:  "SMS sent successfully to 0241234567",
			wantTo:   "0241234567",
		},
		{
			name:    "gateway rejection",
			phone:   "0241234567",
			resp:    &client.SMSResponse{Code: "1007", Status: "error", Message: "Insufficient balance"},
			wantMsg: "mNotify error: Insufficient balance",
			wantTo:  "0241234567",
		},
		{
			name:    "gateway rejection without reason",
			phone:   "233241234567",
			resp:    &client.SMSResponse{Status: "error"},
			wantMsg: "mNotify error: unknown gateway error",
			wantTo:  "0241234567",
		},
		{
			name:    "timeout",
			phone:   "0241234567",
			err:     context.DeadlineExceeded,
			wantMsg: MsgTimeout,
			wantTo:  "0241234567",
		},
		{
			name:    "network",
			phone:   "0241234567",
			err:     errors.Join(client.ErrTransport, errors.New("connection refused")),
			wantMsg: "Network error: request failed\nconnection refused",
			wantTo:  "0241234567",
		},
		{
			name:    "other failure",
			phone:   "0241234567",
			err:     errors.New("failed to decode mNotify response"),
			wantMsg: "Failed to send SMS: failed to decode mNotify response",
			wantTo:  "0241234567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{ready: true, resp: tt.resp, err: tt.err}
			n := newSMSNotifier(gw, conference, logger.NewNop())

			sent, msg := n.SendConfirmation(context.Background(), tt.phone, "Ama Boateng")

			assert.Equal(t, tt.wantSent, sent)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, tt.wantTo, gw.recipient)
			assert.Contains(t, gw.message, "Hello AMA!")
		})
	}
}

func TestSendConfirmation_ThroughMNotify(t *testing.T) {
	var body client.SMSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"status":"success","code":"2000"}`))
	}))
	defer srv.Close()

	gw := client.NewMNotifyClient(srv.URL, "key", "IYC-C 2025", time.Second)
	n := newSMSNotifier(gw, conference, logger.NewNop())

	sent, msg := n.SendConfirmation(context.Background(), "+233 24 123 4567", "kofi mensah")

	require.True(t, sent, msg)
	assert.Equal(t, []string{"0241234567"}, body.Recipient)
	assert.Equal(t, "IYC-C 2025", body.Sender)
	assert.Contains(t, body.Message, "Hello KOFI!")
}

func TestSendConfirmation_GatewayTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	gw := client.NewMNotifyClient(srv.URL, "key", "IYC-C 2025", 50*time.Millisecond)
	n := newSMSNotifier(gw, conference, logger.NewNop())

	sent, msg := n.SendConfirmation(context.Background(), "0241234567", "Ama")

	assert.False(t, sent)
	assert.Equal(t, MsgTimeout, msg)
}

func TestReady(t *testing.T) {
	assert.False(t, newSMSNotifier(nil, conference, logger.NewNop()).Ready())

	var missing *client.MNotifyClient
	assert.False(t, newSMSNotifier(missing, conference, logger.NewNop()).Ready())

	assert.True(t, newSMSNotifier(&fakeGateway{ready: true}, conference, logger.NewNop()).Ready())
}
