package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMNotifyClient_SendQuick(t *testing.T) {
	var got SMSRequest
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotKey = r.URL.Query().Get("key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"success","code":"2000","message":"messages sent successfully"}`))
	}))
	defer srv.Close()

	c := NewMNotifyClient(srv.URL, "secret key", "IYC-C 2025", time.Second)
	resp, err := c.SendQuick(context.Background(), "0241234567", "hello")
	require.NoError(t, err)

	assert.True(t, resp.Accepted())
	assert.Equal(t, "secret key", gotKey)
	assert.Equal(t, []string{"0241234567"}, got.Recipient)
	assert.Equal(t, "IYC-C 2025", got.Sender)
	assert.Equal(t, "hello", got.Message)
	assert.False(t, got.IsSchedule)
	assert.Empty(t, got.ScheduleDate)
}

func TestMNotifyClient_EndpointWithQuery(t *testing.T) {
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotVersion = r.URL.Query().Get("v")
		_, _ = w.Write([]byte(`{"code":2000}`))
	}))
	defer srv.Close()

	c := NewMNotifyClient(srv.URL+"/?v=2", "k", "S", time.Second)
	resp, err := c.SendQuick(context.Background(), "0241234567", "hi")
	require.NoError(t, err)

	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "2", gotVersion)
	assert.True(t, resp.Accepted(), "numeric code must be understood")
}

func TestSMSResponse_Accepted(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"code":"2000"}`, true},
		{`{"status":"success"}`, true},
		{`{"code":2000}`, true},
		{`{"code":"1002","status":"error","message":"Insufficient balance"}`, false},
		{`{"code":null}`, false},
		{`{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var resp SMSResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			assert.Equal(t, tt.want, resp.Accepted())
		})
	}
}

func TestMNotifyClient_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := NewMNotifyClient(srv.URL, "k", "S", time.Second)
	_, err := c.SendQuick(context.Background(), "0241234567", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestMNotifyClient_Ready(t *testing.T) {
	assert.False(t, NewMNotifyClient("http://x", "", "S", time.Second).Ready())
	assert.True(t, NewMNotifyClient("http://x", "k", "S", time.Second).Ready())

	var nilClient *MNotifyClient
	assert.False(t, nilClient.Ready())
}

func TestMNotifyClient_Settings(t *testing.T) {
	c := NewMNotifyClient("https://api.mnotify.com/api/sms/quick", "k", "IYC-C 2025", time.Second)

	assert.Equal(t, "https://api.mnotify.com/api/sms/quick", c.Endpoint())
	assert.Equal(t, "IYC-C 2025", c.Sender())
}
