package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const mnotifySuccessCode = "2000"

// SMSRequest is the body of the mNotify quick SMS endpoint.
type SMSRequest struct {
	Recipient    []string `json:"recipient"`
	Sender       string   `json:"sender"`
	Message      string   `json:"message"`
	IsSchedule   bool     `json:"is_schedule"`
	ScheduleDate string   `json:"schedule_date"`
}

type SMSResponse struct {
	Code    GatewayCode `json:"code"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
}

// Accepted reports whether the gateway took the message.
func (r *SMSResponse) Accepted() bool {
	return string(r.Code) == mnotifySuccessCode || r.Status == "success"
}

// GatewayCode accepts the code either as a JSON string or as a number.
type GatewayCode string

func (c *GatewayCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = GatewayCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid gateway code %s: %w", data, err)
	}
	*c = GatewayCode(n.String())
	return nil
}

type MNotifyClient struct {
	http   *HttpClient
	apiKey string
	sender string
}

func NewMNotifyClient(endpoint, apiKey, sender string, timeout time.Duration) *MNotifyClient {
	return &MNotifyClient{
		http:   NewHttpClient(endpoint, timeout),
		apiKey: apiKey,
		sender: sender,
	}
}

// Ready reports whether an API key is configured.
func (c *MNotifyClient) Ready() bool {
	return c != nil && c.apiKey != ""
}

func (c *MNotifyClient) Sender() string {
	return c.sender
}

func (c *MNotifyClient) Endpoint() string {
	return c.http.BaseURL
}

// SendQuick posts one immediate message. The gateway answer is decoded
// whatever the HTTP status, since mNotify reports failures in the body.
func (c *MNotifyClient) SendQuick(ctx context.Context, recipient, message string) (*SMSResponse, error) {
	sep := "?"
	if strings.Contains(c.http.BaseURL, "?") {
		sep = "&"
	}

	resp, err := c.http.POST(ctx, sep+"key="+url.QueryEscape(c.apiKey), SMSRequest{
		Recipient:    []string{recipient},
		Sender:       c.sender,
		Message:      message,
		IsSchedule:   false,
		ScheduleDate: "",
	})
	if err != nil {
		return nil, err
	}

	var out SMSResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("failed to decode mNotify response (status %d): %w", resp.StatusCode, err)
	}
	return &out, nil
}
