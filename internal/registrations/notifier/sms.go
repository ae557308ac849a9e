package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	registrationserrors "confreg/internal/registrations/errors"
	"confreg/pkg/client"
	"confreg/pkg/config"
	"confreg/pkg/logger"
	"confreg/pkg/sanitizer"
)

const (
	MsgNotInitialized = "SMS service not initialized. Check mNotify API key."
	MsgTimeout        = "Request timeout - mNotify API did not respond in time"
	unknownGatewayErr = "unknown gateway error"
	defaultFirstName  = "Guest"
)

// Gateway sends one message to one recipient.
type Gateway interface {
	Ready() bool
	SendQuick(ctx context.Context, recipient, message string) (*client.SMSResponse, error)
}

// Notifier sends best-effort confirmations. Failures are reported in the
// result, never as an error.
type Notifier interface {
	SendConfirmation(ctx context.Context, phone, fullName string) (sent bool, message string)
	Ready() bool
}

type smsNotifier struct {
	gateway        Gateway
	conferenceName string
	log            *logger.Logger
}

func NewSMSNotifier(cfg *config.Config) Notifier {
	return newSMSNotifier(cfg.Client.MNotify, cfg.ConferenceName, cfg.Log)
}

func newSMSNotifier(gateway Gateway, conferenceName string, log *logger.Logger) *smsNotifier {
	return &smsNotifier{
		gateway:        gateway,
		conferenceName: conferenceName,
		log:            log,
	}
}

func (n *smsNotifier) Ready() bool {
	return n.gateway != nil && n.gateway.Ready()
}

func (n *smsNotifier) SendConfirmation(ctx context.Context, phone, fullName string) (bool, string) {
	if !n.Ready() {
		n.log.Error(MsgNotInitialized, "error", registrationserrors.ErrNotInitialized)
		return false, MsgNotInitialized
	}

	to, recognized := sanitizer.LocalPhone(phone)
	if !recognized {
		n.log.Warn("Unknown phone format received, normalizing")
	}

	resp, err := n.gateway.SendQuick(ctx, to, ConfirmationMessage(fullName, n.conferenceName))
	if err != nil {
		msg := describeSendError(err)
		n.log.Error("SMS send failed", "error", err, "reason", msg)
		return false, msg
	}

	if !resp.Accepted() {
		reason := resp.Message
		if reason == "" {
			reason = unknownGatewayErr
		}
		n.log.Error("mNotify API error", "code", string(resp.Code), "status", resp.Status, "message", reason)
		return false, "mNotify error: " + reason
	}

	n.log.Info("SMS sent successfully via mNotify")
	return true, "SMS sent successfully to " + to
}

func describeSendError(err error) string {
	switch {
	case client.IsTimeout(err):
		return MsgTimeout
	case errors.Is(err, client.ErrTransport):
		return fmt.Sprintf("Network error: %v", err)
	default:
		return fmt.Sprintf("Failed to send SMS: %v", err)
	}
}

// ConfirmationMessage greets the attendee by their upper-cased first name.
func ConfirmationMessage(fullName, conferenceName string) string {
	firstName := defaultFirstName
	if fields := strings.Fields(fullName); len(fields) > 0 {
		firstName = fields[0]
	}
	return fmt.Sprintf(
		"Hello %s!\n\nThank you for registering for %s! Your registration is confirmed.\n\n",
		strings.ToUpper(firstName),
		conferenceName,
	)
}
