package client

import (
	"time"

	"confreg/pkg/logger"
)

// Client holds the outbound integrations shared by the whole process.
type Client struct {
	Sheets  *GoogleSheets
	MNotify *MNotifyClient
}

func NewClient() *Client {
	return &Client{}
}

// SetSheets only records the credentials location. Authentication happens
// lazily so a bad key degrades health instead of stopping the process.
func (c *Client) SetSheets(log *logger.Logger, credentialsPath, sheetID string) {
	if credentialsPath == "" || sheetID == "" {
		log.Warn("Google Sheets is not fully configured, registrations will fail until it is",
			"credentials_path_set", credentialsPath != "",
			"sheet_id_set", sheetID != "",
		)
	}
	c.Sheets = NewGoogleSheets(credentialsPath)
}

func (c *Client) SetMNotify(log *logger.Logger, endpoint, apiKey, sender string, timeout time.Duration) {
	c.MNotify = NewMNotifyClient(endpoint, apiKey, sender, timeout)
	if !c.MNotify.Ready() {
		log.Warn("mNotify API key is not set, confirmation SMS are disabled")
		return
	}
	log.Info("mNotify SMS client initialized successfully", "endpoint", endpoint, "sender", sender)
}
