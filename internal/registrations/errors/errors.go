package errors

import "errors"

var (
	ErrAuthentication = errors.New("google sheets authentication failed, check the service account credentials file")

	ErrSheetNotFound = errors.New("google sheet not found, check GOOGLE_SHEET_ID and that the sheet is shared with the service account email")

	ErrPersistence = errors.New("failed to save to google sheets")

	ErrNotInitialized = errors.New("sms service not initialized")
)
