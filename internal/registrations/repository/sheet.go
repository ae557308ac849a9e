package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	registrationserrors "confreg/internal/registrations/errors"
	"confreg/pkg/client"
	"confreg/pkg/config"
	"confreg/pkg/logger"
	"confreg/pkg/model"
)

const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"

	TimestampLayout = "2006-01-02 15:04:05"

	// CompensationTimeout bounds the Failed row, which runs on its own
	// context because the append's deadline has usually passed by then.
	CompensationTimeout = 5 * time.Second
)

// Header is written to row 1 of an empty worksheet.
var Header = []string{
	"Timestamp",
	"Full Name",
	"Phone",
	"Church",
	"Institution",
	"City/Location",
	"Leader/Inviter",
	"Email",
	"Contact Method",
	"First-Time Attendee",
	"Prayer Request",
	"Status",
}

type RegistrationRepository interface {
	Append(ctx context.Context, reg *model.Registration) error
	Ping(ctx context.Context) error
}

type sheetRegistrationRepository struct {
	auth    client.SheetsAuthenticator
	sheetID string
	log     *logger.Logger
	now     func() time.Time

	mu        sync.Mutex
	session   client.SheetsSession
	worksheet client.Worksheet
}

func NewSheetRegistrationRepository(cfg *config.Config) RegistrationRepository {
	return newSheetRegistrationRepository(cfg.Client.Sheets, cfg.SheetID, cfg.Log)
}

func newSheetRegistrationRepository(auth client.SheetsAuthenticator, sheetID string, log *logger.Logger) *sheetRegistrationRepository {
	return &sheetRegistrationRepository{
		auth:    auth,
		sheetID: sheetID,
		log:     log,
		now:     time.Now,
	}
}

// NewRow lays a registration out in Header order.
func NewRow(reg *model.Registration, at time.Time, status string) []string {
	return []string{
		at.Format(TimestampLayout),
		reg.FullName,
		reg.Phone,
		reg.Church,
		reg.Institution,
		reg.City,
		reg.Leader,
		reg.Email,
		reg.ContactMethod,
		reg.FirstTimeAttendee,
		reg.PrayerRequest,
		status,
	}
}

// Append writes one Success row. When anything fails after the worksheet is
// known, a single Failed row is attempted before the error is returned.
func (r *sheetRegistrationRepository) Append(ctx context.Context, reg *model.Registration) error {
	row := NewRow(reg, r.now(), StatusSuccess)

	ws, err := r.openWorksheet(ctx)
	if err != nil {
		return r.fail(ctx, ws, row, err)
	}

	if err := ws.AppendRow(ctx, row); err != nil {
		return r.fail(ctx, ws, row, err)
	}

	r.log.Info("Registration added to Google Sheets", "worksheet", ws.Title())
	return nil
}

func (r *sheetRegistrationRepository) fail(ctx context.Context, ws client.Worksheet, row []string, cause error) error {
	r.log.Error("Failed to append registration to Google Sheets", "error", cause)

	if ws != nil {
		failed := append([]string(nil), row...)
		failed[len(failed)-1] = StatusFailed

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CompensationTimeout)
		defer cancel()
		if err := ws.AppendRow(ctx, failed); err != nil {
			r.log.Warn("Failed to record failed registration row", "error", err)
		}
	}

	r.invalidate(ws)
	return fmt.Errorf("%w: %w", registrationserrors.ErrPersistence, cause)
}

// Ping authenticates and opens the worksheet on a fresh session. The cached
// session is left untouched.
func (r *sheetRegistrationRepository) Ping(ctx context.Context) error {
	session, err := r.authenticate(ctx)
	if err != nil {
		return err
	}
	_, err = r.open(ctx, session)
	return err
}

// openWorksheet returns the cached worksheet, establishing the session,
// opening the sheet and writing the header row as needed. The worksheet is
// returned alongside a header error so the caller can still record a Failed
// row.
func (r *sheetRegistrationRepository) openWorksheet(ctx context.Context) (client.Worksheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.worksheet != nil {
		return r.worksheet, nil
	}

	if r.session == nil {
		session, err := r.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		r.session = session
	}

	ws, err := r.open(ctx, r.session)
	if err != nil {
		r.session = nil
		return nil, err
	}

	if err := r.ensureHeader(ctx, ws); err != nil {
		return ws, err
	}

	r.log.Info("Opened Google Sheet", "worksheet", ws.Title())
	r.worksheet = ws
	return ws, nil
}

func (r *sheetRegistrationRepository) authenticate(ctx context.Context) (client.SheetsSession, error) {
	session, err := r.auth.Authenticate(ctx)
	if err != nil {
		r.log.Error("Failed to authenticate with Google Sheets", "error", err)
		return nil, fmt.Errorf("%w: %w", registrationserrors.ErrAuthentication, err)
	}
	return session, nil
}

func (r *sheetRegistrationRepository) open(ctx context.Context, session client.SheetsSession) (client.Worksheet, error) {
	if r.sheetID == "" {
		return nil, fmt.Errorf("%w: GOOGLE_SHEET_ID is empty", registrationserrors.ErrSheetNotFound)
	}

	ws, err := session.OpenFirstWorksheet(ctx, r.sheetID)
	if err != nil {
		r.log.Error("Failed to open Google Sheet", "error", err)
		if errors.Is(err, client.ErrSpreadsheetNotFound) {
			return nil, fmt.Errorf("%w: %w", registrationserrors.ErrSheetNotFound, err)
		}
		return nil, fmt.Errorf("failed to open google sheet: %w", err)
	}
	return ws, nil
}

func (r *sheetRegistrationRepository) ensureHeader(ctx context.Context, ws client.Worksheet) error {
	first, err := ws.FirstRow(ctx)
	if err != nil {
		return err
	}
	if len(first) > 0 {
		return nil
	}

	if err := ws.AppendRow(ctx, Header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	r.log.Info("Created headers in Google Sheet", "worksheet", ws.Title())
	return nil
}

// invalidate drops ws from the cache so the next append reopens the sheet.
func (r *sheetRegistrationRepository) invalidate(ws client.Worksheet) {
	if ws == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.worksheet == ws {
		r.worksheet = nil
		r.session = nil
	}
}
