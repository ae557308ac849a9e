package service

import (
	"context"

	"confreg/pkg/model"
)

// Health pings the sheet on a fresh session and checks the SMS credential.
// It never changes cached state.
func (s *registrationService) Health(ctx context.Context) *model.HealthReport {
	report := &model.HealthReport{
		Status: model.HealthStatusHealthy,
		Services: model.HealthServices{
			API:          model.ServiceOperational,
			GoogleSheets: model.ServiceOperational,
			SMS:          model.ServiceOperational,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, s.sheetsTimeout)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		s.log.Error("Google Sheets health check failed", "error", err)
		report.Services.GoogleSheets = model.ServiceErrorPrefix + err.Error()
		report.Status = model.HealthStatusDegraded
	}

	if !s.notifier.Ready() {
		report.Services.SMS = model.ServiceNotInitialized
		report.Status = model.HealthStatusDegraded
	}

	return report
}
