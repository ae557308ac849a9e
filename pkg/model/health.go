package model

const (
	HealthStatusHealthy  = "healthy"
	HealthStatusDegraded = "degraded"

	ServiceOperational    = "operational"
	ServiceNotInitialized = "not_initialized"
	ServiceErrorPrefix    = "error: "
)

type HealthReport struct {
	Status   string         `json:"status"`
	Services HealthServices `json:"services"`
}

type HealthServices struct {
	API          string `json:"api"`
	GoogleSheets string `json:"google_sheets"`
	SMS          string `json:"sms"`
}
