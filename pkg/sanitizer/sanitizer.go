package sanitizer

import (
	"strings"

	"confreg/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var phonePipeline = Pipeline{
	strings.TrimSpace,
	CleanPhone,
	Sanitize,
}

// SanitizeRegistration escapes the free-text fields of a validated request.
// Email, contact method and first-time attendee are already constrained and
// are only trimmed.
func SanitizeRegistration(req model.RegistrationRequest) model.Registration {
	return model.Registration{
		FullName:          Sanitize(req.FullName),
		Church:            Sanitize(req.Church),
		City:              Sanitize(req.City),
		Phone:             phonePipeline.Apply(req.Phone),
		Institution:       Sanitize(req.Institution),
		Leader:            Sanitize(req.Leader),
		Email:             strings.TrimSpace(req.Email),
		ContactMethod:     strings.TrimSpace(req.ContactMethod),
		FirstTimeAttendee: strings.TrimSpace(req.FirstTimeAttendee),
		PrayerRequest:     Sanitize(req.PrayerRequest),
	}
}
