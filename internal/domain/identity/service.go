package identity

import (
	"context"

	"github.com/ehr/fhirweb/internal/platform/fhir"
)

// ConnectionSource hands out the FHIR connection to use for one call.
type ConnectionSource interface {
	Current() fhir.Connection
}

type Service struct {
	target ConnectionSource
}

func NewService(target ConnectionSource) *Service {
	return &Service{target: target}
}

// -- Practitioner --

func (s *Service) CreatePractitioner(ctx context.Context, in PractitionerInput) (string, error) {
	return s.target.Current().Create(ctx, in.ToFHIR())
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (string, error) {
	return s.target.Current().Create(ctx, in.ToFHIR())
}

// -- Search --

func (s *Service) Search(ctx context.Context, criteria fhir.SearchCriteria) ([]fhir.Person, error) {
	return s.target.Current().Search(ctx, criteria.ResourceType, criteria.Params())
}
