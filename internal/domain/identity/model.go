package identity

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ehr/fhirweb/internal/platform/fhir"
	"github.com/ehr/fhirweb/pkg/fhirmodels"
)

// Form field names shared by the creation and search forms.
const (
	FieldLastName     = "last_name"
	FieldGivenName    = "given_name"
	FieldGender       = "gender"
	FieldBirthDate    = "birth_date"
	FieldCity         = "city"
	FieldPostcode     = "postcode"
	FieldCountry      = "country"
	FieldResourceType = "resource_type"
)

// PersonInput is the demographic data the creation forms collect. Values are
// carried exactly as submitted; the FHIR server does the validation.
type PersonInput struct {
	FamilyName string
	GivenName  string
	Gender     string
	BirthDate  string
	City       string
	PostalCode string
	Country    string
}

// PractitionerInput builds a Practitioner with an address that has no lines.
type PractitionerInput struct {
	PersonInput
}

// PatientInput builds a Patient whose single address line is
// "<postcode> <city> <country>".
type PatientInput struct {
	PersonInput
}

// MissingFieldError lists required form fields absent from a submission.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required form field(s): %s", strings.Join(e.Fields, ", "))
}

// PersonInputFromForm reads the seven creation fields. A field that is absent
// is an error; one that is present but empty is kept as "".
func PersonInputFromForm(form url.Values) (PersonInput, error) {
	var missing []string
	get := func(name string) string {
		v, ok := form[name]
		if !ok || len(v) == 0 {
			missing = append(missing, name)
			return ""
		}
		return v[0]
	}

	in := PersonInput{
		FamilyName: get(FieldLastName),
		GivenName:  get(FieldGivenName),
		Gender:     get(FieldGender),
		BirthDate:  get(FieldBirthDate),
		City:       get(FieldCity),
		PostalCode: get(FieldPostcode),
		Country:    get(FieldCountry),
	}
	if len(missing) > 0 {
		return PersonInput{}, &MissingFieldError{Fields: missing}
	}
	return in, nil
}

func (in PersonInput) toFHIR(resourceType fhirmodels.ResourceType, lines []string) *fhir.Person {
	return &fhir.Person{
		ResourceType: resourceType.String(),
		Name: []fhir.HumanName{{
			Use:    fhirmodels.NameUseOfficial,
			Family: in.FamilyName,
			Given:  []string{in.GivenName},
		}},
		Gender:    in.Gender,
		BirthDate: fhir.NewDate(in.BirthDate),
		Address: []fhir.Address{{
			Line:       lines,
			City:       in.City,
			PostalCode: in.PostalCode,
			Country:    in.Country,
		}},
	}
}

func (p PractitionerInput) ToFHIR() *fhir.Person {
	return p.toFHIR(fhirmodels.ResourceTypePractitioner, []string{})
}

func (p PatientInput) ToFHIR() *fhir.Person {
	line := p.PostalCode + " " + p.City + " " + p.Country
	return p.toFHIR(fhirmodels.ResourceTypePatient, []string{line})
}

// SearchCriteriaFromForm reads the search form. resource_type must be
// present; every filter is optional and empty ones are dropped later by
// SearchCriteria.Params.
func SearchCriteriaFromForm(form url.Values) (fhir.SearchCriteria, error) {
	if _, ok := form[FieldResourceType]; !ok {
		return fhir.SearchCriteria{}, &MissingFieldError{Fields: []string{FieldResourceType}}
	}
	return fhir.SearchCriteria{
		ResourceType: fhirmodels.ParseResourceType(form.Get(FieldResourceType)),
		Family:       form.Get(FieldLastName),
		Given:        form.Get(FieldGivenName),
		Birthdate:    form.Get(FieldBirthDate),
		Gender:       form.Get(FieldGender),
		PostalCode:   form.Get(FieldPostcode),
		City:         form.Get(FieldCity),
		Country:      form.Get(FieldCountry),
	}, nil
}
