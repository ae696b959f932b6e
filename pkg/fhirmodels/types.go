package fhirmodels

// Common FHIR value set constants used across the application.

// ResourceType names the FHIR resource kinds the forms can create and search.
type ResourceType string

const (
	ResourceTypePatient      ResourceType = "Patient"
	ResourceTypePractitioner ResourceType = "Practitioner"
)

// ParseResourceType maps a form selector to a resource kind. Anything other
// than "Practitioner" selects Patient.
func ParseResourceType(s string) ResourceType {
	if s == string(ResourceTypePractitioner) {
		return ResourceTypePractitioner
	}
	return ResourceTypePatient
}

func (r ResourceType) String() string {
	return string(r)
}

// NameUseOfficial is the HumanName.use code for names entered on the forms.
const NameUseOfficial = "official"

// AdministrativeGender codes.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

// Genders lists the AdministrativeGender codes in the order the forms offer them.
var Genders = []string{GenderMale, GenderFemale, GenderOther, GenderUnknown}
