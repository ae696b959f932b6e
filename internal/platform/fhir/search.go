package fhir

import (
	"net/url"

	"github.com/ehr/fhirweb/pkg/fhirmodels"
)

// Search parameter names sent to the server.
const (
	ParamFamily     = "family"
	ParamGiven      = "given"
	ParamBirthdate  = "birthdate"
	ParamGender     = "gender"
	ParamPostalCode = "address-postalcode"
	ParamCity       = "address-city"
	ParamCountry    = "address-country"
)

// SearchCriteria is the set of optional filters the search form offers.
type SearchCriteria struct {
	ResourceType fhirmodels.ResourceType
	Family       string
	Given        string
	Birthdate    string
	Gender       string
	PostalCode   string
	City         string
	Country      string
}

// Params returns the non-empty filters keyed by their FHIR search parameter
// name. When every filter is empty the result has no keys.
func (s SearchCriteria) Params() url.Values {
	params := url.Values{}
	for _, f := range []struct {
		name  string
		value string
	}{
		{ParamFamily, s.Family},
		{ParamGiven, s.Given},
		{ParamBirthdate, s.Birthdate},
		{ParamGender, s.Gender},
		{ParamPostalCode, s.PostalCode},
		{ParamCity, s.City},
		{ParamCountry, s.Country},
	} {
		if f.value != "" {
			params.Set(f.name, f.value)
		}
	}
	return params
}
