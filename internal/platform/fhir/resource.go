package fhir

import "strings"

// Form-sourced fields carry no omitempty: an empty submission is sent as ""
// and the FHIR server decides whether to accept it.

type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Family string   `json:"family"`
	Given  []string `json:"given"`
}

type Address struct {
	Line       []string `json:"line"`
	City       string   `json:"city"`
	PostalCode string   `json:"postalCode"`
	Country    string   `json:"country"`
}

// Person is the shared shape of the Patient and Practitioner resources the
// application sends and displays. Fields the forms do not touch are left out;
// search results decode into it lossily.
type Person struct {
	ResourceType string      `json:"resourceType"`
	ID           string      `json:"id,omitempty"`
	Name         []HumanName `json:"name,omitempty"`
	Gender       string      `json:"gender"`
	BirthDate    *Date       `json:"birthDate,omitempty"`
	Address      []Address   `json:"address,omitempty"`
}

// DisplayName returns "Given Family" for the first name entry.
func (p Person) DisplayName() string {
	if len(p.Name) == 0 {
		return ""
	}
	n := p.Name[0]
	parts := append([]string{}, n.Given...)
	if n.Family != "" {
		parts = append(parts, n.Family)
	}
	return strings.Join(parts, " ")
}

// CapabilityStatement holds the parts of a server's metadata response the
// ping command reports.
type CapabilityStatement struct {
	ResourceType string `json:"resourceType"`
	FhirVersion  string `json:"fhirVersion"`
	Software     *struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"software,omitempty"`
}
