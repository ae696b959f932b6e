package identity

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/fhirweb/internal/platform/fhir"
	"github.com/ehr/fhirweb/internal/platform/middleware"
	"github.com/ehr/fhirweb/internal/platform/render"
	"github.com/ehr/fhirweb/pkg/fhirmodels"
)

// CreateView backs the practitioner and patient forms.
type CreateView struct {
	Message    string
	ResourceID string
	Failed     bool
}

// SearchView backs the empty search form and search failures.
type SearchView struct {
	Message string
	Failed  bool
}

// ResultsView backs the search results page.
type ResultsView struct {
	ResourceType fhirmodels.ResourceType
	Results      []fhir.Person
}

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/new_practitioner", h.NewPractitionerForm)
	g.POST("/new_practitioner", h.CreatePractitioner)
	g.GET("/new_patient", h.NewPatientForm)
	g.POST("/new_patient", h.CreatePatient)
	g.GET("/search", h.SearchForm)
	g.POST("/search", h.Search)
}

func (h *Handler) NewPractitionerForm(c echo.Context) error {
	return c.Render(http.StatusOK, render.PageNewPractitioner, CreateView{})
}

func (h *Handler) CreatePractitioner(c echo.Context) error {
	in, err := personInput(c)
	if err != nil {
		return err
	}

	id, err := h.svc.CreatePractitioner(c.Request().Context(), PractitionerInput{in})
	view, err := h.createView(c, fhirmodels.ResourceTypePractitioner, id, err)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, render.PageNewPractitioner, view)
}

func (h *Handler) NewPatientForm(c echo.Context) error {
	return c.Render(http.StatusOK, render.PageNewPatient, CreateView{})
}

func (h *Handler) CreatePatient(c echo.Context) error {
	in, err := personInput(c)
	if err != nil {
		return err
	}

	id, err := h.svc.CreatePatient(c.Request().Context(), PatientInput{in})
	view, err := h.createView(c, fhirmodels.ResourceTypePatient, id, err)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, render.PageNewPatient, view)
}

func (h *Handler) SearchForm(c echo.Context) error {
	return c.Render(http.StatusOK, render.PageSearch, SearchView{})
}

func (h *Handler) Search(c echo.Context) error {
	form, err := formParams(c)
	if err != nil {
		return err
	}
	criteria, err := SearchCriteriaFromForm(form)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	results, err := h.svc.Search(c.Request().Context(), criteria)
	if err != nil {
		msg, err := h.remoteFailure(c, "search", err)
		if err != nil {
			return err
		}
		return c.Render(http.StatusOK, render.PageSearch, SearchView{Message: msg, Failed: true})
	}

	return c.Render(http.StatusOK, render.PageSearchResults, ResultsView{
		ResourceType: criteria.ResourceType,
		Results:      results,
	})
}

func personInput(c echo.Context) (PersonInput, error) {
	form, err := formParams(c)
	if err != nil {
		return PersonInput{}, err
	}
	in, err := PersonInputFromForm(form)
	if err != nil {
		return PersonInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return in, nil
}

// formParams parses the submitted form. HTTP errors raised while reading the
// body, such as the body limit's 413, are passed through; anything else is a
// 400.
func formParams(c echo.Context) (url.Values, error) {
	form, err := c.FormParams()
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form body").SetInternal(err)
	}
	return form, nil
}

// createView turns the outcome of a create call into the page message.
// Errors other than remote-call failures are returned unchanged.
func (h *Handler) createView(c echo.Context, rt fhirmodels.ResourceType, id string, err error) (CreateView, error) {
	if err != nil {
		msg, err := h.remoteFailure(c, "create", err)
		if err != nil {
			return CreateView{}, err
		}
		return CreateView{Message: msg, Failed: true}, nil
	}

	h.logger.Info().
		Str("request_id", middleware.RequestIDFrom(c)).
		Str("resource_type", rt.String()).
		Str("id", id).
		Msg("resource created")

	return CreateView{
		Message:    fmt.Sprintf("%s successfully created with ID: %s", rt, id),
		ResourceID: id,
	}, nil
}

func (h *Handler) remoteFailure(c echo.Context, op string, err error) (string, error) {
	rerr, ok := fhir.AsRemoteCallError(err)
	if !ok {
		return "", err
	}
	h.logger.Warn().
		Err(err).
		Str("request_id", middleware.RequestIDFrom(c)).
		Str("operation", op).
		Str("resource_type", rerr.ResourceType).
		Msg("FHIR server call failed")
	return fmt.Sprintf("An error occurred: %s", err), nil
}
