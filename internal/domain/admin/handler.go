package admin

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/fhirweb/internal/platform/fhir"
	"github.com/ehr/fhirweb/internal/platform/middleware"
	"github.com/ehr/fhirweb/internal/platform/render"
)

// HomeTitle is the heading of the landing page.
const HomeTitle = "FHIR Server"

// FieldServerURL is the form field carrying a new FHIR base URL.
const FieldServerURL = "server_url"

// ServerTarget is the swappable FHIR server the application talks to.
type ServerTarget interface {
	Current() fhir.Connection
	Replace(baseURL string) (fhir.Connection, error)
}

type HomeView struct {
	Title string
}

type ServerView struct {
	ServerURL string
	AppID     string
}

type Handler struct {
	target ServerTarget
	logger zerolog.Logger
}

func NewHandler(target ServerTarget, logger zerolog.Logger) *Handler {
	return &Handler{target: target, logger: logger}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Home)
	g.GET("/server", h.GetServer)
	g.POST("/server", h.UpdateServer)
	g.GET("/health", h.Health)
}

func (h *Handler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, render.PageIndex, HomeView{Title: HomeTitle})
}

func (h *Handler) GetServer(c echo.Context) error {
	cfg := h.target.Current().Config()
	return c.Render(http.StatusOK, render.PageServer, ServerView{ServerURL: cfg.BaseURL, AppID: cfg.AppID})
}

// UpdateServer replaces the FHIR target with the submitted URL and sends the
// browser back to the home page. The URL is not checked for reachability.
func (h *Handler) UpdateServer(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form body").SetInternal(err)
	}
	if _, ok := form[FieldServerURL]; !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required form field(s): "+FieldServerURL)
	}
	newURL := form.Get(FieldServerURL)

	previous := h.target.Current().Config().BaseURL
	if _, err := h.target.Replace(newURL); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.logger.Info().
		Str("request_id", middleware.RequestIDFrom(c)).
		Str("previous", previous).
		Str("current", newURL).
		Msg("FHIR server changed")

	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":        "ok",
		"fhir_base_url": h.target.Current().Config().BaseURL,
	})
}
