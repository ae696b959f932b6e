package fhir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	fhirclient "github.com/SanteonNL/go-fhir-client"

	"github.com/ehr/fhirweb/pkg/fhirmodels"
)

// ServerConfig identifies the FHIR server the application talks to.
type ServerConfig struct {
	AppID   string
	BaseURL string
}

// Connection is an open handle on one FHIR server.
type Connection interface {
	Config() ServerConfig
	Create(ctx context.Context, resource *Person) (string, error)
	Search(ctx context.Context, resourceType fhirmodels.ResourceType, params url.Values) ([]Person, error)
	Capabilities(ctx context.Context) (*CapabilityStatement, error)
}

// Connector opens a Connection for a server configuration.
type Connector func(cfg ServerConfig) (Connection, error)

// ClientOptions tunes the HTTP side of a Client.
type ClientOptions struct {
	Timeout     time.Duration
	BearerToken string
	// Doer overrides the HTTP client. Timeout is ignored when it is set.
	Doer fhirclient.HttpRequestDoer
}

// Client is a Connection backed by go-fhir-client.
type Client struct {
	cfg    ServerConfig
	client fhirclient.Client
}

var _ Connection = (*Client)(nil)

// Connect builds a Client for cfg. No request is made; an unreachable server
// only shows up on the first call.
func Connect(cfg ServerConfig, opts ClientOptions) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse FHIR base URL: %w", err)
	}

	doer := opts.Doer
	if doer == nil {
		doer = &http.Client{Timeout: opts.Timeout}
	}
	if opts.BearerToken != "" {
		doer = &bearerTokenDoer{next: doer, token: opts.BearerToken}
	}

	return &Client{
		cfg:    cfg,
		client: fhirclient.New(base, doer, nil),
	}, nil
}

// NewConnector returns a Connector that opens Clients with opts.
func NewConnector(opts ClientOptions) Connector {
	return func(cfg ServerConfig) (Connection, error) {
		return Connect(cfg, opts)
	}
}

func (c *Client) Config() ServerConfig {
	return c.cfg
}

// Create posts resource to [base]/[resourceType] and returns the id the
// server assigned.
func (c *Client) Create(ctx context.Context, resource *Person) (string, error) {
	var created Person
	err := c.client.Create(resource, &created, withContext(ctx))
	if err != nil {
		return "", &RemoteCallError{Op: "create", ResourceType: resource.ResourceType, Err: err}
	}
	if created.ID == "" {
		return "", &RemoteCallError{Op: "create", ResourceType: resource.ResourceType, Err: ErrMissingID}
	}
	return created.ID, nil
}

// Search issues GET [base]/[type]?params and returns the resources of the
// first result page, in server order. Included resources of other types are
// dropped.
func (c *Client) Search(ctx context.Context, resourceType fhirmodels.ResourceType, params url.Values) ([]Person, error) {
	opts := []fhirclient.Option{withContext(ctx)}
	for _, key := range sortedKeys(params) {
		for _, v := range params[key] {
			opts = append(opts, fhirclient.QueryParam(key, v))
		}
	}

	var bundle searchBundle
	if err := c.client.Read(resourceType.String(), &bundle, opts...); err != nil {
		return nil, &RemoteCallError{Op: "search", ResourceType: resourceType.String(), Err: err}
	}

	results := make([]Person, 0, len(bundle.Entry))
	for i, entry := range bundle.Entry {
		if len(entry.Resource) == 0 {
			continue
		}
		var p Person
		if err := json.Unmarshal(entry.Resource, &p); err != nil {
			return nil, &RemoteCallError{
				Op:           "search",
				ResourceType: resourceType.String(),
				Err:          fmt.Errorf("decode bundle entry %d: %w", i, err),
			}
		}
		if p.ResourceType != resourceType.String() {
			continue
		}
		results = append(results, p)
	}
	return results, nil
}

// Capabilities reads the server's CapabilityStatement from [base]/metadata.
func (c *Client) Capabilities(ctx context.Context) (*CapabilityStatement, error) {
	var cs CapabilityStatement
	if err := c.client.Read("metadata", &cs, withContext(ctx)); err != nil {
		return nil, &RemoteCallError{Op: "read", ResourceType: "CapabilityStatement", Err: err}
	}
	return &cs, nil
}

// searchBundle is the part of a searchset Bundle the results page needs.
type searchBundle struct {
	ResourceType string `json:"resourceType"`
	Total        *int   `json:"total,omitempty"`
	Entry        []struct {
		FullURL  string          `json:"fullUrl,omitempty"`
		Resource json.RawMessage `json:"resource,omitempty"`
	} `json:"entry,omitempty"`
}

// withContext binds the outgoing request to ctx so a cancelled page request
// aborts the FHIR call.
func withContext(ctx context.Context) fhirclient.Option {
	return func(_ *url.URL, r *http.Request) {
		*r = *r.WithContext(ctx)
	}
}

func sortedKeys(v url.Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ fhirclient.HttpRequestDoer = (*bearerTokenDoer)(nil)

type bearerTokenDoer struct {
	next  fhirclient.HttpRequestDoer
	token string
}

func (d *bearerTokenDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+d.token)
	return d.next.Do(req)
}
