// Package registrar talks to a DataCite-style DOI registration REST API.
// Only the calls the publish workflow needs are implemented.
package registrar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rdhub/rdhub/backend/go-services/internal/resource"
)

// Client is a thin wrapper over the registrar's /dois endpoint. Credentials
// are the repository account id and password (HTTP basic auth, as DataCite
// requires).
type Client struct {
	baseURL      string
	repositoryID string
	password     string
	http         *http.Client
}

func New(baseURL, repositoryID, password string) *Client {
	return &Client{
		baseURL:      baseURL,
		repositoryID: repositoryID,
		password:     password,
		http:         &http.Client{Timeout: 15 * time.Second},
	}
}

type doiAttributes struct {
	DOI             string             `json:"doi"`
	Event           string             `json:"event"`
	URL             string             `json:"url,omitempty"`
	Titles          []map[string]any   `json:"titles,omitempty"`
	Creators        []resource.Creator `json:"creators,omitempty"`
	Publisher       string             `json:"publisher,omitempty"`
	PublicationYear int                `json:"publicationYear,omitempty"`
}

type doiPayload struct {
	Data struct {
		Type       string        `json:"type"`
		Attributes doiAttributes `json:"attributes"`
	} `json:"data"`
}

// Register creates and publishes the DOI for the given resource, pointing
// it at landingURL. A non-2xx response is returned as an error with the
// registrar's body included, so curators see the rejection reason.
func (c *Client) Register(ctx context.Context, doi string, r *resource.Resource, landingURL string) error {
	var p doiPayload
	p.Data.Type = "dois"
	p.Data.Attributes = doiAttributes{
		DOI:             doi,
		Event:           "publish",
		URL:             landingURL,
		Creators:        r.Creators,
		Publisher:       r.Publisher,
		PublicationYear: r.PublicationYear,
	}
	if r.Title != "" {
		p.Data.Attributes.Titles = []map[string]any{{"title": r.Title}}
	}

	body, err := json.Marshal(&p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/dois", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/vnd.api+json")
	req.SetBasicAuth(c.repositoryID, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("registrar request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("registrar returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
