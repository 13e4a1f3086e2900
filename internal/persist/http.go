package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sprite-ai/medannot/internal/model"
)

// HTTPClient talks to a remote medannot server's REST API.
type HTTPClient struct {
	base   string
	client *http.Client
}

// NewHTTPClient returns a client for the server at baseURL. A nil client
// gets one with a 30 second timeout.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{base: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *HTTPClient) annotationsURL(id string) string {
	return c.base + "/api/images/" + url.PathEscape(id) + "/annotations"
}

func (c *HTTPClient) Load(ctx context.Context, imageID string) (Document, error) {
	var doc Document
	if err := c.do(ctx, http.MethodGet, c.annotationsURL(imageID), nil, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (c *HTTPClient) SaveAnnotations(ctx context.Context, img model.ImageInfo, shapes []model.AnnotationShape) (model.SaveResult, error) {
	var res model.SaveResult
	doc := Document{Image: img, Annotations: shapes}
	if err := c.do(ctx, http.MethodPut, c.annotationsURL(img.ID), doc, &res); err != nil {
		return model.SaveResult{}, err
	}
	return res, nil
}

func (c *HTTPClient) Delete(ctx context.Context, imageID string) error {
	return c.do(ctx, http.MethodDelete, c.annotationsURL(imageID), nil, nil)
}

func (c *HTTPClient) List(ctx context.Context) ([]string, error) {
	var out struct {
		Images []string `json:"images"`
	}
	if err := c.do(ctx, http.MethodGet, c.base+"/api/images", nil, &out); err != nil {
		return nil, err
	}
	return out.Images, nil
}

func (c *HTTPClient) do(ctx context.Context, method, u string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, u, ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("%s %s: %s", method, u, apiErr.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
