package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// HTTPClient talks JSON to the metadata service with a bearer token.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout sets a per-request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// NewHTTPClient returns a client for the service at baseURL that sends token
// on every call.
func NewHTTPClient(baseURL, token string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *HTTPClient) RequestUpload(ctx context.Context, req *api.RequestUploadRequest) (*api.RequestUploadResponse, error) {
	var resp api.RequestUploadResponse
	if err := c.do(ctx, http.MethodPost, api.PathRequestUpload, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ConfirmUpload(ctx context.Context, req *api.ConfirmUploadRequest) (*api.ConfirmUploadResponse, error) {
	var resp api.ConfirmUploadResponse
	if err := c.do(ctx, http.MethodPost, api.PathConfirmUpload, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CancelUpload(ctx context.Context, req *api.CancelUploadRequest) (*api.CancelUploadResponse, error) {
	var resp api.CancelUploadResponse
	if err := c.do(ctx, http.MethodPost, api.PathCancelUpload, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListFiles(ctx context.Context, entityType string, entityID int64, category string) (*api.EntityFilesResponse, error) {
	path := entityPath(entityType, entityID)
	if category != "" {
		path += "?" + url.Values{"fileCategory": {category}}.Encode()
	}

	var resp api.EntityFilesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LatestFile returns ErrNotFound (wrapped) when the slot is empty.
func (c *HTTPClient) LatestFile(ctx context.Context, entityType string, entityID int64, category string) (*api.FileMetadata, error) {
	path := entityPath(entityType, entityID) + "/latest/" + url.PathEscape(category)

	var resp api.FileMetadata
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, fileID int64) (bool, error) {
	var deleted bool
	if err := c.do(ctx, http.MethodDelete, api.PathDeleteFile+"/"+strconv.FormatInt(fileID, 10), nil, &deleted); err != nil {
		return false, err
	}
	return deleted, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func entityPath(entityType string, entityID int64) string {
	return api.PathFiles + "/" + url.PathEscape(entityType) + "/" + strconv.FormatInt(entityID, 10)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+c.token)
	req.Header.Set("Accept", common.ContentTypeJSON)
	if in != nil {
		req.Header.Set("Content-Type", common.ContentTypeJSON)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) mapError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var er api.ErrorResponse
	if err := json.Unmarshal(b, &er); err == nil {
		apiErr.Code = er.Error
		apiErr.Message = er.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(b))
	}
	return apiErr
}
