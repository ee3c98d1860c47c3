package schema_registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"
)

const contentType = "application/vnd.schemaregistry.v1+json"

// Registry provides an interface for interacting with a Confluent Schema Registry.
// It handles schema registration, retrieval, and caching for efficient serialization.
type Registry interface {
	// Register registers schema under subject and returns its handle.
	// Registering the identical schema again returns the same handle.
	Register(ctx context.Context, subject, schema string, schemaType SchemaType) (Handle, error)

	// Resolve returns the handle of the latest schema under subject.
	Resolve(ctx context.Context, subject string) (Handle, error)

	// GetSchemaByID retrieves a schema by its ID
	GetSchemaByID(ctx context.Context, id int) (string, error)

	// CheckCompatibility checks if a schema is compatible with the latest version
	CheckCompatibility(ctx context.Context, subject, schema string, schemaType SchemaType) (bool, error)
}

// Handle identifies a registered schema. Values of a handle never change
// for a subject once a client has returned it.
type Handle struct {
	ID      int
	Subject string
	// Version is only known for handles obtained through Resolve.
	Version int
	Type    SchemaType
	Schema  string
}

// Logger is the logging contract of the client.
type Logger interface {
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Client is the default implementation of Registry
// that communicates with Confluent Schema Registry over HTTP.
type Client struct {
	cfg        Config
	url        string
	httpClient *http.Client
	logger     Logger

	// Cache for schemas by ID
	schemaCache      map[int]string
	schemaCacheMutex sync.RWMutex

	// pinned holds the first handle obtained per subject
	pinned      map[string]Handle
	pinnedMutex sync.RWMutex

	flights singleflight.Group
}

// NewClient creates a new schema registry client
// Returns the concrete *Client type.
func NewClient(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("%w: schema registry URL is required", ErrConfig)
	}
	if _, err := url.ParseRequestURI(config.URL); err != nil {
		return nil, fmt.Errorf("%w: schema registry URL: %v", ErrConfig, err)
	}

	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.RetryInitialInterval == 0 {
		config.RetryInitialInterval = DefaultRetryInitialInterval
	}

	return &Client{
		cfg: config,
		url: strings.TrimRight(config.URL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		schemaCache: make(map[int]string),
		pinned:      make(map[string]Handle),
	}, nil
}

// WithLogger attaches a logger used to report retried requests.
func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

// Register registers schema under subject.
//
// The first handle returned for a subject is pinned: registering the same
// schema again is answered from memory, a different schema fails with
// ErrSchemaConflict. Concurrent calls for one subject share a single request.
func (c *Client) Register(ctx context.Context, subject, schema string, schemaType SchemaType) (Handle, error) {
	if !schemaType.Registered() {
		return Handle{}, fmt.Errorf("%w: %s schemas are not kept in the registry", ErrConfig, schemaType)
	}
	if subject == "" {
		return Handle{}, fmt.Errorf("%w: subject is empty", ErrConfig)
	}

	if h, ok := c.pinnedHandle(subject); ok {
		return matchPinned(h, schema, schemaType)
	}

	v, err, _ := c.flights.Do("register:"+subject, func() (interface{}, error) {
		if h, ok := c.pinnedHandle(subject); ok {
			return h, nil
		}

		payload := map[string]interface{}{
			"schema": schema,
		}
		if schemaType != Avro {
			payload["schemaType"] = string(schemaType)
		}

		var result struct {
			ID int `json:"id"`
		}
		path := fmt.Sprintf("/subjects/%s/versions", url.PathEscape(subject))
		if err := c.do(ctx, http.MethodPost, path, payload, &result); err != nil {
			return nil, c.registerError(ctx, subject, schema, schemaType, err)
		}

		h := Handle{ID: result.ID, Subject: subject, Type: schemaType, Schema: schema}
		c.cacheSchema(h.ID, schema)
		return c.pin(h), nil
	})
	if err != nil {
		return Handle{}, err
	}
	return matchPinned(v.(Handle), schema, schemaType)
}

// Resolve returns the pinned handle of subject, fetching the latest version
// from the registry on first use.
func (c *Client) Resolve(ctx context.Context, subject string) (Handle, error) {
	if h, ok := c.pinnedHandle(subject); ok {
		return h, nil
	}

	v, err, _ := c.flights.Do("resolve:"+subject, func() (interface{}, error) {
		var metadata struct {
			ID      int    `json:"id"`
			Version int    `json:"version"`
			Schema  string `json:"schema"`
			Type    string `json:"schemaType"`
		}
		path := fmt.Sprintf("/subjects/%s/versions/latest", url.PathEscape(subject))
		if err := c.do(ctx, http.MethodGet, path, nil, &metadata); err != nil {
			return nil, fmt.Errorf("resolve subject %q: %w", subject, err)
		}

		schemaType := Avro
		if metadata.Type != "" {
			schemaType = SchemaType(metadata.Type)
		}
		h := Handle{ID: metadata.ID, Subject: subject, Version: metadata.Version, Type: schemaType, Schema: metadata.Schema}
		c.cacheSchema(h.ID, h.Schema)
		return c.pin(h), nil
	})
	if err != nil {
		return Handle{}, err
	}
	return v.(Handle), nil
}

// GetSchemaByID retrieves a schema from the registry by its ID
func (c *Client) GetSchemaByID(ctx context.Context, id int) (string, error) {
	c.schemaCacheMutex.RLock()
	if schema, ok := c.schemaCache[id]; ok {
		c.schemaCacheMutex.RUnlock()
		return schema, nil
	}
	c.schemaCacheMutex.RUnlock()

	var result struct {
		Schema string `json:"schema"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/schemas/ids/%d", id), nil, &result); err != nil {
		return "", fmt.Errorf("fetch schema %d: %w", id, err)
	}

	c.cacheSchema(id, result.Schema)
	return result.Schema, nil
}

// CheckCompatibility checks if a schema is compatible with the existing schema for a subject
func (c *Client) CheckCompatibility(ctx context.Context, subject, schema string, schemaType SchemaType) (bool, error) {
	payload := map[string]interface{}{
		"schema": schema,
	}
	if schemaType != "" && schemaType != Avro {
		payload["schemaType"] = string(schemaType)
	}

	var result struct {
		IsCompatible bool `json:"is_compatible"`
	}
	path := fmt.Sprintf("/compatibility/subjects/%s/versions/latest", url.PathEscape(subject))
	if err := c.do(ctx, http.MethodPost, path, payload, &result); err != nil {
		return false, fmt.Errorf("check compatibility for subject %q: %w", subject, err)
	}
	return result.IsCompatible, nil
}

// registerError wraps a failed registration. A conflict answered by the
// registry is checked against the latest version so the error says whether
// the subject's compatibility rules or the schema itself caused it.
func (c *Client) registerError(ctx context.Context, subject, schema string, schemaType SchemaType, err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		return fmt.Errorf("register schema for subject %q: %w", subject, err)
	}
	compatible, checkErr := c.CheckCompatibility(ctx, subject, schema, schemaType)
	if checkErr != nil {
		return fmt.Errorf("register schema for subject %q: %w", subject, err)
	}
	return fmt.Errorf("register schema for subject %q (compatible with latest version: %t): %w", subject, compatible, err)
}

func (c *Client) pinnedHandle(subject string) (Handle, bool) {
	c.pinnedMutex.RLock()
	defer c.pinnedMutex.RUnlock()
	h, ok := c.pinned[subject]
	return h, ok
}

// pin stores h unless the subject is already pinned, and returns the winner.
func (c *Client) pin(h Handle) Handle {
	c.pinnedMutex.Lock()
	defer c.pinnedMutex.Unlock()
	if existing, ok := c.pinned[h.Subject]; ok {
		return existing
	}
	c.pinned[h.Subject] = h
	return h
}

func (c *Client) cacheSchema(id int, schema string) {
	c.schemaCacheMutex.Lock()
	c.schemaCache[id] = schema
	c.schemaCacheMutex.Unlock()
}

func matchPinned(h Handle, schema string, schemaType SchemaType) (Handle, error) {
	if h.Schema != schema || h.Type != schemaType {
		return Handle{}, fmt.Errorf("%w: subject %q already holds schema id %d", ErrSchemaConflict, h.Subject, h.ID)
	}
	return h, nil
}

// do performs one registry call, retrying transport failures and 5xx
// responses with exponential backoff up to Config.MaxRetries times.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = c.cfg.RetryInitialInterval
	exponentialBackoff.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exponentialBackoff, c.cfg.MaxRetries), ctx)

	attempt := 0
	return backoff.RetryNotify(
		func() error {
			attempt++
			err := c.roundTrip(ctx, method, path, body, out)
			var apiErr *APIError
			if errors.As(err, &apiErr) && !apiErr.retryable() {
				return backoff.Permanent(err)
			}
			if err != nil && ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		},
		policy,
		func(err error, wait time.Duration) {
			if c.logger != nil {
				c.logger.Warn("schema registry request failed, retrying", err, map[string]interface{}{
					"method":  method,
					"path":    path,
					"attempt": attempt,
					"wait":    wait.String(),
				})
			}
		},
	)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}
	req.Header.Set("Accept", contentType)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(respBody, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
