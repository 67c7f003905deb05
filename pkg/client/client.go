// Package client talks to the studio backend API on behalf of the editor and the
// launch flow.
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
	"strings"
	"time"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/moogar0880/problems"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotFound is wrapped by StatusError for 404 responses.
var ErrNotFound = errors.New("resource not found")

// StatusError is a non-2xx response decoded from its problem body.
type StatusError struct {
	StatusCode int
	Problem    problems.Problem
	// Errors carries per-variable validation errors, when the backend sent any.
	Errors []models.VariableError
}

func (e *StatusError) Error() string {
	if e.Problem.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Problem.Detail)
	}

	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client is an HTTP client for the studio backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the backend at baseURL. Requests are traced with otelhttp.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type workflowBody struct {
	ID         string                    `json:"id,omitempty"`
	Name       string                    `json:"name,omitempty"`
	Definition models.WorkflowDefinition `json:"definition"`
}

type variablesBody struct {
	Variables []models.VariableDefinition `json:"variables"`
}

type executionRequestBody struct {
	Values map[string]any `json:"values"`
}

type executionResponseBody struct {
	ID string `json:"id"`
}

// FetchWorkflow loads a workflow definition. An unknown workflow is an empty one.
func (c *Client) FetchWorkflow(ctx context.Context, workflowID string) (models.WorkflowDefinition, error) {
	var body workflowBody

	err := c.do(ctx, http.MethodGet, workflowPath(workflowID), nil, &body)
	if errors.Is(err, ErrNotFound) {
		return models.NewWorkflowDefinition(), nil
	}

	if err != nil {
		return models.WorkflowDefinition{}, err
	}

	return body.Definition.Clone(), nil
}

// SaveWorkflow replaces the stored definition.
func (c *Client) SaveWorkflow(ctx context.Context, workflowID string, def models.WorkflowDefinition) error {
	return c.do(ctx, http.MethodPut, workflowPath(workflowID), workflowBody{Definition: def}, nil)
}

// FetchVariables loads the variable schema. An unknown workflow has no variables.
func (c *Client) FetchVariables(ctx context.Context, workflowID string) ([]models.VariableDefinition, error) {
	var body variablesBody

	err := c.do(ctx, http.MethodGet, workflowPath(workflowID)+"/variables", nil, &body)
	if errors.Is(err, ErrNotFound) {
		return []models.VariableDefinition{}, nil
	}

	if err != nil {
		return nil, err
	}

	if body.Variables == nil {
		body.Variables = []models.VariableDefinition{}
	}

	return body.Variables, nil
}

// SaveVariables replaces the stored variable schema.
func (c *Client) SaveVariables(ctx context.Context, workflowID string, defs []models.VariableDefinition) error {
	if defs == nil {
		defs = []models.VariableDefinition{}
	}

	return c.do(ctx, http.MethodPut, workflowPath(workflowID)+"/variables", variablesBody{Variables: defs}, nil)
}

// Execute asks the backend to run the workflow and returns the execution id.
func (c *Client) Execute(ctx context.Context, workflowID string, values map[string]any) (string, error) {
	var body executionResponseBody

	err := c.do(ctx, http.MethodPost, workflowPath(workflowID)+"/executions", executionRequestBody{Values: values}, &body)
	if err != nil {
		return "", err
	}

	return body.ID, nil
}

// StepTypes lists the step types the backend knows.
func (c *Client) StepTypes(ctx context.Context) ([]models.StepTypeSpec, error) {
	var specs []models.StepTypeSpec

	if err := c.do(ctx, http.MethodGet, "/step-types", nil, &specs); err != nil {
		return nil, err
	}

	return specs, nil
}

func workflowPath(id string) string {
	return "/workflows/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader

	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeStatusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func decodeStatusError(resp *http.Response) error {
	statusErr := &StatusError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return statusErr
	}

	var body struct {
		problems.Problem
		Errors []models.VariableError `json:"errors"`
	}

	if json.Unmarshal(data, &body) != nil {
		statusErr.Problem.Detail = strings.TrimSpace(string(data))

		return statusErr
	}

	statusErr.Problem = body.Problem
	statusErr.Errors = body.Errors

	return statusErr
}
