// Package client implements the API client for the EcoSort classification
// service. It sends exactly one request per call and surfaces failures as a
// small typed taxonomy; it never retries and never caches.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ecosort/ecosort/internal/capture"
	"github.com/ecosort/ecosort/internal/classify"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 60 * time.Second
)

// ErrNoImageProvided is returned when Classify is called without an image.
// No network call is made.
var ErrNoImageProvided = errors.New("no image provided")

// NetworkError means the service could not be reached at all, including
// request timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("classification service unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError means the service was reached but returned a non-success
// status.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("classification service error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("classification service error (status %d)", e.StatusCode)
}

// MalformedResponseError means the service returned success but the payload
// lacked the expected result shape.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from classification service: %s", e.Reason)
}

// Opts configures the client.
type Opts struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the EcoSort classification service.
type Client struct {
	httpClient *resty.Client
	baseURL    string
}

// New creates a classification service client.
func New(opts Opts) *Client {
	c := Client{baseURL: DefaultBaseURL}
	if opts.BaseURL != "" {
		c.baseURL = opts.BaseURL
	}
	timeout := DefaultTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	c.httpClient = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &c
}

type classifyRequest struct {
	Image string `json:"image"`
}

type classifyResponse struct {
	Result *classify.Result `json:"result"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Type    string `json:"type"`
}

// HealthStatus is the service liveness report.
type HealthStatus struct {
	Status           string `json:"status"`
	GeminiConfigured bool   `json:"geminiConfigured"`
}

// Classify sends one image to the service and returns the classification
// result. The returned result always has in-range material type and bin
// color: the service coerces them and the client re-validates.
func (c *Client) Classify(ctx context.Context, img *capture.EncodedImage) (*classify.Result, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, ErrNoImageProvided
	}

	result := &classifyResponse{}
	errBody := &errorResponse{}

	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetBody(classifyRequest{Image: img.DataURI()}).
		SetResult(result).
		SetError(errBody).
		Post("/api/classify")
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if res.IsError() {
		msg := errBody.Error
		if errBody.Details != "" {
			msg = fmt.Sprintf("%s: %s", errBody.Error, errBody.Details)
		}
		return nil, &ServerError{StatusCode: res.StatusCode(), Message: msg}
	}
	if result.Result == nil {
		return nil, &MalformedResponseError{Reason: "missing result field"}
	}

	// The service already coerces closed-set fields, but don't trust the
	// wire blindly.
	result.Result.Normalize()
	return result.Result, nil
}

// classifyTransportError separates true transport failures from body-decode
// failures. Resty returns both through the same error value, but a success
// status with an undecodable body means the service was reached and answered
// garbage, not that it was unreachable.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &NetworkError{Err: err}
	}
	return &MalformedResponseError{Reason: err.Error()}
}

// Health checks service liveness.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{}
	res, err := c.httpClient.NewRequest().
		SetContext(ctx).
		SetResult(status).
		Get("/health")
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if res.IsError() {
		return nil, &ServerError{StatusCode: res.StatusCode()}
	}
	return status, nil
}
