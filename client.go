package brightset

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Client is a Brightset API client. Configured with an HTTP client, API
// token and a base URL to use for requests.
type Client struct {
	inner   *http.Client
	token   string
	baseUrl string
	logger  *slog.Logger
}

// ClientOptions are used to configure a `Client`.
type ClientOptions func(*Client)

// WithHTTPClient allows the caller to customize the underlying HTTP client
// used for requests to the API and for signed-URL fetches.
func WithHTTPClient(client *http.Client) ClientOptions {
	return func(c *Client) {
		c.inner = client
	}
}

// WithBaseURL allows the caller to choose a non-default API url to use
// for requests. By default, requests are sent to `https://api.brightset.io`.
func WithBaseURL(baseUrl string) ClientOptions {
	return func(c *Client) {
		c.baseUrl = baseUrl
	}
}

// WithLogger allows the caller to supply a structured logger. By default,
// the client logs through slog.Default().
func WithLogger(logger *slog.Logger) ClientOptions {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a new `Client` object, allowing the caller to configure the
// client by passing zero or more `ClientOptions` functions.
func NewClient(token string, options ...ClientOptions) *Client {
	client := &Client{
		inner:   http.DefaultClient,
		token:   token,
		baseUrl: "https://api.brightset.io",
		logger:  slog.Default(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

type request[T any] struct {
	method string
	path   string
	query  url.Values
	body   *T
}

func (r *request[T]) bodyBytes() ([]byte, error) {
	if r.body == nil {
		return nil, nil
	}
	marshaled, err := json.Marshal(r.body)
	if err != nil {
		return nil, fmt.Errorf("marshal json body: %w", err)
	}
	return marshaled, nil
}

type response[T any] struct {
	body    *T
	headers http.Header
}

// doRequest issues a single API request. Every call is exactly one attempt;
// per-item failure handling and batch semantics live with the callers.
func doRequest[T, E any](
	ctx context.Context,
	client *Client,
	req request[T],
) (*response[E], error) {
	endpoint := client.baseUrl + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	reqBody, err := req.bodyBytes()
	if err != nil {
		return nil, fmt.Errorf("constructing request body: %w", err)
	}

	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("constructing http request: %w", err)
	}

	httpReq.Header.Set("Accept-Encoding", "gzip")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", client.token))
	httpReq.Header.Set("User-Agent", "brightset-go")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.inner.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respHeaders := resp.Header

	var respBodyReader io.Reader = resp.Body
	if respHeaders.Get("Content-Encoding") == "gzip" {
		respBodyReader, err = gzip.NewReader(respBodyReader)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
	}

	respBody, err := io.ReadAll(respBodyReader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var msg string
		if strings.HasPrefix(respHeaders.Get("Content-Type"), "application/json") {
			var apiErr struct {
				Error string `json:"error,omitempty"`
			}
			if err := json.Unmarshal(respBody, &apiErr); err == nil {
				msg = apiErr.Error
			}
		} else {
			msg = string(respBody)
		}
		return nil, &APIError{
			Code:    resp.StatusCode,
			Message: msg,
		}
	}

	body := new(E)
	if err := json.Unmarshal(respBody, body); err != nil {
		return nil, fmt.Errorf("unmarshalling response body: %w", err)
	}

	return &response[E]{
		body:    body,
		headers: respHeaders,
	}, nil
}

// fetchSignedURL performs a GET against a signed read URL and returns the
// response body for streaming. A signed URL is a self-contained capability,
// so no Authorization header is attached. Callers own closing the body.
func (c *Client) fetchSignedURL(ctx context.Context, signedUrl string) (io.ReadCloser, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, signedUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("constructing http request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "brightset-go")

	resp, err := c.inner.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			Code:    resp.StatusCode,
			Message: string(msg),
		}
	}
	return resp.Body, nil
}

// APIError is an inspectable error type for returning API errors.
type APIError struct {
	Code    int
	Message string
}

func (e APIError) Error() string {
	return fmt.Sprintf("brightset error (http code %d): %s", e.Code, e.Message)
}
