package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxResponseBytes caps the body read from the API.
const maxResponseBytes = 8 << 20

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// ClientConfig configures the GraphQL transport.
type ClientConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// Client posts GraphQL documents to a single endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     *zap.Logger
}

func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("graphql endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		logger:     logger,
	}, nil
}

// Do executes document with variables and decodes the data field into out.
func (c *Client) Do(ctx context.Context, document string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: document, Variables: variables})
	if err != nil {
		return &FetchError{Kind: KindDecode, Message: messages[KindDecode], Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope graphQLResponse
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// GraphQL servers commonly answer 4xx with an error envelope.
		if decodeErr == nil && len(envelope.Errors) > 0 {
			return c.graphQLFailure(envelope.Errors)
		}
		c.logger.Warn("graphql endpoint returned non-2xx", zap.Int("status", resp.StatusCode))
		return &FetchError{
			Kind:    KindNetwork,
			Message: messages[KindNetwork],
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	if decodeErr != nil {
		return &FetchError{Kind: KindDecode, Message: messages[KindDecode], Err: decodeErr}
	}
	if len(envelope.Errors) > 0 {
		return c.graphQLFailure(envelope.Errors)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return &FetchError{Kind: KindDecode, Message: messages[KindDecode], Err: fmt.Errorf("response has no data")}
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &FetchError{Kind: KindDecode, Message: messages[KindDecode], Err: err}
	}
	return nil
}

func (c *Client) graphQLFailure(errs []graphQLError) *FetchError {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	c.logger.Warn("graphql errors", zap.Strings("messages", msgs))
	return &FetchError{
		Kind:    KindGraphQL,
		Message: messages[KindGraphQL],
		Err:     fmt.Errorf("graphql: %s", strings.Join(msgs, "; ")),
	}
}
