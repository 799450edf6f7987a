// Package docintel is a REST client for a cloud document analysis service.
// Analysis is asynchronous: submitting a document returns an operation URL
// which is polled until the analysis succeeds or fails.
package docintel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	docintelopts "github.com/JhonatanRC03/chat-rag/pkg/options/docintel"
	"github.com/JhonatanRC03/chat-rag/pkg/utils/httpclient"
	"github.com/JhonatanRC03/chat-rag/pkg/utils/json"
)

const apiVersion = "2023-07-31"

// Client talks to the document analysis REST API.
type Client struct {
	endpoint     string
	apiKey       string
	defaultModel string
	pollInterval time.Duration
	pollTimeout  time.Duration
	http         *httpclient.Client
}

// New creates a Client from options.
func New(opts *docintelopts.Options) *Client {
	return &Client{
		endpoint:     opts.Endpoint,
		apiKey:       opts.APIKey,
		defaultModel: opts.Model,
		pollInterval: opts.PollInterval,
		pollTimeout:  opts.PollTimeout,
		http:         httpclient.NewClient(opts.Timeout, 3),
	}
}

// Analyze submits document content for analysis with the given model and
// blocks until the operation completes. An empty model falls back to the
// configured default.
func (c *Client) Analyze(ctx context.Context, content []byte, model string) (*AnalyzeResult, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("docintel: document content is empty")
	}
	if model == "" {
		model = c.defaultModel
	}

	opLocation, err := c.submit(ctx, content, model)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, opLocation)
}

// AnalyzeLayout analyzes document layout using the layout model.
func (c *Client) AnalyzeLayout(ctx context.Context, content []byte) (*AnalyzeResult, error) {
	return c.Analyze(ctx, content, ModelPrebuiltLayout)
}

// AnalyzeRead extracts plain text using the OCR read model.
func (c *Client) AnalyzeRead(ctx context.Context, content []byte) (*AnalyzeResult, error) {
	return c.Analyze(ctx, content, ModelPrebuiltRead)
}

// ExtractText returns only the text content of a document.
func (c *Client) ExtractText(ctx context.Context, content []byte) (string, error) {
	result, err := c.Analyze(ctx, content, "")
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// ExtractStructured analyzes a document and returns the condensed view used
// for indexing and summaries.
func (c *Client) ExtractStructured(ctx context.Context, content []byte) (*StructuredData, error) {
	result, err := c.Analyze(ctx, content, "")
	if err != nil {
		return nil, err
	}
	return result.Structured(), nil
}

// submit posts the document and returns the operation URL to poll.
func (c *Client) submit(ctx context.Context, content []byte, model string) (string, error) {
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s", c.endpoint, model, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("docintel: build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.http.DoRequest(req)
	if err != nil {
		return "", fmt.Errorf("docintel: submit analyze: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("docintel: analyze submission failed with status %d: %s", resp.StatusCode, string(body))
	}

	opLocation := resp.Header.Get("Operation-Location")
	if opLocation == "" {
		return "", fmt.Errorf("docintel: missing Operation-Location header")
	}
	return opLocation, nil
}

// poll fetches the operation status until it reaches a terminal state.
func (c *Client) poll(ctx context.Context, opLocation string) (*AnalyzeResult, error) {
	var result *AnalyzeResult

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opLocation, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("docintel: build poll request: %w", err))
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

		resp, err := c.http.DoRequest(req)
		if err != nil {
			return fmt.Errorf("docintel: poll operation: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("docintel: poll failed with status %d: %s", resp.StatusCode, string(body)))
		}

		var status operationStatus
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return backoff.Permanent(fmt.Errorf("docintel: decode operation status: %w", err))
		}

		switch status.Status {
		case statusSucceeded:
			if status.AnalyzeResult == nil {
				return backoff.Permanent(fmt.Errorf("docintel: operation succeeded without a result"))
			}
			result = status.AnalyzeResult
			return nil
		case statusFailed:
			msg := "unknown error"
			if status.Error != nil {
				msg = fmt.Sprintf("%s: %s", status.Error.Code, status.Error.Message)
			}
			return backoff.Permanent(fmt.Errorf("docintel: analysis failed: %s", msg))
		case statusNotStarted, statusRunning:
			return fmt.Errorf("docintel: operation still %s", status.Status)
		default:
			return backoff.Permanent(fmt.Errorf("docintel: unexpected operation status %q", status.Status))
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.pollInterval
	b.MaxInterval = 10 * c.pollInterval
	b.MaxElapsedTime = c.pollTimeout

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return result, nil
}
