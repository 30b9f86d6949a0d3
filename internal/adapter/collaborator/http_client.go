package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
)

const tracerName = "github.com/kumsat/microservices-checkout-quality-gate/collaborator"

// Client is a traced JSON client for one remote collaborator. The request
// deadline comes from ctx; timeout is only a ceiling.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		tracer: otel.Tracer(tracerName),
	}
}

// do sends body (if non-nil) as JSON and decodes a 200 response into out.
// 404 maps to domain.ErrNotFound, any other non-200 status to
// domain.ErrTechnicalFailure.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	err := c.roundTrip(ctx, span, method, path, body, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, span trace.Span, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	span.SetAttributes(
		attribute.String("http.url", url),
		attribute.String("http.method", method),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s %s returned %s", domain.ErrTechnicalFailure, method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrTechnicalFailure, method, path, err)
	}
	return nil
}
