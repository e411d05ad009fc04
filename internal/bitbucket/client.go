package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/rs/zerolog"

	"github.com/dshills/codeinsights/internal/insights"
)

const (
	// MaxAnnotationsPerRequest is the most annotations one bulk request may carry.
	MaxAnnotationsPerRequest = 100
	// MaxAnnotationsPerReport is the most annotations a report can hold.
	MaxAnnotationsPerReport = insights.MaxAnnotations
)

// Client submits Code Insights reports and annotations.
type Client struct {
	transport Transport
	baseURL   string
	policy    FailurePolicy
	logger    *zerolog.Logger
}

// Opt configures a Client.
type Opt func(*Client)

// WithBaseURL overrides DefaultAPIURL.
func WithBaseURL(baseURL string) Opt {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithFailurePolicy sets how failed annotation chunks are handled.
func WithFailurePolicy(p FailurePolicy) Opt {
	return func(c *Client) {
		c.policy = p
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zerolog.Logger) Opt {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client on top of transport. The default policy is FailFast.
func NewClient(transport Transport, opts ...Opt) *Client {
	nop := zerolog.Nop()
	c := &Client{
		transport: transport,
		baseURL:   DefaultAPIURL,
		policy:    FailFast,
		logger:    &nop,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the configured failure policy.
func (c *Client) Policy() FailurePolicy {
	return c.policy
}

// SubmitResult summarizes a multi-chunk annotation submission.
type SubmitResult struct {
	// Total is the number of annotations passed in.
	Total int
	// Dropped is the number removed by the per-report cap.
	Dropped int
	// Chunks is the number of chunks the capped list was split into.
	Chunks int
	// Attempted counts chunks sent to the API.
	Attempted int
	Succeeded int
	Failed    int
	// Submitted concatenates the annotations returned by successful chunks,
	// in chunk order.
	Submitted []insights.Annotation
}

// SubmitReport creates or replaces the report stored under reportKey.
func (c *Client) SubmitReport(ctx context.Context, t Target, reportKey string, report insights.ReportSummary) error {
	const op = "create report"
	if err := t.Validate(); err != nil {
		return err
	}

	url := ReportURL(c.baseURL, t, reportKey)
	c.logger.Debug().Str("target", t.String()).Str("report", reportKey).Msg("Submitting report")

	resp, err := c.transport.Put(ctx, url, report)
	if err != nil {
		return NewTransportError(op, url, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return NewAPIStatusError(op, resp)
	}
	return nil
}

// FetchReport retrieves the report stored under reportKey.
func (c *Client) FetchReport(ctx context.Context, t Target, reportKey string) (*insights.ReportSummary, error) {
	const op = "fetch report"
	if err := t.Validate(); err != nil {
		return nil, err
	}

	url := ReportURL(c.baseURL, t, reportKey)
	resp, err := c.transport.Get(ctx, url)
	if err != nil {
		return nil, NewTransportError(op, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAPIStatusError(op, resp)
	}

	var report insights.ReportSummary
	if err := json.Unmarshal(resp.Body, &report); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return &report, nil
}

// SubmitAnnotationBatch posts at most MaxAnnotationsPerRequest annotations in
// one request and returns the annotations the API echoed back. An oversized
// batch fails with a PreconditionError before anything is sent.
func (c *Client) SubmitAnnotationBatch(ctx context.Context, t Target, reportKey string, batch []insights.Annotation) ([]insights.Annotation, error) {
	const op = "create annotations"
	if len(batch) > MaxAnnotationsPerRequest {
		return nil, NewPreconditionError(len(batch), MaxAnnotationsPerRequest)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	url := AnnotationsURL(c.baseURL, t, reportKey)
	resp, err := c.transport.Post(ctx, url, batch)
	if err != nil {
		return nil, NewTransportError(op, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAPIStatusError(op, resp)
	}

	var created []insights.Annotation
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &created); err != nil {
			return nil, fmt.Errorf("%s: decoding response: %w", op, err)
		}
	}
	return created, nil
}

// SubmitAllAnnotations caps annotations at MaxAnnotationsPerReport and posts
// them in chunks of MaxAnnotationsPerRequest, in order. Under FailFast the
// first failed chunk stops the submission and its error is returned. Under
// FailOpen failures are logged and the remaining chunks are still sent.
// Cancellation of ctx is honored between chunks under either policy.
func (c *Client) SubmitAllAnnotations(ctx context.Context, t Target, reportKey string, annotations []insights.Annotation) (SubmitResult, error) {
	res := SubmitResult{Total: len(annotations)}
	if err := t.Validate(); err != nil {
		return res, err
	}

	if len(annotations) > MaxAnnotationsPerReport {
		res.Dropped = len(annotations) - MaxAnnotationsPerReport
		c.logger.Warn().
			Int("total", len(annotations)).
			Int("dropped", res.Dropped).
			Msgf("Only the first %d annotations will be submitted", MaxAnnotationsPerReport)
		annotations = annotations[:MaxAnnotationsPerReport]
	}
	if len(annotations) == 0 {
		return res, nil
	}

	res.Chunks = (len(annotations) + MaxAnnotationsPerRequest - 1) / MaxAnnotationsPerRequest

	chunk := 0
	for batch := range slices.Chunk(annotations, MaxAnnotationsPerRequest) {
		chunk++
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Attempted++
		created, err := c.SubmitAnnotationBatch(ctx, t, reportKey, batch)
		if err != nil {
			res.Failed++
			if IsPrecondition(err) || c.policy == FailFast {
				return res, fmt.Errorf("annotation chunk %d/%d: %w", chunk, res.Chunks, err)
			}
			c.logger.Error().Err(err).
				Int("chunk", chunk).
				Int("chunks", res.Chunks).
				Msg("Annotation chunk failed; continuing")
			continue
		}

		res.Succeeded++
		res.Submitted = append(res.Submitted, created...)
		c.logger.Info().Int("chunk", chunk).Int("chunks", res.Chunks).Int("count", len(batch)).
			Msg("Annotation chunk submitted")
	}

	return res, nil
}
