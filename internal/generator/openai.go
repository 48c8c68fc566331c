package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/mindmapd/internal/outline"
	"github.com/fyrsmithlabs/mindmapd/internal/secrets"
)

// chatModel is the part of llms.Model the generator calls.
type chatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// LLM asks a chat model for the outline.
type LLM struct {
	model       chatModel
	modelName   string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	maxRetries  int
	backoff     time.Duration
	limiter     *rate.Limiter
	scrubber    *secrets.Scrubber
	logger      *zap.Logger
}

// NewOpenAI creates an LLM generator backed by an OpenAI compatible API.
func NewOpenAI(cfg Config, scrubber *secrets.Scrubber, logger *zap.Logger) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key required")
	}
	cfg.applyDefaults()

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return newLLM(model, cfg, scrubber, logger), nil
}

func newLLM(model chatModel, cfg Config, scrubber *secrets.Scrubber, logger *zap.Logger) *LLM {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLM{
		model:       model,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		backoff:     defaultBaseBackoff,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		scrubber:    scrubber,
		logger:      logger,
	}
}

// Generate sends the scrubbed content to the model and parses its answer.
// The model is not trusted to respect the depth limit, so the parsed tree is
// cut to req.MaxDepth tiers.
// Transport failures are retried with exponential backoff; an answer that
// does not parse is not.
func (g *LLM) Generate(ctx context.Context, req Request) (*outline.Structure, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	content := req.Content
	if res := g.scrubber.Scrub(content); res.HasFindings() {
		g.logger.Warn("redacted secrets from generation content",
			zap.Strings("rules", res.RuleIDs()),
			zap.Int("findings", len(res.Findings)))
		content = res.Scrubbed
	}

	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: SystemPrompt}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: UserPrompt(content)}}},
	}

	raw, err := g.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	s, err := outline.Parse(raw)
	if err != nil {
		g.logger.Error("model returned an unusable outline",
			zap.String("model", g.modelName),
			zap.String("raw", g.scrubber.String(raw)),
			zap.Error(err))
		return nil, err
	}
	if s.Prune(req.MaxDepth) {
		g.logger.Info("model outline exceeded max depth, pruned",
			zap.String("model", g.modelName),
			zap.Int("max_depth", req.MaxDepth))
	}

	g.logger.Debug("outline generated",
		zap.String("model", g.modelName),
		zap.String("title", req.Title),
		zap.Int("nodes", s.Nodes[0].Count()),
		zap.Int("depth", s.Nodes[0].Depth()),
		zap.String("raw", g.scrubber.String(raw)))
	return s, nil
}

func (g *LLM) complete(ctx context.Context, messages []llms.MessageContent) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := g.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		resp, err := g.model.GenerateContent(ctx, messages,
			llms.WithTemperature(g.temperature),
			llms.WithMaxTokens(g.maxTokens),
		)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("%w: empty response from model", outline.ErrGenerationFailure)
			}
			return resp.Choices[0].Content, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return "", err
		}
		g.logger.Warn("model call failed",
			zap.String("model", g.modelName),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// statusPattern finds the HTTP status in errors from the openai client,
// which reports "API returned unexpected status code: 503: ...".
var statusPattern = regexp.MustCompile(`status code: (\d{3})`)

// isRetryableError accepts rate limiting, server errors and transport
// failures. Anything else (auth, bad request, cancellation) fails fast.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED)
}

var _ Generator = (*LLM)(nil)
