package tools

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"somikra/internal/config"
	apperrors "somikra/internal/errors"
	"somikra/internal/proxy"
)

// Input carries a tool's form fields.
type Input map[string]string

func (in Input) get(key string) string {
	return strings.TrimSpace(in[key])
}

type Result struct {
	Tool        string    `json:"tool"`
	Output      string    `json:"output"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Tool interface {
	Name() string
	Required() []string
	Run(ctx context.Context, in Input) (string, error)
}

type PageFetcher interface {
	Fetch(ctx context.Context, target string) (*proxy.Page, error)
}

// Runner executes the marketing tools. Every run waits the configured mock
// delay first so the UI keeps its "thinking" state.
type Runner struct {
	delay  time.Duration
	tools  map[string]Tool
	logger *slog.Logger
}

func NewRunner(cfg config.ToolsConfig, fetcher PageFetcher, logger *slog.Logger) *Runner {
	r := &Runner{
		delay:  cfg.MockDelay,
		tools:  make(map[string]Tool),
		logger: logger,
	}
	for _, t := range []Tool{adCopy{}, sentiment{}, pricing{}, trends{}, email{}, seo{fetcher: fetcher}} {
		r.tools[t.Name()] = t
	}
	return r
}

func (r *Runner) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Runner) Run(ctx context.Context, name string, in Input) (Result, error) {
	tool, ok := r.tools[name]
	if !ok {
		return Result{}, apperrors.NotFound(fmt.Sprintf("unknown tool %q", name))
	}

	var missing []string
	for _, field := range tool.Required() {
		if in.get(field) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return Result{}, apperrors.Validation("missing required fields: " + strings.Join(missing, ", "))
	}

	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}

	out, err := tool.Run(ctx, in)
	if err != nil {
		return Result{}, err
	}
	r.logger.Debug("tool run", "tool", name, "output_len", len(out))

	return Result{Tool: name, Output: out, GeneratedAt: time.Now().UTC()}, nil
}
