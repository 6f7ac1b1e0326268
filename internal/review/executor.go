package review

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/metrics"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/sampling"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/textgen"
)

// OnError selects what Execute does when a review's text cannot be produced.
type OnError string

const (
	// OnErrorAbort stops the run at the first failure.
	OnErrorAbort OnError = "abort"
	// OnErrorSkip drops the failing review and keeps going.
	OnErrorSkip OnError = "skip"
)

// Review is one generated row.
type Review struct {
	ID          int
	CustomerID  int
	Date        time.Time
	Year        int
	Rating      int
	Sentiment   Sentiment
	Topic       string
	Prompt      string
	Text        string
	CompanyName string
}

// Result is the outcome of executing a plan. Reviews keep plan order.
type Result struct {
	Reviews []Review
	Skipped []*apperr.ExternalServiceError
}

// Executor turns planned requests into reviews by calling Generator.
type Executor struct {
	Generator textgen.Generator
	// Concurrency above 1 fans calls out; results still follow plan order.
	Concurrency int
	OnError     OnError
	Logger      *slog.Logger
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Executor) skip() bool { return e.OnError == OnErrorSkip }

// Execute generates text for every request in plan.
func (e *Executor) Execute(ctx context.Context, plan []Request) (Result, error) {
	texts := make([]string, len(plan))
	errs := make([]*apperr.ExternalServiceError, len(plan))

	var err error
	if e.Concurrency <= 1 {
		err = e.runSequential(ctx, plan, texts, errs)
	} else {
		err = e.runParallel(ctx, plan, texts, errs)
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{Reviews: make([]Review, 0, len(plan))}
	for i, req := range plan {
		if errs[i] != nil {
			res.Skipped = append(res.Skipped, errs[i])
			continue
		}
		res.Reviews = append(res.Reviews, Review{
			ID:          req.ReviewID,
			CustomerID:  req.CustomerID,
			Date:        req.Date,
			Year:        req.Year,
			Rating:      req.Rating,
			Sentiment:   req.Sentiment,
			Topic:       req.Topic,
			Prompt:      req.Prompt,
			Text:        texts[i],
			CompanyName: req.CompanyName,
		})
		metrics.ReviewsGenerated.WithLabelValues(string(req.Sentiment)).Inc()
	}
	return res, nil
}

func (e *Executor) runSequential(ctx context.Context, plan []Request, texts []string, errs []*apperr.ExternalServiceError) error {
	for i, req := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := e.generate(ctx, req)
		if err != nil {
			if !e.skip() || ctx.Err() != nil {
				return err
			}
			errs[i] = err
			continue
		}
		texts[i] = text
	}
	return nil
}

func (e *Executor) runParallel(ctx context.Context, plan []Request, texts []string, errs []*apperr.ExternalServiceError) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Concurrency)
	for i := range plan {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := e.generate(gctx, plan[i])
			if err != nil {
				if !e.skip() || gctx.Err() != nil {
					return err
				}
				errs[i] = err
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (e *Executor) generate(ctx context.Context, req Request) (string, *apperr.ExternalServiceError) {
	name := e.Generator.Name()
	start := time.Now()
	text, err := e.Generator.Generate(ctx, req.SystemPrompt, req.Prompt)
	metrics.TextGenDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = textgen.ErrEmptyResponse
	}
	if err != nil {
		metrics.TextGenFailures.WithLabelValues(name).Inc()
		e.logger().Warn("review generation failed",
			"review_id", req.ReviewID,
			"provider", name,
			"error", err,
		)
		return "", &apperr.ExternalServiceError{Provider: name, ReviewID: req.ReviewID, Err: err}
	}
	return text, nil
}

// Generate plans cfg.NumReviews reviews from s and executes them.
func Generate(ctx context.Context, cfg Config, s *sampling.Stream, exec *Executor) (Result, error) {
	plan, err := Plan(cfg, s)
	if err != nil {
		return Result{}, err
	}
	return exec.Execute(ctx, plan)
}
