package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"promofeed/internal/broker"
	"promofeed/internal/cache"
	"promofeed/internal/config"
	"promofeed/internal/constants"
	"promofeed/internal/extraction"
	"promofeed/internal/logger"
	"promofeed/internal/source"
	"promofeed/pkg/cel"
	apperrors "promofeed/pkg/errors"
	"promofeed/pkg/logging"
	"promofeed/pkg/metrics"
	"promofeed/pkg/models"
	"promofeed/pkg/tracing"
)

// StorageLoader returns the persisted snapshot of messages.
type StorageLoader interface {
	Load(ctx context.Context) ([]models.MessageRecord, error)
}

type Query struct {
	Frame  string
	Filter string
}

// Status describes the most recent refresh.
type Status struct {
	Frame          string    `json:"timeframe"`
	Summary        string    `json:"message"`
	HasNewMessages bool      `json:"hasNewMessages"`
	MessageCount   int       `json:"messageCount"`
	StatusCode     int       `json:"statusCode"`
	LastError      string    `json:"lastError,omitempty"`
	RefreshedAt    time.Time `json:"refreshedAt"`
	Frames         []string  `json:"frames"`
}

type Option func(*Service)

func WithStorage(storage StorageLoader) Option {
	return func(s *Service) {
		s.storage = storage
	}
}

func WithCollector(c metrics.Collector) Option {
	return func(s *Service) {
		s.collector = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	fetcher   source.Fetcher
	extractor *extraction.Extractor
	repo      cache.Repository
	publisher broker.Publisher
	storage   StorageLoader
	evaluator *cel.Evaluator
	collector metrics.Collector
	cfg       config.RefreshConfig
	logger    logger.Logger
	now       func() time.Time

	mu     sync.RWMutex
	status Status
	frames map[string]struct{}
}

func NewService(
	fetcher source.Fetcher,
	extractor *extraction.Extractor,
	repo cache.Repository,
	publisher broker.Publisher,
	cfg config.RefreshConfig,
	log logger.Logger,
	opts ...Option,
) (*Service, error) {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL evaluator: %w", err)
	}

	s := &Service{
		fetcher:   fetcher,
		extractor: extractor,
		repo:      repo,
		publisher: publisher,
		evaluator: evaluator,
		collector: metrics.NewPrometheusCollector(),
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
		frames:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func endpointFor(frame string) source.Endpoint {
	if frame == constants.FrameAll {
		return source.EndpointAllComments
	}
	return source.EndpointLatest
}

// Refresh fetches the frame's endpoint, extracts it and replaces the cached feed.
// On fetch failure the cache keeps its previous content.
func (s *Service) Refresh(ctx context.Context, frame string) (result models.ParsedResult, err error) {
	if err := validateFrame(frame); err != nil {
		return models.ParsedResult{}, err
	}

	ctx = logging.WithTimeFrame(ctx, frame)
	ctx, span := tracing.StartSpan(ctx, "feed.refresh", attribute.String("feed.timeframe", frame))
	defer func() { tracing.EndSpan(span, err) }()

	start := s.now()
	env, err := s.fetcher.Fetch(ctx, endpointFor(frame))
	if err != nil {
		s.collector.RefreshFailed(frame)
		s.recordFailure(frame, err)
		s.logger.ErrorwCtx(ctx, "Failed to fetch feed", "error", err)
		return models.ParsedResult{}, apperrors.Wrap(err, apperrors.ErrUpstream)
	}

	result = s.extractor.Extract(env)
	SortNewestFirst(result.Messages)

	if err := s.repo.Set(ctx, frame, result.Messages); err != nil {
		s.collector.RefreshFailed(frame)
		s.recordFailure(frame, err)
		return models.ParsedResult{}, apperrors.Wrap(err, apperrors.ErrInternal)
	}

	s.publish(ctx, result.Messages)

	s.mu.Lock()
	s.frames[frame] = struct{}{}
	s.status = Status{
		Frame:          frame,
		Summary:        result.Message,
		HasNewMessages: result.HasNewMessages,
		MessageCount:   len(result.Messages),
		StatusCode:     env.StatusCode,
		RefreshedAt:    s.now(),
	}
	s.mu.Unlock()

	s.collector.RefreshSucceeded(frame, len(result.Messages), s.now().Sub(start))
	s.logger.InfowCtx(ctx, "Feed refreshed",
		"status_code", env.StatusCode,
		"messages", len(result.Messages),
		"summary", result.Message,
	)
	return result, nil
}

func (s *Service) publish(ctx context.Context, msgs []models.MessageRecord) {
	for _, m := range msgs {
		if err := models.ValidateRecord(m); err != nil {
			s.logger.WarnwCtx(ctx, "Skipping invalid record", "id", m.ID, "error", err)
			continue
		}
		if err := s.publisher.Publish(ctx, m); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to publish message", "id", m.ID, "error", err)
		}
	}
}

func (s *Service) recordFailure(frame string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Frame = frame
	s.status.LastError = err.Error()
	s.status.RefreshedAt = s.now()

	s.status.StatusCode = 0
	var statusErr *source.StatusError
	if errors.As(err, &statusErr) {
		s.status.StatusCode = statusErr.StatusCode
	}
}

// Messages serves the cached feed for q.Frame, refreshing first when the frame was never fetched.
func (s *Service) Messages(ctx context.Context, q Query) ([]models.MessageRecord, error) {
	if q.Frame == "" {
		q.Frame = constants.FrameAll
	}
	if err := validateFrame(q.Frame); err != nil {
		return nil, err
	}
	if q.Filter != "" {
		if err := s.evaluator.ValidateFilterExpression(q.Filter); err != nil {
			return nil, apperrors.ErrValidation.WithMessage(fmt.Sprintf("invalid filter: %v", err))
		}
	}

	msgs, ok, err := s.repo.Get(ctx, q.Frame)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Cache read failed, refreshing", "timeframe", q.Frame, "error", err)
	}
	if err != nil || !ok {
		result, err := s.Refresh(ctx, q.Frame)
		if err != nil {
			return nil, err
		}
		msgs = result.Messages
	}

	return s.narrow(ctx, msgs, q)
}

// Stored loads the storage snapshot and narrows it like Messages.
func (s *Service) Stored(ctx context.Context, q Query) ([]models.MessageRecord, error) {
	if s.storage == nil {
		return nil, apperrors.ErrServiceUnavailable.WithMessage("storage source is not configured")
	}
	if q.Frame == "" {
		q.Frame = constants.FrameAll
	}
	if err := validateFrame(q.Frame); err != nil {
		return nil, err
	}

	msgs, err := s.storage.Load(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUpstream)
	}
	SortNewestFirst(msgs)
	return s.narrow(ctx, msgs, q)
}

func (s *Service) narrow(ctx context.Context, msgs []models.MessageRecord, q Query) ([]models.MessageRecord, error) {
	out, err := FilterByTimeFrame(msgs, q.Frame, s.now())
	if err != nil {
		return nil, err
	}
	if q.Filter == "" {
		return out, nil
	}

	out, err = s.evaluator.Filter(ctx, q.Filter, out)
	if err != nil {
		return nil, apperrors.ErrValidation.WithMessage(fmt.Sprintf("invalid filter: %v", err))
	}
	return out, nil
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.status
	st.Frames = s.fetchedFramesLocked()
	return st
}

func (s *Service) fetchedFramesLocked() []string {
	frames := make([]string, 0, len(s.frames))
	for f := range s.frames {
		frames = append(frames, f)
	}
	sort.Strings(frames)
	return frames
}

// Extractor exposes the extractor used for refreshes.
func (s *Service) Extractor() *extraction.Extractor {
	return s.extractor
}
