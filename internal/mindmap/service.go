// Package mindmap is the submission flow: it validates a request, asks the
// generator for an outline, stores the result and serves it back for
// viewing.
package mindmap

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mindmapd/internal/diagram"
	"github.com/fyrsmithlabs/mindmapd/internal/events"
	"github.com/fyrsmithlabs/mindmapd/internal/generator"
	"github.com/fyrsmithlabs/mindmapd/internal/interaction"
	"github.com/fyrsmithlabs/mindmapd/internal/layout"
	"github.com/fyrsmithlabs/mindmapd/internal/outline"
	"github.com/fyrsmithlabs/mindmapd/internal/store"
)

const instrumentationName = "github.com/fyrsmithlabs/mindmapd/internal/mindmap"

var (
	// ErrValidation marks a submission rejected before generation.
	ErrValidation = errors.New("validation failed")

	// ErrGeneration marks a generator failure. No record is created.
	ErrGeneration = errors.New("failed to generate mind map")

	// ErrBusy is returned while an identical submission is still in flight.
	ErrBusy = errors.New("an identical submission is already in progress")
)

// CreateRequest is a form submission.
type CreateRequest struct {
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Settings *outline.Settings `json:"settings,omitempty"`
}

// Dependencies wires a Service.
type Dependencies struct {
	Store     store.Store
	Generator generator.Generator
	Layout    *layout.Engine
	Sessions  *interaction.Manager
	Events    events.Publisher
	Logger    *zap.Logger
}

// Service runs the submission flow and hands out viewer sessions.
type Service struct {
	store    store.Store
	gen      generator.Generator
	layout   *layout.Engine
	sessions *interaction.Manager
	events   events.Publisher
	logger   *zap.Logger
	now      func() time.Time

	tracer          trace.Tracer
	createdCounter  metric.Int64Counter
	failureCounter  metric.Int64Counter
	sessionsCounter metric.Int64Counter

	mu       sync.Mutex
	inflight map[[sha256.Size]byte]struct{}
}

// NewService creates a Service. Store and Generator are required.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("generator is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Layout == nil {
		eng, err := layout.New(nil)
		if err != nil {
			return nil, err
		}
		deps.Layout = eng
	}
	if deps.Sessions == nil {
		deps.Sessions = interaction.NewManager(nil, deps.Logger)
	}
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}

	s := &Service{
		store:    deps.Store,
		gen:      deps.Generator,
		layout:   deps.Layout,
		sessions: deps.Sessions,
		events:   deps.Events,
		logger:   deps.Logger,
		now:      time.Now,
		tracer:   otel.Tracer(instrumentationName),
		inflight: make(map[[sha256.Size]byte]struct{}),
	}
	s.initMetrics()
	return s, nil
}

func (s *Service) initMetrics() {
	meter := otel.Meter(instrumentationName)
	var err error

	s.createdCounter, err = meter.Int64Counter(
		"mindmapd.mindmap.created_total",
		metric.WithDescription("Total number of mind maps created"),
		metric.WithUnit("{mindmap}"),
	)
	if err != nil {
		s.logger.Warn("failed to create created counter", zap.Error(err))
	}

	s.failureCounter, err = meter.Int64Counter(
		"mindmapd.mindmap.generation_failures_total",
		metric.WithDescription("Total number of failed generations"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		s.logger.Warn("failed to create failure counter", zap.Error(err))
	}

	s.sessionsCounter, err = meter.Int64Counter(
		"mindmapd.viewer.sessions_opened_total",
		metric.WithDescription("Total number of viewer sessions opened"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		s.logger.Warn("failed to create sessions counter", zap.Error(err))
	}
}

// Sessions returns the viewer session registry.
func (s *Service) Sessions() *interaction.Manager { return s.sessions }

// Create validates req, generates its outline and stores the record.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*store.Record, error) {
	ctx, span := s.tracer.Start(ctx, "mindmap.create")
	defer span.End()

	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		err := fmt.Errorf("%w: title and content are required", ErrValidation)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	settings := outline.DefaultSettings()
	if req.Settings != nil {
		settings = *req.Settings
		settings.Normalize()
	}
	if err := settings.Validate(); err != nil {
		err = fmt.Errorf("%w: %v", ErrValidation, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("title", title),
		attribute.Int("content_length", len(content)),
		attribute.Int("max_depth", settings.MaxDepth),
	)

	key := fingerprint(title, content)
	if !s.acquire(key) {
		span.SetStatus(codes.Error, ErrBusy.Error())
		return nil, ErrBusy
	}
	defer s.release(key)

	structure, err := s.gen.Generate(ctx, generator.Request{
		Title:    title,
		Content:  content,
		MaxDepth: settings.MaxDepth,
	})
	if err != nil {
		if s.failureCounter != nil {
			s.failureCounter.Add(ctx, 1)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		s.logger.Error("mind map generation failed", zap.String("title", title), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	structure.Prune(settings.MaxDepth)

	rec := &store.Record{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Structure: structure,
		Settings:  settings,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to store mind map: %w", err)
	}

	span.SetAttributes(attribute.String("mindmap_id", rec.ID))
	if s.createdCounter != nil {
		s.createdCounter.Add(ctx, 1)
	}
	s.logger.Info("mind map created",
		zap.String("mindmap_id", rec.ID),
		zap.String("title", title),
		zap.Int("nodes", structure.Nodes[0].Count()))

	s.publish(ctx, events.Event{Type: events.TypeMindMapCreated, MindMapID: rec.ID, Title: rec.Title})
	return rec, nil
}

// Get returns a stored record.
func (s *Service) Get(ctx context.Context, id string) (*store.Record, error) {
	ctx, span := s.tracer.Start(ctx, "mindmap.get")
	defer span.End()
	span.SetAttributes(attribute.String("mindmap_id", id))

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rec, nil
}

// Search returns up to limit summaries whose title fuzzily matches query,
// best match first. An empty query lists the newest records.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]store.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "mindmap.search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query), attribute.Int("limit", limit))

	query = strings.TrimSpace(query)
	if query == "" {
		return s.store.List(ctx, limit)
	}

	all, err := s.store.List(ctx, 0)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	titles := make([]string, len(all))
	for i, sum := range all {
		titles[i] = sum.Title
	}
	ranks := fuzzy.RankFindFold(query, titles)
	sort.Stable(ranks)

	out := make([]store.Summary, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, all[r.OriginalIndex])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	span.SetAttributes(attribute.Int("results", len(out)))
	return out, nil
}

// Layout places the stored outline of id.
func (s *Service) Layout(ctx context.Context, id string) ([]diagram.Node, []diagram.Edge, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	nodes, edges := s.layout.Layout(rec.Structure)
	return nodes, edges, nil
}

// OpenSession lays out the mind map id and starts a viewer session on it.
func (s *Service) OpenSession(ctx context.Context, id string) (interaction.Info, interaction.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "mindmap.open_session")
	defer span.End()

	nodes, _, err := s.Layout(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return interaction.Info{}, interaction.Snapshot{}, err
	}

	info, snap, err := s.sessions.Open(id, nodes)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return interaction.Info{}, interaction.Snapshot{}, err
	}
	span.SetAttributes(attribute.String("session_id", info.ID))
	if s.sessionsCounter != nil {
		s.sessionsCounter.Add(ctx, 1)
	}

	s.publish(ctx, events.Event{Type: events.TypeSessionOpened, MindMapID: id, SessionID: info.ID})
	return info, snap, nil
}

// CloseSession tears a viewer session down.
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	info, err := s.sessions.Info(sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.Close(sessionID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.TypeSessionClosed, MindMapID: info.RecordID, SessionID: sessionID})
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	e.Time = s.now().UTC()
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("type", e.Type),
			zap.String("mindmap_id", e.MindMapID),
			zap.Error(err))
	}
}

func (s *Service) acquire(key [sha256.Size]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service) release(key [sha256.Size]byte) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

func fingerprint(title, content string) [sha256.Size]byte {
	return sha256.Sum256([]byte(title + "\x00" + content))
}
