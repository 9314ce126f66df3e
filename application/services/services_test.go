package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/config"
	domainevents "github.com/hoangngo-sudo/the-morytale/domain/events"
	"github.com/hoangngo-sudo/the-morytale/infrastructure/persistence/memory"
)

// stubGenerator is a controllable ports.StoryGenerator
type stubGenerator struct {
	mu              sync.Mutex
	fail            bool
	imageCalls      int
	textCalls       int
	conclusionCalls int
	lastStorySoFar  string
	lastStory       string
	lastSimilar     []string

	storyResult      ports.StoryResult
	conclusionResult ports.ConclusionResult
}

func (g *stubGenerator) StoryFromImage(ctx context.Context, image []byte, filename, storySoFar, mediaType string) (*ports.StoryResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.imageCalls++
	g.lastStorySoFar = storySoFar
	if g.fail {
		return nil, errors.New("generator unavailable")
	}
	result := g.storyResult
	return &result, nil
}

func (g *stubGenerator) StoryFromText(ctx context.Context, text, storySoFar string) (*ports.StoryResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.textCalls++
	g.lastStorySoFar = storySoFar
	if g.fail {
		return nil, errors.New("generator unavailable")
	}
	result := g.storyResult
	return &result, nil
}

func (g *stubGenerator) GenerateConclusion(ctx context.Context, story string, similarStories []string) (*ports.ConclusionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conclusionCalls++
	g.lastStory = story
	g.lastSimilar = similarStories
	if g.fail {
		return nil, errors.New("generator unavailable")
	}
	result := g.conclusionResult
	return &result, nil
}

// stubStore is a controllable ports.ObjectStore
type stubStore struct {
	mu      sync.Mutex
	fail    bool
	uploads int
	url     string
}

func (s *stubStore) Upload(ctx context.Context, data []byte, mediaType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", errors.New("storage unavailable")
	}
	s.uploads++
	if s.url != "" {
		return s.url, nil
	}
	return "https://cdn.test/uploads/object.jpg", nil
}

// stubPublisher records published events
type stubPublisher struct {
	mu     sync.Mutex
	fail   bool
	events []domainevents.DomainEvent
}

func (p *stubPublisher) Publish(ctx context.Context, event domainevents.DomainEvent) error {
	return p.PublishBatch(ctx, []domainevents.DomainEvent{event})
}

func (p *stubPublisher) PublishBatch(ctx context.Context, events []domainevents.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("bus unavailable")
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *stubPublisher) published() []domainevents.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domainevents.DomainEvent{}, p.events...)
}

// testEnv wires the full service stack onto in-memory repositories
type testEnv struct {
	cfg      *config.DomainConfig
	items    *memory.ItemRepository
	nodes    *memory.NodeRepository
	tracks   *memory.TrackRepository
	gen      *stubGenerator
	store    *stubStore
	pub      *stubPublisher
	quota    *QuotaService
	engine   *ConclusionEngine
	trackSvc *TrackService
	subs     *SubmissionService
}

func newTestEnv(cfg *config.DomainConfig) *testEnv {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	logger := zap.NewNop()

	env := &testEnv{
		cfg:    cfg,
		items:  memory.NewItemRepository(),
		nodes:  memory.NewNodeRepository(),
		tracks: memory.NewTrackRepository(),
		gen:    &stubGenerator{},
		store:  &stubStore{},
		pub:    &stubPublisher{},
	}

	env.quota = NewQuotaService(env.items, cfg, logger)
	env.engine = NewConclusionEngine(env.tracks, env.gen, env.pub, cfg, logger)
	env.trackSvc = NewTrackService(env.tracks, env.engine, cfg, logger)
	env.subs = NewSubmissionService(env.items, env.nodes, env.tracks, env.store, env.gen, env.pub, env.quota, env.trackSvc, logger)

	return env
}
