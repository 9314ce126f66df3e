package ports

import (
	"context"

	"github.com/hoangngo-sudo/the-morytale/domain/events"
)

// StoryResult is the generator's output for one submission
type StoryResult struct {
	Description  string
	StorySegment string
}

// ConclusionResult is the generator's output for a track conclusion
type ConclusionResult struct {
	Conclusion          string
	CommunityReflection string
}

// StoryGenerator is the external narrative generation service. Every method
// may fail (network error, non-2xx, malformed body, timeout); callers treat
// failure as a first-class outcome and substitute deterministic fallbacks.
type StoryGenerator interface {
	// StoryFromImage turns an uploaded image into a description and the next
	// story segment, given the story accumulated so far
	StoryFromImage(ctx context.Context, image []byte, filename, storySoFar, mediaType string) (*StoryResult, error)

	// StoryFromText turns submitted text into a description and the next
	// story segment
	StoryFromText(ctx context.Context, text, storySoFar string) (*StoryResult, error)

	// GenerateConclusion produces closing text and a community reflection
	// from a finished story and a comparison set of other users' stories
	GenerateConclusion(ctx context.Context, story string, similarStories []string) (*ConclusionResult, error)
}

// ObjectStore is the external binary storage collaborator. Unlike the
// generator, an upload failure aborts the submission: without a durable URL
// there is nothing to store.
type ObjectStore interface {
	// Upload stores the binary and returns its public URL
	Upload(ctx context.Context, data []byte, mediaType string) (string, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
