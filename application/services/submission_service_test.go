package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/domain/core/valueobjects"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

func textRequest(text string) SubmitRequest {
	return SubmitRequest{Kind: valueobjects.KindText, Text: text}
}

func imageRequest(data []byte) SubmitRequest {
	return SubmitRequest{
		Kind:      valueobjects.KindImage,
		ImageData: data,
		Filename:  "photo.jpg",
		MediaType: "image/jpeg",
	}
}

func TestSubmit_Text(t *testing.T) {
	env := newTestEnv(nil)
	env.gen.storyResult = ports.StoryResult{
		Description:  "A walk in the park.",
		StorySegment: "The park was quiet that morning.",
	}
	ctx := context.Background()

	result, err := env.subs.Submit(ctx, "user-1", textRequest("went for a walk"))
	require.NoError(t, err)

	assert.Equal(t, "A walk in the park.", result.Item.Description())
	assert.Equal(t, "The park was quiet that morning.", result.Node.RecapSentence())
	assert.Nil(t, result.Node.PreviousNodeID())
	assert.Equal(t, "The park was quiet that morning.", result.Track.Story())
	assert.Equal(t, 1, result.Track.NodeCount())
	assert.Equal(t, env.cfg.DailyPostLimit-1, result.Remaining)

	published := env.pub.published()
	require.Len(t, published, 2)
	assert.Equal(t, "item.created", published[0].GetEventType())
	assert.Equal(t, "node.linked", published[1].GetEventType())
}

func TestSubmit_ChainsNodes(t *testing.T) {
	env := newTestEnv(nil)
	env.gen.storyResult = ports.StoryResult{Description: "d", StorySegment: "s"}
	ctx := context.Background()

	first, err := env.subs.Submit(ctx, "user-1", textRequest("one"))
	require.NoError(t, err)

	second, err := env.subs.Submit(ctx, "user-1", textRequest("two"))
	require.NoError(t, err)

	require.NotNil(t, second.Node.PreviousNodeID())
	assert.True(t, first.Node.ID().Equals(*second.Node.PreviousNodeID()))

	// The generator saw the story accumulated so far
	assert.Equal(t, "s", env.gen.lastStorySoFar)

	// Another user's chain starts fresh
	other, err := env.subs.Submit(ctx, "user-2", textRequest("hello"))
	require.NoError(t, err)
	assert.Nil(t, other.Node.PreviousNodeID())
}

func TestSubmit_Text_GeneratorFailure(t *testing.T) {
	env := newTestEnv(nil)
	env.gen.fail = true
	ctx := context.Background()

	result, err := env.subs.Submit(ctx, "user-1", textRequest("the raw words"))
	require.NoError(t, err)

	// Fallback: canned description, the raw text as segment
	assert.Equal(t, FallbackTextDescription, result.Item.Description())
	assert.Equal(t, "the raw words", result.Node.RecapSentence())
	assert.Equal(t, "the raw words", result.Track.Story())
}

func TestSubmit_Image(t *testing.T) {
	env := newTestEnv(nil)
	env.store.url = "https://cdn.test/uploads/abc.jpg"
	env.gen.storyResult = ports.StoryResult{
		Description:  "A sunset over water.",
		StorySegment: "The sky burned orange.",
	}
	ctx := context.Background()

	result, err := env.subs.Submit(ctx, "user-1", imageRequest([]byte{0xFF, 0xD8}))
	require.NoError(t, err)

	assert.Equal(t, valueobjects.KindImage, result.Item.Content().Kind())
	assert.Equal(t, "https://cdn.test/uploads/abc.jpg", result.Item.Content().ContentURL())
	assert.Equal(t, "A sunset over water.", result.Item.Description())
	assert.Equal(t, "The sky burned orange.", result.Track.Story())
	assert.Equal(t, 1, env.store.uploads)
	assert.Equal(t, 1, env.gen.imageCalls)
}

func TestSubmit_Image_GeneratorFailure(t *testing.T) {
	env := newTestEnv(nil)
	env.gen.fail = true
	ctx := context.Background()

	result, err := env.subs.Submit(ctx, "user-1", imageRequest([]byte{0xFF, 0xD8}))
	require.NoError(t, err)

	assert.Equal(t, FallbackImageDescription, result.Item.Description())
	assert.Equal(t, FallbackImageSegment, result.Node.RecapSentence())
	assert.Equal(t, FallbackImageSegment, result.Track.Story())
}

func TestSubmit_Image_URLOnly(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	req := SubmitRequest{
		Kind:     valueobjects.KindImage,
		ImageURL: "https://elsewhere.example.com/pic.png",
		Caption:  "borrowed",
	}
	result, err := env.subs.Submit(ctx, "user-1", req)
	require.NoError(t, err)

	// No upload, no generator call, no narrative contribution
	assert.Equal(t, "https://elsewhere.example.com/pic.png", result.Item.Content().ContentURL())
	assert.Empty(t, result.Item.Description())
	assert.Empty(t, result.Node.RecapSentence())
	assert.Empty(t, result.Track.Story())
	assert.Zero(t, env.store.uploads)
	assert.Zero(t, env.gen.imageCalls)
	assert.Equal(t, 1, result.Track.NodeCount())
}

func TestSubmit_StorageFailureAborts(t *testing.T) {
	env := newTestEnv(nil)
	env.store.fail = true
	ctx := context.Background()

	_, err := env.subs.Submit(ctx, "user-1", imageRequest([]byte{0xFF, 0xD8}))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsExternal(err))

	// Nothing was persisted
	status, err := env.quota.CheckDailyLimit(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, status.Count)

	nodes, err := env.nodes.GetByUserID(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestSubmit_DailyQuota(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.DailyPostLimit = 2
	env := newTestEnv(cfg)
	ctx := context.Background()

	first, err := env.subs.Submit(ctx, "user-1", textRequest("one"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Remaining)

	second, err := env.subs.Submit(ctx, "user-1", textRequest("two"))
	require.NoError(t, err)
	assert.Zero(t, second.Remaining)

	_, err = env.subs.Submit(ctx, "user-1", textRequest("three"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsRateLimit(err))
}

func TestSubmit_CapacityAutoConcludes(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.TrackNodeLimit = 3
	env := newTestEnv(cfg)
	env.gen.storyResult = ports.StoryResult{Description: "d", StorySegment: "s"}
	ctx := context.Background()

	var last *SubmitResult
	for i := 0; i < 3; i++ {
		var err error
		last, err = env.subs.Submit(ctx, "user-1", textRequest("entry"))
		require.NoError(t, err)
	}

	assert.True(t, last.Track.IsConcluded())
	assert.Equal(t, 3, last.Track.NodeCount())

	// The next submission opens a fresh track
	next, err := env.subs.Submit(ctx, "user-1", textRequest("overflow"))
	require.NoError(t, err)
	assert.False(t, next.Track.ID().Equals(last.Track.ID()))
	assert.Equal(t, 1, next.Track.NodeCount())
}

func TestSubmit_Validation(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SubmitRequest
	}{
		{"missing kind", SubmitRequest{}},
		{"empty text", SubmitRequest{Kind: valueobjects.KindText, Text: "   "}},
		{"image without payload", SubmitRequest{Kind: valueobjects.KindImage}},
		{"non-image upload", SubmitRequest{Kind: valueobjects.KindImage, ImageData: []byte{1}, MediaType: "application/pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.subs.Submit(ctx, "user-1", tt.req)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}

	_, err := env.subs.Submit(ctx, "", textRequest("no user"))
	assert.True(t, pkgerrors.IsValidation(err))
}
