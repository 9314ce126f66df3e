package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/application/services"
	domainconfig "github.com/hoangngo-sudo/the-morytale/domain/config"
	domainevents "github.com/hoangngo-sudo/the-morytale/domain/events"
	"github.com/hoangngo-sudo/the-morytale/infrastructure/persistence/memory"
	"github.com/hoangngo-sudo/the-morytale/pkg/auth"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

type fakeGenerator struct {
	fail bool
}

func (g *fakeGenerator) StoryFromImage(ctx context.Context, image []byte, filename, storySoFar, mediaType string) (*ports.StoryResult, error) {
	if g.fail {
		return nil, errors.New("generator down")
	}
	return &ports.StoryResult{Description: "an image", StorySegment: "Something was seen."}, nil
}

func (g *fakeGenerator) StoryFromText(ctx context.Context, text, storySoFar string) (*ports.StoryResult, error) {
	if g.fail {
		return nil, errors.New("generator down")
	}
	return &ports.StoryResult{Description: "a note", StorySegment: "Something was written."}, nil
}

func (g *fakeGenerator) GenerateConclusion(ctx context.Context, story string, similarStories []string) (*ports.ConclusionResult, error) {
	if g.fail {
		return nil, errors.New("generator down")
	}
	return &ports.ConclusionResult{Conclusion: "The end.", CommunityReflection: "So it goes."}, nil
}

type fakeStore struct{}

func (s *fakeStore) Upload(ctx context.Context, data []byte, mediaType string) (string, error) {
	return "https://cdn.test/uploads/fixture.jpg", nil
}

type fakePublisher struct{}

func (p *fakePublisher) Publish(ctx context.Context, event domainevents.DomainEvent) error {
	return nil
}

func (p *fakePublisher) PublishBatch(ctx context.Context, events []domainevents.DomainEvent) error {
	return nil
}

type handlerEnv struct {
	cfg    *domainconfig.DomainConfig
	items  *memory.ItemRepository
	nodes  *memory.NodeRepository
	tracks *memory.TrackRepository
	gen    *fakeGenerator
	router http.Handler
}

func newHandlerEnv(cfg *domainconfig.DomainConfig) *handlerEnv {
	if cfg == nil {
		cfg = domainconfig.DefaultDomainConfig()
	}
	logger := zap.NewNop()

	env := &handlerEnv{
		cfg:    cfg,
		items:  memory.NewItemRepository(),
		nodes:  memory.NewNodeRepository(),
		tracks: memory.NewTrackRepository(),
		gen:    &fakeGenerator{},
	}

	publisher := &fakePublisher{}
	quota := services.NewQuotaService(env.items, cfg, logger)
	engine := services.NewConclusionEngine(env.tracks, env.gen, publisher, cfg, logger)
	trackSvc := services.NewTrackService(env.tracks, engine, cfg, logger)
	subs := services.NewSubmissionService(env.items, env.nodes, env.tracks, &fakeStore{}, env.gen, publisher, quota, trackSvc, logger)

	errorHandler := pkgerrors.NewErrorHandler(logger, false)
	submissionHandler := NewSubmissionHandler(subs, env.items, errorHandler, logger)
	trackHandler := NewTrackHandler(trackSvc, errorHandler, logger)
	nodeHandler := NewNodeHandler(env.nodes, cfg, errorHandler, logger)

	r := chi.NewRouter()
	r.Route("/items", func(r chi.Router) {
		r.Post("/", submissionHandler.CreateItem)
		r.Get("/{itemID}", submissionHandler.GetItem)
	})
	r.Route("/tracks", func(r chi.Router) {
		r.Get("/current", trackHandler.GetCurrent)
		r.Get("/history", trackHandler.GetHistory)
		r.Get("/{trackID}", trackHandler.GetTrack)
		r.Get("/{trackID}/story", trackHandler.GetStory)
		r.Put("/{trackID}", trackHandler.UpdateTrack)
		r.Post("/{trackID}/conclude", trackHandler.ConcludeTrack)
	})
	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", nodeHandler.ListNodes)
		r.Get("/{nodeID}", nodeHandler.GetNode)
	})
	env.router = r

	return env
}

func (env *handlerEnv) do(t *testing.T, method, target, userID, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{UserID: userID}))

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func TestCreateItem_TextJSON(t *testing.T) {
	env := newHandlerEnv(nil)

	body := `{"kind":"text","text":"a quiet evening"}`
	rec := env.do(t, http.MethodPost, "/items", "user-1", "application/json", strings.NewReader(body))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SubmitResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "text", resp.Item.Kind)
	assert.Equal(t, "a note", resp.Item.Description)
	assert.Equal(t, "Something was written.", resp.Node.RecapSentence)
	assert.Equal(t, "Something was written.", resp.Track.Story)
	assert.Equal(t, env.cfg.DailyPostLimit-1, resp.Remaining)
}

// createImagePart adds a file part carrying an explicit image content type,
// the way browsers and upload clients declare it
func createImagePart(t *testing.T, writer *multipart.Writer, filename, mediaType string) io.Writer {
	t.Helper()
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mediaType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	return part
}

func TestCreateItem_Multipart(t *testing.T) {
	env := newHandlerEnv(nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("caption", "on the shore"))

	part := createImagePart(t, writer, "beach.jpg", "image/jpeg")
	_, err := part.Write([]byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)

	// A second file part must be ignored
	part = createImagePart(t, writer, "ignored.jpg", "image/jpeg")
	_, err = part.Write([]byte{0x00})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := env.do(t, http.MethodPost, "/items", "user-1", writer.FormDataContentType(), &buf)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp SubmitResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "image", resp.Item.Kind)
	assert.Equal(t, "https://cdn.test/uploads/fixture.jpg", resp.Item.ContentURL)
	assert.Equal(t, "on the shore", resp.Item.Caption)
	assert.Equal(t, "Something was seen.", resp.Node.RecapSentence)
}

func TestCreateItem_MultipartRejectsNonImage(t *testing.T) {
	env := newHandlerEnv(nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part := createImagePart(t, writer, "notes.txt", "text/plain")
	_, err := part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := env.do(t, http.MethodPost, "/items", "user-1", writer.FormDataContentType(), &buf)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateItem_QuotaExceeded(t *testing.T) {
	cfg := domainconfig.DefaultDomainConfig()
	cfg.DailyPostLimit = 1
	env := newHandlerEnv(cfg)

	body := `{"kind":"text","text":"first"}`
	rec := env.do(t, http.MethodPost, "/items", "user-1", "application/json", strings.NewReader(body))
	require.Equal(t, http.StatusCreated, rec.Code)

	body = `{"kind":"text","text":"second"}`
	rec = env.do(t, http.MethodPost, "/items", "user-1", "application/json", strings.NewReader(body))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestCreateItem_InvalidBody(t *testing.T) {
	env := newHandlerEnv(nil)

	rec := env.do(t, http.MethodPost, "/items", "user-1", "application/json", strings.NewReader(`{"kind":"video"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetItem(t *testing.T) {
	env := newHandlerEnv(nil)

	rec := env.do(t, http.MethodPost, "/items", "user-1", "application/json", strings.NewReader(`{"kind":"text","text":"mine"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created SubmitResponse
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodGet, "/items/"+created.Item.ID, "user-1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/items/"+created.Item.ID, "user-2", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/items/00000000-0000-4000-8000-000000000000", "user-1", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrackEndpoints(t *testing.T) {
	env := newHandlerEnv(nil)

	// Current track exists on first request
	rec := env.do(t, http.MethodGet, "/tracks/current", "user-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var track TrackResponse
	decodeBody(t, rec, &track)
	assert.Equal(t, "active", track.Status)
	assert.Empty(t, track.NodeIDs)

	// Story view shows a placeholder until text accumulates
	rec = env.do(t, http.MethodGet, "/tracks/"+track.ID+"/story", "user-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var storyBody struct {
		Story string `json:"story"`
	}
	decodeBody(t, rec, &storyBody)
	assert.Contains(t, storyBody.Story, "not yet generated")

	// Concluding an empty track conflicts
	rec = env.do(t, http.MethodPost, "/tracks/"+track.ID+"/conclude", "user-1", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Submit something, then conclude
	rec = env.do(t, http.MethodPost, "/items", "user-1", "application/json", strings.NewReader(`{"kind":"text","text":"entry"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/tracks/"+track.ID+"/conclude", "user-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &track)
	assert.Equal(t, "concluded", track.Status)
	assert.Contains(t, track.Story, "The end.")
	assert.Equal(t, "So it goes.", track.CommunityReflection)

	// Story view
	rec = env.do(t, http.MethodGet, "/tracks/"+track.ID+"/story", "user-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// An edit without a story field is a validation failure
	rec = env.do(t, http.MethodPut, "/tracks/"+track.ID, "user-1", "application/json", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Story edits are allowed after conclusion
	rec = env.do(t, http.MethodPut, "/tracks/"+track.ID, "user-1", "application/json", strings.NewReader(`{"story":"rewritten"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &track)
	assert.Equal(t, "rewritten", track.Story)

	// Other users cannot see the track
	rec = env.do(t, http.MethodGet, "/tracks/"+track.ID, "user-2", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// History includes the concluded track
	rec = env.do(t, http.MethodGet, "/tracks/history", "user-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Tracks []TrackResponse `json:"tracks"`
		Count  int             `json:"count"`
	}
	decodeBody(t, rec, &history)
	assert.GreaterOrEqual(t, history.Count, 1)
}

func TestNodeEndpoints(t *testing.T) {
	env := newHandlerEnv(nil)

	rec := env.do(t, http.MethodPost, "/items", "user-1", "application/json", strings.NewReader(`{"kind":"text","text":"entry"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created SubmitResponse
	decodeBody(t, rec, &created)

	rec = env.do(t, http.MethodGet, "/nodes", "user-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Nodes []NodeResponse `json:"nodes"`
		Count int            `json:"count"`
	}
	decodeBody(t, rec, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, created.Node.ID, list.Nodes[0].ID)

	rec = env.do(t, http.MethodGet, "/nodes/"+created.Node.ID, "user-1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/nodes/"+created.Node.ID, "user-2", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/nodes?limit=abc", "user-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
