// Package generator talks to the narrative generation service over HTTP.
// The service is treated as unreliable: calls run behind a circuit
// breaker and callers substitute fallbacks when anything fails.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

const (
	imageEndpoint      = "/api/ml/generate-story-from-image"
	textEndpoint       = "/api/ml/generate-story-from-text"
	conclusionEndpoint = "/api/ml/generate-conclusion"
)

// Client implements ports.StoryGenerator against the model service's
// HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a generator client. timeout bounds each request;
// the breaker opens after sustained failures so a dead generator costs
// one failed call instead of one timeout per submission.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) ports.StoryGenerator {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "story-generator",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("generator circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

type storyResponse struct {
	Description  string `json:"description"`
	StorySegment string `json:"story_segment"`
}

type conclusionResponse struct {
	Conclusion          string `json:"conclusion"`
	CommunityReflection string `json:"community_reflection"`
}

// StoryFromImage sends the image as multipart form data along with the
// story so far
func (c *Client) StoryFromImage(ctx context.Context, image []byte, filename, storySoFar, mediaType string) (*ports.StoryResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, pkgerrors.NewExternalError("story generator", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, pkgerrors.NewExternalError("story generator", err)
	}
	if err := writer.WriteField("story_so_far", storySoFar); err != nil {
		return nil, pkgerrors.NewExternalError("story generator", err)
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.NewExternalError("story generator", err)
	}

	var out storyResponse
	if err := c.post(ctx, imageEndpoint, writer.FormDataContentType(), body, &out); err != nil {
		return nil, err
	}

	return &ports.StoryResult{Description: out.Description, StorySegment: out.StorySegment}, nil
}

// StoryFromText sends the text and the story so far as JSON
func (c *Client) StoryFromText(ctx context.Context, text, storySoFar string) (*ports.StoryResult, error) {
	payload, err := json.Marshal(map[string]string{
		"text":         text,
		"story_so_far": storySoFar,
	})
	if err != nil {
		return nil, pkgerrors.NewExternalError("story generator", err)
	}

	var out storyResponse
	if err := c.post(ctx, textEndpoint, "application/json", bytes.NewReader(payload), &out); err != nil {
		return nil, err
	}

	return &ports.StoryResult{Description: out.Description, StorySegment: out.StorySegment}, nil
}

// GenerateConclusion sends the finished story and the comparison set
func (c *Client) GenerateConclusion(ctx context.Context, story string, similarStories []string) (*ports.ConclusionResult, error) {
	if similarStories == nil {
		similarStories = []string{}
	}
	payload, err := json.Marshal(map[string]interface{}{
		"story":           story,
		"similar_stories": similarStories,
	})
	if err != nil {
		return nil, pkgerrors.NewExternalError("story generator", err)
	}

	var out conclusionResponse
	if err := c.post(ctx, conclusionEndpoint, "application/json", bytes.NewReader(payload), &out); err != nil {
		return nil, err
	}

	return &ports.ConclusionResult{Conclusion: out.Conclusion, CommunityReflection: out.CommunityReflection}, nil
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("generator returned %d: %s", resp.StatusCode, payload)
		}

		return nil, json.NewDecoder(resp.Body).Decode(out)
	})
	if err != nil {
		c.logger.Warn("generator call failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return pkgerrors.NewExternalError("story generator", err)
	}
	return nil
}
