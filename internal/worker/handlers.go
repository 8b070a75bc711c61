package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lumahq/dispatch/internal/config"
	"github.com/lumahq/dispatch/internal/dispatcher"
	"github.com/lumahq/dispatch/internal/dto"
	"gorm.io/datatypes"
)

// Registry maps every known job type to its handler. The job creation API
// only accepts types from the same closed enumeration, so a dispatched job
// can miss a handler only when a row was written by something other than
// the API.
func Registry() map[config.JobType]dispatcher.Handler {
	return map[config.JobType]dispatcher.Handler{
		config.JobTypeDocumentEmbedding: EmbedDocumentHandler,
		config.JobTypeStudioGenerate:    StudioGenerateHandler,
		config.JobTypeWizardImage:       WizardImageHandler,
		config.JobTypeCarouselRender:    CarouselRenderHandler,
		config.JobTypeInstagramPublish:  publishHandler("instagram"),
		config.JobTypeFacebookPublish:   publishHandler("facebook"),
		config.JobTypeScheduledPublish:  ScheduledPublishHandler,
		config.JobTypeContentScrape:     ContentScrapeHandler,
	}
}

// embedChunkSize is the rough character budget per embedding chunk.
const embedChunkSize = 1000

// EmbedDocumentHandler splits a document into chunks and embeds each one.
// The embedding call itself is simulated with a per-chunk delay.
func EmbedDocumentHandler(ctx context.Context, payload datatypes.JSON) (any, error) {
	var doc dto.EmbedDocumentPayload
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal embedding payload: %w", err)
	}

	chunks := chunkText(doc.Text, embedChunkSize)

	for range chunks {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	model := doc.Model
	if model == "" {
		model = "voyage-3-lite"
	}

	log.Printf("[worker] Embedded document %d: %d chunks with %s", doc.DocumentID, len(chunks), model)

	return map[string]any{
		"document_id": doc.DocumentID,
		"chunks":      len(chunks),
		"model":       model,
		"dimensions":  512,
		"embedded_at": time.Now().Format(time.RFC3339),
	}, nil
}

// publishHandler returns a handler that publishes a post to one social
// platform. The platform API call is simulated.
func publishHandler(platform string) dispatcher.Handler {
	return func(ctx context.Context, payload datatypes.JSON) (any, error) {
		var post dto.SocialPublishPayload
		if err := json.Unmarshal(payload, &post); err != nil {
			return nil, fmt.Errorf("unmarshal publish payload: %w", err)
		}

		select {
		case <-time.After(200 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		log.Printf("[worker] Published to %s for account %s (%d media)",
			platform, post.AccountID, len(post.MediaURLs))

		return map[string]any{
			"platform":     platform,
			"account_id":   post.AccountID,
			"post_id":      fmt.Sprintf("%s_%d", platform, time.Now().Unix()),
			"media_count":  len(post.MediaURLs),
			"published_at": time.Now().Format(time.RFC3339),
		}, nil
	}
}

// StudioGenerateHandler simulates generating creative-studio output for a
// project from a prompt.
func StudioGenerateHandler(ctx context.Context, payload datatypes.JSON) (any, error) {
	var gen dto.StudioGeneratePayload
	if err := json.Unmarshal(payload, &gen); err != nil {
		return nil, fmt.Errorf("unmarshal studio payload: %w", err)
	}

	select {
	case <-time.After(300 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	format := gen.Format
	if format == "" {
		format = "post"
	}

	log.Printf("[worker] Generated %s output for project %d", format, gen.ProjectID)

	return map[string]any{
		"project_id":   gen.ProjectID,
		"format":       format,
		"output_id":    fmt.Sprintf("out_%d", time.Now().UnixNano()),
		"generated_at": time.Now().Format(time.RFC3339),
	}, nil
}

// WizardImageHandler simulates generating one or more wizard images.
func WizardImageHandler(ctx context.Context, payload datatypes.JSON) (any, error) {
	var img dto.WizardImagePayload
	if err := json.Unmarshal(payload, &img); err != nil {
		return nil, fmt.Errorf("unmarshal wizard payload: %w", err)
	}

	count := img.Count
	if count == 0 {
		count = 1
	}

	select {
	case <-time.After(time.Duration(count) * 100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	log.Printf("[worker] Generated %d image(s) for wizard %d", count, img.WizardID)

	return map[string]any{
		"wizard_id":    img.WizardID,
		"images":       count,
		"generated_at": time.Now().Format(time.RFC3339),
	}, nil
}

// CarouselRenderHandler simulates rendering carousel slides to images.
func CarouselRenderHandler(ctx context.Context, payload datatypes.JSON) (any, error) {
	var render dto.CarouselRenderPayload
	if err := json.Unmarshal(payload, &render); err != nil {
		return nil, fmt.Errorf("unmarshal carousel payload: %w", err)
	}

	select {
	case <-time.After(time.Duration(render.Slides) * 50 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	log.Printf("[worker] Rendered %d slide(s) for project %d", render.Slides, render.ProjectID)

	return map[string]any{
		"project_id":  render.ProjectID,
		"slides":      render.Slides,
		"rendered_at": time.Now().Format(time.RFC3339),
	}, nil
}

// ScheduledPublishHandler simulates publishing a library post whose
// schedule came due.
func ScheduledPublishHandler(ctx context.Context, payload datatypes.JSON) (any, error) {
	var sched dto.ScheduledPublishPayload
	if err := json.Unmarshal(payload, &sched); err != nil {
		return nil, fmt.Errorf("unmarshal scheduled publish payload: %w", err)
	}

	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	log.Printf("[worker] Published scheduled post %d", sched.PostID)

	return map[string]any{
		"post_id":      sched.PostID,
		"published_at": time.Now().Format(time.RFC3339),
	}, nil
}

// ContentScrapeHandler simulates fetching and extracting a page for the
// discovery pipeline.
func ContentScrapeHandler(ctx context.Context, payload datatypes.JSON) (any, error) {
	var scrape dto.ContentScrapePayload
	if err := json.Unmarshal(payload, &scrape); err != nil {
		return nil, fmt.Errorf("unmarshal scrape payload: %w", err)
	}

	select {
	case <-time.After(150 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	log.Printf("[worker] Scraped %s", scrape.URL)

	return map[string]any{
		"url":        scrape.URL,
		"scraped_at": time.Now().Format(time.RFC3339),
	}, nil
}

// chunkText splits text into pieces of at most size characters, preferring
// to break at whitespace.
func chunkText(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for len(text) > size {
		cut := size
		if idx := strings.LastIndexAny(text[:size], " \t\n"); idx > 0 {
			cut = idx
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
