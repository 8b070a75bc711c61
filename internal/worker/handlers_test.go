package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lumahq/dispatch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRegistry_CoversAllJobTypes(t *testing.T) {
	registry := Registry()

	for _, jt := range config.AllowedJobTypes {
		assert.Contains(t, registry, jt, "no handler registered for %s", jt)
	}
	assert.Len(t, registry, len(config.AllowedJobTypes))
}

func TestEmbedDocumentHandler(t *testing.T) {
	payload := datatypes.JSON([]byte(`{"document_id":42,"text":"` + strings.Repeat("word ", 500) + `"}`))

	result, err := EmbedDocumentHandler(context.Background(), payload)
	require.NoError(t, err)

	m, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, uint(42), m["document_id"])
	assert.Equal(t, 3, m["chunks"])
	assert.Equal(t, "voyage-3-lite", m["model"])
}

func TestEmbedDocumentHandler_BadPayload(t *testing.T) {
	_, err := EmbedDocumentHandler(context.Background(), datatypes.JSON([]byte(`{`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal embedding payload")
}

func TestEmbedDocumentHandler_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload := datatypes.JSON([]byte(`{"document_id":1,"text":"short text"}`))
	_, err := EmbedDocumentHandler(ctx, payload)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublishHandler(t *testing.T) {
	h := publishHandler("instagram")

	payload := datatypes.JSON([]byte(`{"account_id":"acct_1","caption":"hi","media_urls":["https://cdn.example.com/a.png"]}`))
	result, err := h(context.Background(), payload)
	require.NoError(t, err)

	m, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "instagram", m["platform"])
	assert.Equal(t, "acct_1", m["account_id"])
	assert.Equal(t, 1, m["media_count"])
	assert.True(t, strings.HasPrefix(m["post_id"].(string), "instagram_"))
}

func TestCarouselRenderHandler(t *testing.T) {
	payload := datatypes.JSON([]byte(`{"project_id":3,"slides":2}`))

	start := time.Now()
	result, err := CarouselRenderHandler(context.Background(), payload)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	m := result.(map[string]any)
	assert.Equal(t, 2, m["slides"])
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want int
	}{
		{"empty", "", 10, 0},
		{"whitespace only", "   \n\t ", 10, 0},
		{"fits in one chunk", "hello world", 100, 1},
		{"splits at whitespace", strings.Repeat("word ", 50), 100, 3},
		{"unbroken run", strings.Repeat("x", 25), 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := chunkText(tt.text, tt.size)
			assert.Len(t, chunks, tt.want)
			for _, c := range chunks {
				assert.LessOrEqual(t, len(c), tt.size)
				assert.NotEmpty(t, c)
			}
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg: Config{
				MaxWorkers:     4,
				HandlerTimeout: time.Minute,
				IdleDelay:      time.Second,
				MaxIdleDelay:   time.Minute,
			},
		},
		{
			name: "no workers",
			cfg: Config{
				HandlerTimeout: time.Minute,
				IdleDelay:      time.Second,
				MaxIdleDelay:   time.Minute,
			},
			wantErr: "MAX_WORKERS must be at least 1",
		},
		{
			name: "max idle below idle",
			cfg: Config{
				MaxWorkers:     1,
				HandlerTimeout: time.Minute,
				IdleDelay:      time.Minute,
				MaxIdleDelay:   time.Second,
			},
			wantErr: "WORKER_MAX_IDLE_DELAY must not be below WORKER_IDLE_DELAY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
