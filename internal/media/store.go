package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/contabhub/onety-sub018/internal/gateway"

	"go.uber.org/zap"
)

// ===========================================================================
// Durable media store client.
// Accepts base64 bytes plus a MIME type and returns a durable public URL.
// ===========================================================================

// Store uploads media bytes and returns a durable public URL.
type Store interface {
	Upload(ctx context.Context, in *UploadInput) (*UploadResult, error)
}

// UploadInput is one upload request.
type UploadInput struct {
	// Base64 media bytes.
	Base64 string

	// MimeType content type of the bytes.
	MimeType string

	// FileName original file name, may be empty.
	FileName string

	// Kind the message kind, used to pick the store's logical resource type.
	Kind gateway.Type
}

// UploadResult is the store's response.
type UploadResult struct {
	URL        string  `json:"url"`
	Identifier string  `json:"identifier"`
	Format     string  `json:"format"`
	Size       int64   `json:"size"`
	Duration   float64 `json:"duration,omitempty"`
}

// StoreClient is the HTTP implementation of Store.
type StoreClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewStoreClient creates a media store client.
func NewStoreClient(baseURL, apiKey string, logger *zap.Logger) *StoreClient {
	return &StoreClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// uploadRequest is the store's wire format.
type uploadRequest struct {
	File         string `json:"file"`
	MimeType     string `json:"mimeType"`
	FileName     string `json:"fileName,omitempty"`
	ResourceType string `json:"resourceType"`
}

// Upload posts the base64 payload and returns the durable URL.
func (c *StoreClient) Upload(ctx context.Context, in *UploadInput) (*UploadResult, error) {
	if in.Base64 == "" {
		return nil, fmt.Errorf("media store: empty payload")
	}

	body, err := json.Marshal(uploadRequest{
		File:         in.Base64,
		MimeType:     in.MimeType,
		FileName:     in.FileName,
		ResourceType: ResourceType(in.Kind, in.MimeType),
	})
	if err != nil {
		return nil, fmt.Errorf("media store: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("media store: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media store: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("media store upload rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return nil, fmt.Errorf("media store: bad status %d", resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("media store: decode response: %w", err)
	}
	if result.URL == "" {
		return nil, fmt.Errorf("media store: response carries no url")
	}

	return &result, nil
}

// ResourceType derives the store's logical resource type. Audio, image and
// video kinds route to their own buckets; documents are routed by MIME
// prefix so an image sent "as document" still lands in the image bucket,
// with opaque binary as the fallback.
func ResourceType(kind gateway.Type, mimeType string) string {
	switch kind {
	case gateway.TypeAudio:
		return "audio"
	case gateway.TypeImage:
		return "image"
	case gateway.TypeVideo:
		return "video"
	}

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	default:
		return "file"
	}
}

// DefaultMimeType returns the type-specific MIME fallback used when neither
// the gateway nor content sniffing produced one.
func DefaultMimeType(kind gateway.Type) string {
	switch kind {
	case gateway.TypeAudio:
		return "audio/ogg"
	case gateway.TypeImage:
		return "image/jpeg"
	case gateway.TypeVideo:
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
