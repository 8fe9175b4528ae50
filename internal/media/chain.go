package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/contabhub/onety-sub018/internal/gateway"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ===========================================================================
// Media Resolution Chain.
// Resolves a gateway media reference into a durable public URL through
// ordered fallback tiers. Later tiers are strictly more expensive and run
// only after the previous one failed, always sequentially. The chain never
// returns an error: when every tier fails it hands back whatever raw
// reference exists so the message is persisted rather than dropped.
// ===========================================================================

// Strategy is one fallback tier.
type Strategy interface {
	// Name identifies the tier in logs.
	Name() string

	// Attempt tries to produce a durable URL for the reference.
	Attempt(ctx context.Context, ref *gateway.MediaRef) (string, error)
}

// Chain runs strategies in order and stops at the first success.
type Chain struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewChain builds the production chain: inline upload, decrypt-and-upload,
// raw fetch-and-upload.
func NewChain(store Store, decrypter Decrypter, logger *zap.Logger) *Chain {
	return &Chain{
		strategies: []Strategy{
			&InlineStrategy{Store: store},
			&DecryptStrategy{Store: store, Decrypter: decrypter},
			&RawFetchStrategy{Store: store, Client: &http.Client{Timeout: 30 * time.Second}},
		},
		logger: logger,
	}
}

// NewChainWithStrategies builds a chain over explicit tiers. Used in tests.
func NewChainWithStrategies(logger *zap.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: logger}
}

// Resolve walks the tiers in order. Every tier failure is logged and
// demotes to the next tier; exhaustion returns the bare remote reference
// (possibly empty), never an error.
func (c *Chain) Resolve(ctx context.Context, ref *gateway.MediaRef) string {
	if ref == nil {
		return ""
	}

	for _, strategy := range c.strategies {
		url, err := strategy.Attempt(ctx, ref)
		if err == nil && url != "" {
			c.logger.Debug("media resolved",
				zap.String("tier", strategy.Name()),
				zap.String("kind", string(ref.Kind)),
			)
			return url
		}
		if err != nil {
			c.logger.Warn("media tier failed, demoting",
				zap.String("tier", strategy.Name()),
				zap.String("kind", string(ref.Kind)),
				zap.Error(err),
			)
		}
	}

	c.logger.Warn("media resolution exhausted, keeping raw reference",
		zap.String("kind", string(ref.Kind)),
		zap.Bool("has_raw_url", ref.RemoteURL != ""),
	)
	return ref.RemoteURL
}

// ===========================================================================
// Tier 1: inline payload.
// ===========================================================================

// InlineStrategy uploads bytes the gateway delivered inline.
type InlineStrategy struct {
	Store Store
}

func (s *InlineStrategy) Name() string { return "inline" }

func (s *InlineStrategy) Attempt(ctx context.Context, ref *gateway.MediaRef) (string, error) {
	if ref.InlineBase64 == "" {
		return "", fmt.Errorf("no inline payload")
	}

	result, err := s.Store.Upload(ctx, &UploadInput{
		Base64:   ref.InlineBase64,
		MimeType: mimeOrDefault(ref.MimeType, ref.Kind),
		FileName: ref.FileName,
		Kind:     ref.Kind,
	})
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

// ===========================================================================
// Tier 2: decryption service.
// ===========================================================================

// DecryptStrategy obtains bytes from the decryption service, then uploads.
type DecryptStrategy struct {
	Store     Store
	Decrypter Decrypter
}

func (s *DecryptStrategy) Name() string { return "decrypt" }

func (s *DecryptStrategy) Attempt(ctx context.Context, ref *gateway.MediaRef) (string, error) {
	if ref.Encrypted == nil {
		return "", fmt.Errorf("no encrypted reference")
	}

	decrypted, err := s.Decrypter.Decrypt(ctx, ref.Encrypted)
	if err != nil {
		return "", err
	}

	mime := decrypted.Mimetype
	if mime == "" {
		mime = mimeOrDefault(ref.MimeType, ref.Kind)
	}
	fileName := decrypted.FileName
	if fileName == "" {
		fileName = ref.FileName
	}

	result, err := s.Store.Upload(ctx, &UploadInput{
		Base64:   decrypted.Base64,
		MimeType: mime,
		FileName: fileName,
		Kind:     ref.Kind,
	})
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

// ===========================================================================
// Tier 3: raw fetch.
// ===========================================================================

// RawFetchStrategy downloads the bare remote URL and uploads the bytes.
// Useful when the gateway URL is publicly readable but short-lived.
type RawFetchStrategy struct {
	Store  Store
	Client *http.Client
}

func (s *RawFetchStrategy) Name() string { return "raw-fetch" }

func (s *RawFetchStrategy) Attempt(ctx context.Context, ref *gateway.MediaRef) (string, error) {
	if ref.RemoteURL == "" {
		return "", fmt.Errorf("no remote url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.RemoteURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch: bad status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("fetch: empty body")
	}

	mime := ref.MimeType
	if mime == "" {
		mime = resp.Header.Get("Content-Type")
	}
	if mime == "" || mime == "application/octet-stream" {
		// With bytes in hand, sniffing beats the generic default.
		mime = mimetype.Detect(raw).String()
	}
	if mime == "" {
		mime = DefaultMimeType(ref.Kind)
	}

	result, err := s.Store.Upload(ctx, &UploadInput{
		Base64:   base64.StdEncoding.EncodeToString(raw),
		MimeType: mime,
		FileName: ref.FileName,
		Kind:     ref.Kind,
	})
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

// mimeOrDefault applies the type-specific MIME fallback.
func mimeOrDefault(mime string, kind gateway.Type) string {
	if mime != "" {
		return mime
	}
	return DefaultMimeType(kind)
}
