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
// Decryption service client.
// Gateway B media URLs are end-to-end encrypted; this collaborator holds
// the media keys and returns plain bytes for an encrypted reference.
// ===========================================================================

// Decrypter obtains plain media bytes for an encrypted gateway reference.
type Decrypter interface {
	Decrypt(ctx context.Context, ref *gateway.EncryptedRef) (*DecryptResult, error)
}

// DecryptResult is the service's response.
type DecryptResult struct {
	Base64   string `json:"base64"`
	Mimetype string `json:"mimetype"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

// DecryptClient is the HTTP implementation of Decrypter.
type DecryptClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewDecryptClient creates a decryption service client. The timeout bounds
// the blocking call so one slow decryption cannot stall ingestion.
func NewDecryptClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *DecryptClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DecryptClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// decryptRequest is the service's wire format: the message key that
// identifies the encrypted media on the gateway side.
type decryptRequest struct {
	Message decryptMessage `json:"message"`
}

type decryptMessage struct {
	Key decryptKey `json:"key"`
}

type decryptKey struct {
	ID        string `json:"id"`
	RemoteJid string `json:"remoteJid"`
}

// Decrypt fetches plain bytes for an encrypted reference. The instance name
// selects the gateway session holding the media keys.
func (c *DecryptClient) Decrypt(ctx context.Context, ref *gateway.EncryptedRef) (*DecryptResult, error) {
	if ref == nil || ref.MessageID == "" {
		return nil, fmt.Errorf("decrypt: missing encrypted reference")
	}

	body, err := json.Marshal(decryptRequest{
		Message: decryptMessage{
			Key: decryptKey{
				ID:        ref.MessageID,
				RemoteJid: ref.RemoteChatID,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("decrypt: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/getBase64FromMediaMessage/%s", c.baseURL, ref.InstanceName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decrypt: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("decrypt: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("decrypt service rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("instance", ref.InstanceName),
			zap.ByteString("body", raw),
		)
		return nil, fmt.Errorf("decrypt: bad status %d", resp.StatusCode)
	}

	var result DecryptResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decrypt: decode response: %w", err)
	}
	if result.Base64 == "" {
		return nil, fmt.Errorf("decrypt: response carries no payload")
	}

	return &result, nil
}
