package media_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contabhub/onety-sub018/internal/gateway"
	"github.com/contabhub/onety-sub018/internal/media"
	"github.com/contabhub/onety-sub018/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreClientUpload(t *testing.T) {
	var captured struct {
		File         string `json:"file"`
		MimeType     string `json:"mimeType"`
		FileName     string `json:"fileName"`
		ResourceType string `json:"resourceType"`
	}
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(media.UploadResult{
			URL:        "https://media.example.com/abc.jpg",
			Identifier: "abc",
			Format:     "jpg",
			Size:       1234,
		})
	}))
	defer server.Close()

	client := media.NewStoreClient(server.URL, "secret-key", logger.NewNop())

	result, err := client.Upload(context.Background(), &media.UploadInput{
		Base64:   "aGVsbG8=",
		MimeType: "image/jpeg",
		FileName: "foto.jpg",
		Kind:     gateway.TypeImage,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/abc.jpg", result.URL)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "aGVsbG8=", captured.File)
	assert.Equal(t, "image/jpeg", captured.MimeType)
	assert.Equal(t, "foto.jpg", captured.FileName)
	assert.Equal(t, "image", captured.ResourceType)
}

func TestStoreClientRejectsEmptyPayload(t *testing.T) {
	client := media.NewStoreClient("http://localhost:1", "", logger.NewNop())

	_, err := client.Upload(context.Background(), &media.UploadInput{Kind: gateway.TypeImage})

	assert.Error(t, err)
}

func TestStoreClientBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := media.NewStoreClient(server.URL, "", logger.NewNop())

	_, err := client.Upload(context.Background(), &media.UploadInput{
		Base64: "aGVsbG8=",
		Kind:   gateway.TypeImage,
	})

	assert.Error(t, err)
}

func TestStoreClientMissingURLInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"identifier":"abc"}`))
	}))
	defer server.Close()

	client := media.NewStoreClient(server.URL, "", logger.NewNop())

	_, err := client.Upload(context.Background(), &media.UploadInput{
		Base64: "aGVsbG8=",
		Kind:   gateway.TypeImage,
	})

	assert.Error(t, err)
}

func TestDecryptClient(t *testing.T) {
	var captured struct {
		Message struct {
			Key struct {
				ID        string `json:"id"`
				RemoteJid string `json:"remoteJid"`
			} `json:"key"`
		} `json:"message"`
	}
	var gotPath, gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(media.DecryptResult{
			Base64:   "cGxhaW4=",
			Mimetype: "audio/ogg; codecs=opus",
			FileName: "audio.ogg",
		})
	}))
	defer server.Close()

	client := media.NewDecryptClient(server.URL, "evolution-key", 5*time.Second, logger.NewNop())

	result, err := client.Decrypt(context.Background(), &gateway.EncryptedRef{
		InstanceName: "suporte",
		MessageID:    "3EB0A",
		RemoteChatID: "5511999990000@s.whatsapp.net",
	})

	require.NoError(t, err)
	assert.Equal(t, "cGxhaW4=", result.Base64)
	assert.Equal(t, "/chat/getBase64FromMediaMessage/suporte", gotPath)
	assert.Equal(t, "evolution-key", gotKey)
	assert.Equal(t, "3EB0A", captured.Message.Key.ID)
	assert.Equal(t, "5511999990000@s.whatsapp.net", captured.Message.Key.RemoteJid)
}

func TestDecryptClientMissingReference(t *testing.T) {
	client := media.NewDecryptClient("http://localhost:1", "", time.Second, logger.NewNop())

	_, err := client.Decrypt(context.Background(), nil)
	assert.Error(t, err)

	_, err = client.Decrypt(context.Background(), &gateway.EncryptedRef{InstanceName: "suporte"})
	assert.Error(t, err)
}

func TestDecryptClientEmptyPayloadResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mimetype":"audio/ogg"}`))
	}))
	defer server.Close()

	client := media.NewDecryptClient(server.URL, "", time.Second, logger.NewNop())

	_, err := client.Decrypt(context.Background(), &gateway.EncryptedRef{
		InstanceName: "suporte",
		MessageID:    "3EB0A",
	})

	assert.Error(t, err)
}
