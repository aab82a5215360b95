package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tristar/fitness-hub/internal/config"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL(config.S3Config{}))
	assert.Equal(t, "https://minio:9000", endpointURL(config.S3Config{Endpoint: "minio:9000", UseSSL: true}))
	assert.Equal(t, "http://minio:9000", endpointURL(config.S3Config{Endpoint: "minio:9000/"}))
	assert.Equal(t, "http://localhost:9000", endpointURL(config.S3Config{Endpoint: "http://localhost:9000", UseSSL: true}))
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{Region: "us-east-1"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

type recordedRequest struct {
	method string
	path   string
}

func newFakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	var mu sync.Mutex
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, recordedRequest{method: r.Method, path: r.URL.Path})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), seen...)
	}
}

func TestS3StorageAgainstFakeEndpoint(t *testing.T) {
	srv, requests := newFakeS3(t)
	cfg := config.S3Config{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "backups",
	}
	store, err := NewS3Storage(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.PutObject(ctx, "daily/2024-01-01.json", "application/json", []byte(`{}`)))
	require.NoError(t, store.DeleteObject(ctx, "daily/2024-01-01.json"))

	got := requests()
	require.Len(t, got, 2)
	assert.Equal(t, recordedRequest{http.MethodPut, "/backups/daily/2024-01-01.json"}, got[0])
	assert.Equal(t, recordedRequest{http.MethodDelete, "/backups/daily/2024-01-01.json"}, got[1])

	url, err := store.PresignedDownloadURL(ctx, "daily/2024-01-01.json", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/backups/daily/2024-01-01.json?"))
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=60")
}
