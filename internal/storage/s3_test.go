package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"f2fit/gym-manager/internal/config"
)

func newTestStorage(t *testing.T, endpoint string) FileStorage {
	t.Helper()
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        endpoint,
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "f2fit-exports",
	}, zap.NewNop())
	require.NoError(t, err)
	return fs
}

func TestPresignedDownloadURLUsesPathStyle(t *testing.T) {
	fs := newTestStorage(t, "http://localhost:9000")

	url, err := fs.GeneratePresignedDownloadURL(context.Background(), ExportKey("gym-1", "members_export_2025-10-23.csv"), time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/f2fit-exports/exports/gym-1/members_export_2025-10-23.csv?"))
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=60")
}

func TestPutObject(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fs := newTestStorage(t, srv.URL)
	err := fs.PutObject(context.Background(), "exports/gym-1/a.csv", "text/csv", []byte("Nom\nAwa\n"))
	require.NoError(t, err)
	assert.Equal(t, "/f2fit-exports/exports/gym-1/a.csv", gotPath)
	assert.Equal(t, "text/csv", gotType)
	assert.Contains(t, string(gotBody), "Nom\nAwa\n")
}

const listGymExports = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>f2fit-exports</Name>
  <Prefix>exports/gym-1/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>exports/gym-1/members_export_2025-10-23.csv</Key><Size>12</Size></Contents>
  <Contents><Key>exports/gym-1/plans_export_2025-10-23.pdf</Key><Size>40</Size></Contents>
</ListBucketResult>`

func TestDeletePrefix(t *testing.T) {
	var (
		mu      sync.Mutex
		prefix  string
		deleted []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			prefix = r.URL.Query().Get("prefix")
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(listGymExports))
		case http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	fs := newTestStorage(t, srv.URL)
	n, err := fs.DeletePrefix(context.Background(), ExportPrefix("gym-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "exports/gym-1/", prefix)
	assert.Equal(t, []string{
		"/f2fit-exports/exports/gym-1/members_export_2025-10-23.csv",
		"/f2fit-exports/exports/gym-1/plans_export_2025-10-23.pdf",
	}, deleted)

	_, err = fs.DeletePrefix(context.Background(), "")
	assert.Error(t, err)
}
