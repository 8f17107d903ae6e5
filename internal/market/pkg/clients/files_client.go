package clients

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"surplusmarket_api/internal/market/storage"
)

// FilesClient uploads listing images into the store's public bucket. It
// bypasses doRequest because uploads ship the file body raw, not JSON.
type FilesClient struct {
	*BaseClient
	bucket string
}

func NewFilesClient(base *BaseClient, bucket string) *FilesClient {
	return &FilesClient{BaseClient: base, bucket: bucket}
}

func (c *FilesClient) UploadImage(ctx context.Context, ownerID, filename string, r io.Reader) (string, error) {
	key := fmt.Sprintf("%s/%d_%s", ownerID, time.Now().UnixNano(), sanitizeFilename(filename))

	if err := c.wait(ctx); err != nil {
		return "", &storage.StorageError{Op: "upload " + key, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/storage/v1/object/%s/%s", c.BaseURL, c.bucket, key), r)
	if err != nil {
		return "", &storage.StorageError{Op: "upload " + key, Err: err}
	}
	contentType := mime.TypeByExtension(path.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(ctx, req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &storage.StorageError{Op: "upload " + key, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", &storage.StorageError{
			Op: "upload " + key,
			Err: &storage.RemoteError{
				Op:     "upload",
				Status: resp.StatusCode,
				Msg:    remoteMessage(body),
			},
		}
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.BaseURL, c.bucket, key), nil
}

// sanitizeFilename reduces an upload name to characters safe in an object
// key and a URL.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if strings.Trim(b.String(), ".-_") == "" {
		return "image"
	}
	return b.String()
}
