// Package netx contains small HTTP helpers shared by services that talk to
// S3-compatible storage.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// UploadToPresignedURL PUTs the document bytes to a presigned object-storage
// URL. The response body is read on failure to include the storage error in
// the returned message.
func UploadToPresignedURL(ctx context.Context, client *http.Client, url string, doc []byte, contentType string) error {
	if client == nil {
		client = http.DefaultClient
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(doc))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
