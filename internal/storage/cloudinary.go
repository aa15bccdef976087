package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Storage abstracts the media store so the listing service and the purge
// worker do not care which provider holds the files.
type Storage interface {
	Delete(ctx context.Context, publicID string) error
	PublicURL(publicID string) string
}

// CloudinaryStorage removes listing media through the Cloudinary admin
// API. Uploads happen client-side (signed by the frontend); the backend
// only ever deletes, on detach, force delete and scheduled purge.
type CloudinaryStorage struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) *CloudinaryStorage {
	return &CloudinaryStorage{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	endpoint := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/resources/image/upload", s.cloudName)

	q := url.Values{}
	q.Add("public_ids[]", publicID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	req.SetBasicAuth(s.apiKey, s.apiSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete media %s: %w", publicID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete media %s failed (%d): %s", publicID, resp.StatusCode, string(body))
	}
	return nil
}

func (s *CloudinaryStorage) PublicURL(publicID string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s", s.cloudName, publicID)
}
