package crashguard

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ///////////////////////////////////////////////
// Report Upload
// ///////////////////////////////////////////////

var (
	uploadClientOnce sync.Once
	uploadClient     *retryablehttp.Client
)

// httpClient returns a shared HTTP client with retry support.
func httpClient() *retryablehttp.Client {
	uploadClientOnce.Do(func() {
		c := retryablehttp.NewClient()
		c.RetryMax = 2
		c.HTTPClient.Timeout = 10 * time.Second
		c.Logger = nil
		uploadClient = c
	})
	return uploadClient
}

// Uploader posts crash reports to a collection endpoint as JSON.
type Uploader struct {
	url    string
	client *retryablehttp.Client
}

// NewUploader returns an uploader that posts reports to url.
func NewUploader(url string) *Uploader {
	return &Uploader{url: url, client: httpClient()}
}

// Upload posts r to the endpoint. Non-2xx responses are errors.
func (u *Uploader) Upload(r *Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode crash report: %w", err)
	}
	resp, err := u.client.Post(u.url, "application/json", body)
	if err != nil {
		return fmt.Errorf("failed to post crash report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("crash report rejected: %s", resp.Status)
	}
	return nil
}
