package videostream

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkamel7/academy-server-go/pkg/config"
)

// Provider encoding statuses as reported on the webhook.
const (
	StatusQueued             = 0
	StatusProcessing         = 1
	StatusEncoding           = 2
	StatusFinished           = 3
	StatusResolutionFinished = 4
	StatusFailed             = 5
)

// Client talks to the stream provider: video creation, direct-upload slots,
// signed playback URLs and webhook verification.
type Client struct {
	libraryID     string
	apiKey        string
	baseURL       string
	signingKey    string
	deliveryURL   string
	expiresIn     int
	webhookSecret string
	httpClient    *http.Client
}

// NewClient builds a stream client from the video configuration section.
func NewClient(cfg config.VideoConfig) *Client {
	return &Client{
		libraryID:     cfg.LibraryID,
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		signingKey:    cfg.SigningKey,
		deliveryURL:   cfg.DeliveryURL,
		expiresIn:     cfg.ExpiresIn,
		webhookSecret: cfg.WebhookSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Upload describes a direct-upload slot for a freshly created video entry.
type Upload struct {
	VideoID   string `json:"videoId"`
	UploadURL string `json:"uploadUrl"`
	LibraryID string `json:"libraryId"`
	ExpiresAt int64  `json:"expiresAt"`
}

// WebhookPayload is the encoding status callback body.
type WebhookPayload struct {
	VideoID string `json:"VideoGuid"`
	Status  int    `json:"Status"`
}

// Finished reports whether the payload signals a playable video.
func (p WebhookPayload) Finished() bool {
	return p.Status == StatusFinished || p.Status == StatusResolutionFinished
}

// CreateUpload creates a video entry on the provider and returns the slot the
// client uploads the file to.
func (c *Client) CreateUpload(ctx context.Context, title string) (*Upload, error) {
	videoID, err := c.createVideo(ctx, title)
	if err != nil {
		return nil, err
	}

	expiresIn := c.expiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	return &Upload{
		VideoID:   videoID,
		UploadURL: fmt.Sprintf("%s/library/%s/videos/%s", c.baseURL, c.libraryID, videoID),
		LibraryID: c.libraryID,
		ExpiresAt: time.Now().Unix() + int64(expiresIn),
	}, nil
}

// SignedPlaybackURL returns a tokenized HLS playlist URL for the video. The
// token is the URL-safe SHA256 of signingKey + path + expiry, the scheme the
// delivery CDN validates.
func (c *Client) SignedPlaybackURL(videoID string) (string, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", fmt.Errorf("videoID is required")
	}
	if strings.TrimSpace(c.signingKey) == "" || strings.TrimSpace(c.deliveryURL) == "" {
		return "", fmt.Errorf("stream signing configuration is missing")
	}

	delivery := strings.TrimSpace(c.deliveryURL)
	if !strings.HasPrefix(delivery, "http://") && !strings.HasPrefix(delivery, "https://") {
		delivery = "https://" + delivery
	}
	delivery = strings.TrimRight(delivery, "/")

	expiresIn := c.expiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	expiration := time.Now().Unix() + int64(expiresIn)

	urlPath := "/" + strings.Trim(videoID, "/") + "/playlist.m3u8"

	hash := sha256.Sum256([]byte(fmt.Sprintf("%s%s%d", c.signingKey, urlPath, expiration)))
	token := base64.StdEncoding.EncodeToString(hash[:])
	token = strings.NewReplacer("+", "-", "/", "_", "=", "").Replace(token)

	return fmt.Sprintf("%s%s?token=%s&expires=%d", delivery, urlPath, token, expiration), nil
}

// VerifyWebhook checks the callback signature, an HMAC-SHA256 of the video
// GUID keyed with the shared webhook secret.
func (c *Client) VerifyWebhook(signature string, payload WebhookPayload) bool {
	if strings.TrimSpace(c.webhookSecret) == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(payload.VideoID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}

func (c *Client) createVideo(ctx context.Context, title string) (string, error) {
	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/library/%s/videos", c.baseURL, c.libraryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("AccessKey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Academy-Server-Go/1.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("stream API error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		GUID string `json:"guid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return result.GUID, nil
}
