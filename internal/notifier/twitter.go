package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/ski-report/internal/caption"
)

var mediaUploadURL = "https://upload.twitter.com/1.1/media/upload.json"

const twitterTimeout = 30 * time.Second

// TwitterCredentials holds the OAuth 1.0a user-context keys
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Complete reports whether every key is set.
func (c TwitterCredentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// TwitterNotifier posts the bulletin to Twitter with the image attached
type TwitterNotifier struct {
	httpClient *http.Client
	client     *twitter.Client
	hashtags   string
}

// NewTwitterNotifier creates a Twitter channel from OAuth credentials
func NewTwitterNotifier(creds TwitterCredentials, hashtags string) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, fmt.Errorf("%w: missing required Twitter credentials", ErrNotConfigured)
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	httpClient.Timeout = twitterTimeout

	return newTwitterNotifier(httpClient, hashtags), nil
}

func newTwitterNotifier(httpClient *http.Client, hashtags string) *TwitterNotifier {
	return &TwitterNotifier{
		httpClient: httpClient,
		client:     twitter.NewClient(httpClient),
		hashtags:   hashtags,
	}
}

// Name implements Channel.
func (n *TwitterNotifier) Name() string { return ChannelTwitter }

// Variant implements Channel.
func (n *TwitterNotifier) Variant() caption.Variant {
	return caption.Variant{Trailer: n.hashtags, MaxLength: caption.TwitterMaxLength}
}

// Send uploads the image and posts a status referencing it
func (n *TwitterNotifier) Send(ctx context.Context, image []byte, text string) error {
	mediaID, err := n.uploadMedia(ctx, image)
	if err != nil {
		return fmt.Errorf("uploading media: %w", err)
	}

	_, _, err = n.client.Statuses.Update(text, &twitter.StatusUpdateParams{
		MediaIds: []int64{mediaID},
	})
	if err != nil {
		return fmt.Errorf("failed to post tweet: %w", err)
	}
	return nil
}

// uploadMedia performs a simple (non-chunked) media upload; the grooming map
// PNG stays well under the 5MB image limit.
func (n *TwitterNotifier) uploadMedia(ctx context.Context, image []byte) (int64, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("media", "grooming-report.png")
	if err != nil {
		return 0, fmt.Errorf("creating media part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return 0, fmt.Errorf("writing media: %w", err)
	}
	if err := form.Close(); err != nil {
		return 0, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mediaUploadURL, &body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("media upload error (status %d): %s", resp.StatusCode, string(data))
	}

	var result struct {
		MediaID int64 `json:"media_id"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("parsing response: %w", err)
	}
	if result.MediaID == 0 {
		return 0, fmt.Errorf("media upload returned no media_id")
	}
	return result.MediaID, nil
}
