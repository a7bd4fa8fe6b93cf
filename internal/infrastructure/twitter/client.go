// Package twitter is the X API v2 adapter: OAuth 2.0 with PKCE for linking,
// token refresh, profile lookup, media upload and post creation.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
)

const (
	DefaultAPIBaseURL = "https://api.x.com/2"
	DefaultAuthURL    = "https://x.com/i/oauth2/authorize"
	DefaultTokenURL   = "https://api.x.com/2/oauth2/token"

	requestTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

// Scopes requested when linking; offline.access yields a refresh token.
var Scopes = []string{"tweet.read", "tweet.write", "users.read", "offline.access", "media.write"}

type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	APIBaseURL   string
	AuthURL      string
	TokenURL     string
	HTTPClient   *http.Client
}

// Client implements ports.SocialPlatform.
type Client struct {
	oauth   *oauth2.Config
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

var _ ports.SocialPlatform = (*Client)(nil)

// AuthCodeURL builds the consent URL carrying state and the S256 challenge.
func (c *Client) AuthCodeURL(state, verifier string) string {
	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

func (c *Client) Exchange(ctx context.Context, code, verifier string) (*ports.TokenGrant, error) {
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, tokenError(err)
	}
	return toGrant(tok), nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*ports.TokenGrant, error) {
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, tokenError(err)
	}
	return toGrant(tok), nil
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

func toGrant(tok *oauth2.Token) *ports.TokenGrant {
	grant := &ports.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	switch {
	case tok.ExpiresIn > 0:
		grant.ExpiresIn = time.Duration(tok.ExpiresIn) * time.Second
	case !tok.Expiry.IsZero():
		grant.ExpiresIn = time.Until(tok.Expiry).Round(time.Second)
	}
	return grant
}

type userResponse struct {
	Data struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Username        string `json:"username"`
		ProfileImageURL string `json:"profile_image_url"`
		Verified        bool   `json:"verified"`
	} `json:"data"`
}

func (c *Client) Me(ctx context.Context, accessToken string) (*domain.TwitterIdentity, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodGet, "/users/me?user.fields=profile_image_url,verified", accessToken, nil, "", &out); err != nil {
		return nil, err
	}
	return &domain.TwitterIdentity{
		UserID:          out.Data.ID,
		Username:        out.Data.Username,
		Name:            out.Data.Name,
		ProfileImageURL: out.Data.ProfileImageURL,
		Verified:        out.Data.Verified,
	}, nil
}

type createPostRequest struct {
	Text  string     `json:"text"`
	Media *postMedia `json:"media,omitempty"`
}

type postMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type idResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (c *Client) CreatePost(ctx context.Context, accessToken, text string, mediaIDs []string) (string, error) {
	req := createPostRequest{Text: text}
	if len(mediaIDs) > 0 {
		req.Media = &postMedia{MediaIDs: mediaIDs}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	var out idResponse
	if err := c.do(ctx, http.MethodPost, "/tweets", accessToken, bytes.NewReader(body), "application/json", &out); err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("%w: empty post id", domain.ErrUpstreamRejected)
	}
	c.log.Debug().Str("external_post_id", out.Data.ID).Msg("post created")
	return out.Data.ID, nil
}

// UploadMedia sends a single image as multipart form data.
func (c *Client) UploadMedia(ctx context.Context, accessToken string, data []byte, mimeType string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("media_category", "tweet_image"); err != nil {
		return "", err
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="media"; filename="upload"`)
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out idResponse
	if err := c.do(ctx, http.MethodPost, "/media/upload", accessToken, &buf, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("%w: empty media id", domain.ErrUpstreamRejected)
	}
	return out.Data.ID, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamRejected, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamRejected, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, raw)
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Str("detail", apiErr.Detail).Msg("twitter api refused request")
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamRejected, err)
	}
	return nil
}
