package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/innovation-hub-api/pkg/config"
)

// lookupChunkSize caps how many identities one directory request resolves.
const lookupChunkSize = 10

// Profile is the directory's view of an identity.
type Profile struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	Email          string `json:"email,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	AccountEnabled bool   `json:"account_enabled"`
}

// CreateUserInput provisions a new directory identity.
type CreateUserInput struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
}

// UpdateUserInput adjusts an existing directory identity.
type UpdateUserInput struct {
	DisplayName    string `json:"display_name,omitempty"`
	AccountEnabled *bool  `json:"account_enabled,omitempty"`
}

// Client talks to the external identity directory over HTTP. Profile reads
// are cached in redis to keep request fan-outs cheap.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewClient builds a directory client from configuration.
func NewClient(cfg config.DirectoryConfig, cache *redis.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.RequestTimeout},
		cache:    cache,
		cacheTTL: cfg.ProfileCacheTTL,
		logger:   logger,
	}
}

// GetProfile resolves one identity.
func (c *Client) GetProfile(ctx context.Context, externalID string) (*Profile, error) {
	if cached := c.fromCache(ctx, externalID); cached != nil {
		return cached, nil
	}
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(externalID), nil, &profile); err != nil {
		return nil, err
	}
	c.toCache(ctx, &profile)
	return &profile, nil
}

// ListProfiles resolves a set of identities, deduplicated and chunked.
// The result is keyed by external id; missing identities are absent.
func (c *Client) ListProfiles(ctx context.Context, externalIDs []string) (map[string]Profile, error) {
	result := make(map[string]Profile, len(externalIDs))
	var misses []string
	seen := make(map[string]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if cached := c.fromCache(ctx, id); cached != nil {
			result[id] = *cached
			continue
		}
		misses = append(misses, id)
	}

	for start := 0; start < len(misses); start += lookupChunkSize {
		end := start + lookupChunkSize
		if end > len(misses) {
			end = len(misses)
		}
		chunk := misses[start:end]
		var profiles []Profile
		path := "/users?ids=" + url.QueryEscape(strings.Join(chunk, ","))
		if err := c.do(ctx, http.MethodGet, path, nil, &profiles); err != nil {
			return nil, err
		}
		for i := range profiles {
			result[profiles[i].ID] = profiles[i]
			c.toCache(ctx, &profiles[i])
		}
	}
	return result, nil
}

// GetByEmail resolves an identity by email address. A nil profile with nil
// error means the directory knows no such user.
func (c *Client) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	var profiles []Profile
	path := "/users?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	c.toCache(ctx, &profiles[0])
	return &profiles[0], nil
}

// CreateUser provisions a new directory identity and returns it.
func (c *Client) CreateUser(ctx context.Context, input CreateUserInput) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPost, "/users", input, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateUser adjusts an existing directory identity and invalidates the cache.
func (c *Client) UpdateUser(ctx context.Context, externalID string, input UpdateUserInput) error {
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(externalID), input, nil); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Del(ctx, c.cacheKey(externalID)).Err(); err != nil {
			c.logger.Warn("directory cache invalidation failed", zap.String("external_id", externalID), zap.Error(err))
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode directory request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("directory %s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode directory response: %w", err)
	}
	return nil
}

func (c *Client) cacheKey(externalID string) string {
	return "directory:profile:" + externalID
}

func (c *Client) fromCache(ctx context.Context, externalID string) *Profile {
	if c.cache == nil {
		return nil
	}
	raw, err := c.cache.Get(ctx, c.cacheKey(externalID)).Bytes()
	if err != nil {
		return nil
	}
	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil
	}
	return &profile
}

func (c *Client) toCache(ctx context.Context, profile *Profile) {
	if c.cache == nil || profile.ID == "" {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, c.cacheKey(profile.ID), raw, c.cacheTTL).Err(); err != nil {
		c.logger.Warn("directory cache write failed", zap.String("external_id", profile.ID), zap.Error(err))
	}
}
