package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/innovation-hub-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(config.DirectoryConfig{
		BaseURL:         server.URL,
		APIKey:          "test-key",
		RequestTimeout:  5 * time.Second,
		ProfileCacheTTL: time.Minute,
	}, nil, nil)
	return client, server
}

func TestGetProfile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/ext-1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Profile{ID: "ext-1", DisplayName: "Ada", Email: "ada@example.com"}) //nolint:errcheck
	})

	profile, err := client.GetProfile(context.Background(), "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.DisplayName)
}

func TestListProfilesChunksAndDedupes(t *testing.T) {
	var requests []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		requests = append(requests, r.URL.Query().Get("ids"))
		profiles := make([]Profile, 0, len(ids))
		for _, id := range ids {
			profiles = append(profiles, Profile{ID: id, DisplayName: "User " + id})
		}
		json.NewEncoder(w).Encode(profiles) //nolint:errcheck
	})

	// 12 distinct ids plus duplicates: two chunks of at most 10
	ids := make([]string, 0, 15)
	for i := 0; i < 12; i++ {
		ids = append(ids, "ext-"+string(rune('a'+i)))
	}
	ids = append(ids, "ext-a", "ext-b", "")

	profiles, err := client.ListProfiles(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, profiles, 12)
	require.Len(t, requests, 2)
	assert.Len(t, strings.Split(requests[0], ","), 10)
	assert.Len(t, strings.Split(requests[1], ","), 2)
}

func TestGetByEmailNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nobody@example.com", r.URL.Query().Get("email"))
		json.NewEncoder(w).Encode([]Profile{}) //nolint:errcheck
	})

	profile, err := client.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestDoPropagatesHTTPErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetProfile(context.Background(), "ext-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}
