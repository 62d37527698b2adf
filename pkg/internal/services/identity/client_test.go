package identity_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/services/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "customer")

		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": {"customer": null}, "errors": [{"message": "The current customer isn't authorized."}]}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"customer": {
			"email": "jane@example.com",
			"firstname": "Jane",
			"lastname": "Doe",
			"middlename": null,
			"picture": "https://cdn.example.com/jane.png",
			"ranking": ["gold"]
		}}}`))
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, time.Second, 0)

	profile, err := client.Resolve(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", profile.Email)
	assert.Equal(t, "Jane", profile.Firstname)
	assert.Nil(t, profile.Middlename)
	require.NotNil(t, profile.Picture)
	assert.Equal(t, []string{"gold"}, profile.Ranking)

	_, err = client.Resolve(context.Background(), "bad-token")
	assert.Error(t, err)
}

func TestClient_ResolveUpstreamDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, time.Second, 0)
	_, err := client.Resolve(context.Background(), "token")
	assert.Error(t, err)
}

func TestClient_ResolveTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, 50*time.Millisecond, 0)
	_, err := client.Resolve(context.Background(), "token")
	assert.Error(t, err)
}
