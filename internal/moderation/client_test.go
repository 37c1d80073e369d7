package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/demiurge/internal/guardrail"
)

func TestClassifyMapsLabels(t *testing.T) {
	var gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotContent = req.Content
		json.NewEncoder(w).Encode(map[string]any{
			"violations": []string{"violence", "not_a_real_label", "self_harm"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	kinds, err := c.Classify(context.Background(), "some text")

	require.NoError(t, err)
	assert.Equal(t, "some text", gotContent)
	assert.Equal(t, []guardrail.ViolationKind{
		guardrail.ViolationViolence, guardrail.ViolationSelfHarm,
	}, kinds)
}

func TestClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Classify(context.Background(), "some text")
	assert.Error(t, err)
}

func TestClassifyHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "")
	_, err := c.Classify(ctx, "some text")
	assert.Error(t, err)
}

func TestDisabledWithoutEndpoint(t *testing.T) {
	assert.Nil(t, NewClient("", "key"))

	var c *Client
	assert.False(t, c.Enabled())
}
