package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var gotAuth string
	var gotParts []Part

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var in struct {
			Parts []Part `json:"parts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		gotParts = in.Parts
		json.NewEncoder(w).Encode(map[string]string{"text": "Focus on rotational mechanics first."})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key-123")
	text, err := c.Generate(context.Background(), []Part{
		{Text: "What should I revise today?"},
		{ImageBase64: "aGk=", MimeType: "image/png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Focus on rotational mechanics first.", text)
	assert.Equal(t, "Bearer key-123", gotAuth)
	require.Len(t, gotParts, 2)
	assert.Equal(t, "image/png", gotParts[1].MimeType)
}

func TestGenerateFailures(t *testing.T) {
	t.Run("no endpoint", func(t *testing.T) {
		c := NewHTTPClient("", "")
		_, err := c.Generate(context.Background(), []Part{{Text: "hi"}})
		assert.Error(t, err)
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, "")
		_, err := c.Generate(context.Background(), []Part{{Text: "hi"}})
		assert.Error(t, err)
	})

	t.Run("empty text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"text": ""})
		}))
		defer srv.Close()

		c := NewHTTPClient(srv.URL, "")
		_, err := c.Generate(context.Background(), []Part{{Text: "hi"}})
		assert.Error(t, err)
	})
}
