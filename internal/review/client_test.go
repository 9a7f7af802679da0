package review

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Review_PostsRawText(t *testing.T) {
	var gotMethod, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"feedback": "Good code!"}`))
	}))
	defer server.Close()

	code := "def test():\n\tpass\n"
	c := NewClient(server.URL, nil)
	feedback, err := c.Review(context.Background(), code)
	require.NoError(t, err)

	assert.Equal(t, "Good code!", feedback)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "text/plain", gotContentType)
	assert.Equal(t, code, gotBody, "body must be the raw text, not JSON-encoded")
}

func TestClient_Review_IgnoresStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"feedback": "still shown"}`))
	}))
	defer server.Close()

	feedback, err := NewClient(server.URL, nil).Review(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "still shown", feedback)
}

func TestClient_Review_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil).Review(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExchangeFailed))
}

func TestClient_Review_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, nil).Review(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExchangeFailed)
}

func TestClient_Review_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL, nil).Review(ctx, "x")
	assert.ErrorIs(t, err, ErrExchangeFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	c := NewClient("", nil)
	assert.Equal(t, "http://localhost:8081/api/review", c.Endpoint())
}

func TestExtractFeedback(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "string", body: `{"feedback":"Good code!"}`, want: "Good code!"},
		{name: "whitespace kept", body: `{"feedback":"  a\n\tb  "}`, want: "  a\n\tb  "},
		{name: "extra fields ignored", body: `{"feedback":"ok","score":3}`, want: "ok"},
		{name: "missing field", body: `{"other":"x"}`, want: ""},
		{name: "null field", body: `{"feedback":null}`, want: ""},
		{name: "number", body: `{"feedback":42}`, want: "42"},
		{name: "boolean", body: `{"feedback":true}`, want: ""},
		{name: "object", body: `{"feedback":{"a":1}}`, want: `{"a":1}`},
		{name: "array document", body: `[1,2]`, want: ""},
		{name: "string document", body: `"hello"`, want: ""},
		{name: "null document", body: `null`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
		{name: "not json", body: `Error`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFeedback([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
