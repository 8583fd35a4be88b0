package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ecosort/ecosort/internal/capture"
	"github.com/ecosort/ecosort/internal/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *capture.EncodedImage {
	return &capture.EncodedImage{Data: []byte("jpeg bytes"), MIMEType: "image/jpeg"}
}

func TestClassify_Success(t *testing.T) {
	var gotBody struct {
		Image string `json:"image"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/classify", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"materialType":"Plastic","description":"bottle","recyclable":true,"binColor":"Blue","tip":"rinse it","examples":["bottle"]}}`))
	}))
	defer ts.Close()

	c := New(Opts{BaseURL: ts.URL})
	result, err := c.Classify(context.Background(), testImage())
	require.NoError(t, err)

	assert.Equal(t, classify.MaterialPlastic, result.MaterialType)
	assert.Equal(t, "bottle", result.Description)
	assert.True(t, result.Recyclable)
	assert.Equal(t, classify.BinBlue, result.BinColor)
	assert.Equal(t, "rinse it", result.Tip)
	assert.Equal(t, []string{"bottle"}, result.Examples)

	// The image travels as a data URI wrapping standard base64.
	require.True(t, strings.HasPrefix(gotBody.Image, "data:image/jpeg;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(gotBody.Image, "data:image/jpeg;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), raw)
}

func TestClassify_NilImageMakesNoRequest(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	c := New(Opts{BaseURL: ts.URL})

	_, err := c.Classify(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoImageProvided)

	_, err = c.Classify(context.Background(), &capture.EncodedImage{})
	assert.ErrorIs(t, err, ErrNoImageProvided)

	assert.False(t, called)
}

func TestClassify_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to classify image","details":"model exploded","type":"model_error"}`))
	}))
	defer ts.Close()

	c := New(Opts{BaseURL: ts.URL})
	_, err := c.Classify(context.Background(), testImage())

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.StatusCode)
	assert.Contains(t, serverErr.Message, "Failed to classify image")
	assert.Contains(t, serverErr.Message, "model exploded")
}

func TestClassify_ClientErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"No image data provided"}`))
	}))
	defer ts.Close()

	c := New(Opts{BaseURL: ts.URL})
	_, err := c.Classify(context.Background(), testImage())

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadRequest, serverErr.StatusCode)
	assert.Equal(t, "No image data provided", serverErr.Message)
}

func TestClassify_NetworkUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listening anymore

	c := New(Opts{BaseURL: ts.URL, Timeout: 2 * time.Second})
	_, err := c.Classify(context.Background(), testImage())

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestClassify_TimeoutIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	c := New(Opts{BaseURL: ts.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Classify(context.Background(), testImage())

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestClassify_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"null result", `{"result":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := New(Opts{BaseURL: ts.URL})
			_, err := c.Classify(context.Background(), testImage())

			var malformed *MalformedResponseError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestClassify_UndecodableSuccessBodyIsMalformed(t *testing.T) {
	// A 200 whose body is not JSON means the service answered garbage,
	// not that it was unreachable.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`<html>definitely not json</html>`))
	}))
	defer ts.Close()

	c := New(Opts{BaseURL: ts.URL})
	_, err := c.Classify(context.Background(), testImage())

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)

	var netErr *NetworkError
	assert.False(t, errors.As(err, &netErr))
}

func TestClassify_RevalidatesClosedSets(t *testing.T) {
	// A buggy or stale server might leak out-of-set values; the client
	// coerces them before handing the result to presentation.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"materialType":"Slime","description":"?","recyclable":false,"binColor":"Octarine","tip":"","examples":[]}}`))
	}))
	defer ts.Close()

	c := New(Opts{BaseURL: ts.URL})
	result, err := c.Classify(context.Background(), testImage())
	require.NoError(t, err)

	assert.Equal(t, classify.MaterialUnknown, result.MaterialType)
	assert.Equal(t, classify.BinBlue, result.BinColor)
}

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","geminiConfigured":true}`))
	}))
	defer ts.Close()

	c := New(Opts{BaseURL: ts.URL})
	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.True(t, status.GeminiConfigured)
}
