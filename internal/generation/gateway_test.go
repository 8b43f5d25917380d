package generation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lehigh-university-libraries/artify/internal/config"
	"github.com/lehigh-university-libraries/artify/internal/datauri"
	"github.com/lehigh-university-libraries/artify/internal/huggingface"
	"github.com/lehigh-university-libraries/artify/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	prompts []string
	img     *providers.Image
	err     error
	panics  bool
}

func (f *fakeProvider) GenerateImage(ctx context.Context, prompt string) (*providers.Image, error) {
	f.prompts = append(f.prompts, prompt)
	if f.panics {
		panic("boom")
	}
	return f.img, f.err
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var genErr *Error
	require.True(t, errors.As(err, &genErr), "expected *generation.Error, got %T", err)
	assert.Equal(t, kind, genErr.Kind)
	return genErr
}

func TestGenerateRejectsBlankPrompt(t *testing.T) {
	for _, prompt := range []string{"", " ", "\t\n  "} {
		provider := &fakeProvider{}
		payload, err := NewGateway(provider).Generate(context.Background(), prompt)

		assert.Nil(t, payload)
		genErr := requireKind(t, err, InvalidInput)
		assert.Equal(t, http.StatusBadRequest, genErr.StatusCode())
		assert.Empty(t, provider.prompts, "no outbound call for %q", prompt)
	}
}

func TestGenerateSendsExactPromptOnce(t *testing.T) {
	for _, prompt := range []string{"a red circle", "  padded prompt  ", "ünïcödé 🎨"} {
		provider := &fakeProvider{img: &providers.Image{Data: []byte{1, 2, 3}, ContentType: "image/png"}}
		payload, err := NewGateway(provider).Generate(context.Background(), prompt)

		require.NoError(t, err)
		assert.Equal(t, []string{prompt}, provider.prompts)
		assert.Equal(t, prompt, payload.Prompt)
	}
}

func TestGenerateSuccessRoundTrip(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G', 0, 255, 10, 13}
	provider := &fakeProvider{img: &providers.Image{Data: data, ContentType: "image/jpeg"}}

	payload, err := NewGateway(provider).Generate(context.Background(), "sunset")
	require.NoError(t, err)

	decoded, mediaType, err := datauri.Decode(payload.Image)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
	assert.Equal(t, "image/jpeg", mediaType)
	assert.Equal(t, "image/jpeg", payload.ContentType)
}

func TestGenerateMissingCredential(t *testing.T) {
	provider := &fakeProvider{err: providers.ErrMissingCredential}
	_, err := NewGateway(provider).Generate(context.Background(), "sunset")

	genErr := requireKind(t, err, MisconfiguredService)
	assert.Equal(t, http.StatusInternalServerError, genErr.StatusCode())
}

func TestGenerateTransportFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("dial tcp: connection refused")}
	_, err := NewGateway(provider).Generate(context.Background(), "sunset")

	requireKind(t, err, InternalFailure)
}

func TestGenerateProviderPanic(t *testing.T) {
	provider := &fakeProvider{panics: true}
	payload, err := NewGateway(provider).Generate(context.Background(), "sunset")

	assert.Nil(t, payload)
	requireKind(t, err, InternalFailure)
}

func TestGenerateClassifiesUpstreamStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantStatus  int
		wantDetails string
	}{
		{
			name:        "unauthorized with json message",
			status:      http.StatusUnauthorized,
			body:        `{"message":"Invalid token"}`,
			wantKind:    AuthenticationFailed,
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Invalid token",
		},
		{
			name:        "unauthorized with json error",
			status:      http.StatusUnauthorized,
			body:        `{"error":"Authorization header is correct, but the token seems invalid"}`,
			wantKind:    AuthenticationFailed,
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Authorization header is correct, but the token seems invalid",
		},
		{
			name:        "unauthorized with plain text",
			status:      http.StatusUnauthorized,
			body:        "nope",
			wantKind:    AuthenticationFailed,
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "nope",
		},
		{
			name:       "model loading",
			status:     http.StatusServiceUnavailable,
			body:       `{"error":"Model is currently loading","estimated_time":20}`,
			wantKind:   ServiceWarmingUp,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			body:       "too many",
			wantKind:   RateLimited,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:        "bad request",
			status:      http.StatusBadRequest,
			body:        `{"error":["width too large"]}`,
			wantKind:    UpstreamError,
			wantStatus:  http.StatusInternalServerError,
			wantDetails: "width too large",
		},
		{
			name:        "json body without message or error",
			status:      http.StatusInternalServerError,
			body:        `{"estimated_time":20}`,
			wantKind:    UpstreamError,
			wantStatus:  http.StatusInternalServerError,
			wantDetails: `{"estimated_time":20}`,
		},
		{
			name:        "server error",
			status:      http.StatusBadGateway,
			body:        "bad gateway",
			wantKind:    UpstreamError,
			wantStatus:  http.StatusInternalServerError,
			wantDetails: "bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			hf := huggingface.New(config.HuggingFace{
				APIKey:     "hf_test",
				Endpoint:   server.URL,
				Model:      "test/model",
				Parameters: providers.DefaultParameters(),
			}, server.Client())

			payload, err := NewGateway(hf).Generate(context.Background(), "a red circle")

			assert.Nil(t, payload)
			assert.Equal(t, int32(1), calls.Load())
			genErr := requireKind(t, err, tt.wantKind)
			assert.Equal(t, tt.wantStatus, genErr.StatusCode())
			if tt.wantDetails != "" {
				assert.Equal(t, tt.wantDetails, genErr.Details)
			}
		})
	}
}

func TestGenerateConcurrentCallsAreIndependent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("img"))
	}))
	defer server.Close()

	hf := huggingface.New(config.HuggingFace{
		APIKey:     "hf_test",
		Endpoint:   server.URL,
		Model:      "test/model",
		Parameters: providers.DefaultParameters(),
	}, server.Client())
	gw := NewGateway(hf)

	prompts := []string{"one", "two", "three", "four"}
	results := make(chan string, len(prompts))
	for _, p := range prompts {
		go func(p string) {
			payload, err := gw.Generate(context.Background(), p)
			if err != nil {
				results <- "error"
				return
			}
			results <- payload.Prompt
		}(p)
	}

	got := make([]string, 0, len(prompts))
	for range prompts {
		got = append(got, <-results)
	}
	assert.ElementsMatch(t, prompts, got)
}
