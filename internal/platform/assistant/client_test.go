package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorhouse/site/internal/services"
)

func TestClientForwardsQuestionAndContext(t *testing.T) {
	t.Parallel()

	var got services.AnswerRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"  Try the smoked oak plank.  "}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithToken("s3cret"))
	require.NoError(t, err)

	answer, err := client.Answer(context.Background(), services.AnswerRequest{
		Question: "smoked oak",
		Locale:   "en",
		Context:  []services.AssistantMatch{{SKU: "FLR-1002", Score: 12}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Try the smoked oak plank.", answer)
	assert.Equal(t, "smoked oak", got.Question)
	require.Len(t, got.Context, 1)
	assert.Equal(t, "FLR-1002", got.Context[0].SKU)
}

func TestClientReportsUpstreamStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	_, err = client.Answer(context.Background(), services.AnswerRequest{Question: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestClientTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)
	_, err = client.Answer(context.Background(), services.AnswerRequest{Question: "hi"})
	require.Error(t, err)
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	t.Parallel()

	_, err := NewClient("  ")
	assert.ErrorIs(t, err, ErrEndpointMissing)
}
