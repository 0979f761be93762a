package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient(ProviderNone, "")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewClient("", "")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewClient(ProviderMock, "")
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, c)

	for _, p := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderCerebras, ProviderOpenRouter} {
		_, err := NewClient(p, "")
		assert.Error(t, err, "provider %s without key", p)

		c, err := NewClient(p, "key")
		require.NoError(t, err)
		assert.NotNil(t, c)
	}

	_, err = NewClient("palm", "key")
	assert.Error(t, err)
}

var testRequest = domain.OpinionRequest{
	Diagnosis: "Common Cold",
	Symptoms:  []string{"runny nose", "sneezing"},
	Severity:  "mild",
}

const testReply = "MATCH: NO\nCONFIDENCE: medium\nIF NO, SUGGEST: [Allergic Rhinitis]\nREASON: no fever"

func assertDisagreement(t *testing.T, op *domain.SecondaryOpinion) {
	t.Helper()
	require.NotNil(t, op)
	suggested, ok := op.Disagrees()
	assert.True(t, ok)
	assert.Equal(t, "Allergic Rhinitis", suggested)
	assert.Equal(t, domain.OpinionMedium, op.Confidence)
}

func TestChatClient_SecondOpinion(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":` + jsonString(testReply) + `}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient("test", srv.URL, "test-model", "secret")
	op, err := c.SecondOpinion(context.Background(), testRequest)
	require.NoError(t, err)
	assertDisagreement(t, op)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "runny nose, sneezing")
}

func TestChatClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewChatClient("test", srv.URL, "m", "k").SecondOpinion(context.Background(), testRequest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestAnthropicClient_SecondOpinion(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":` + jsonString(testReply) + `}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("secret")
	c.url = srv.URL
	op, err := c.SecondOpinion(context.Background(), testRequest)
	require.NoError(t, err)
	assertDisagreement(t, op)
	assert.Equal(t, opinionSystemPrompt, got.System)
}

func TestGeminiClient_SecondOpinion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + jsonString(testReply) + `}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("secret")
	c.url = srv.URL
	op, err := c.SecondOpinion(context.Background(), testRequest)
	require.NoError(t, err)
	assertDisagreement(t, op)
}

func TestMockClient(t *testing.T) {
	c := NewMockClient()

	op, err := c.SecondOpinion(context.Background(), testRequest)
	require.NoError(t, err)
	require.NotNil(t, op.Match)
	assert.True(t, *op.Match)

	c.Reply = testReply
	op, err = c.SecondOpinion(context.Background(), testRequest)
	require.NoError(t, err)
	assertDisagreement(t, op)

	c.Error = errors.New("boom")
	_, err = c.SecondOpinion(context.Background(), testRequest)
	assert.Error(t, err)
	assert.Equal(t, 3, c.CallCount())

	c.Reset()
	assert.Equal(t, 0, c.CallCount())
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
