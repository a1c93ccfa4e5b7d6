package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRecorder(t *testing.T, status int, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	rr.Header().Set("Content-Type", "application/json")
	rr.WriteHeader(status)
	_, err := rr.WriteString(body)
	require.NoError(t, err)
	return rr
}

func TestReadBody_RepeatedReads(t *testing.T) {
	rr := jsonRecorder(t, http.StatusOK, `{"id":"abc","status":"pending"}`)

	first := ReadBody(t, rr)
	second := ReadBody(t, rr)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestAssertJSONContains_ThenUnmarshal(t *testing.T) {
	rr := jsonRecorder(t, http.StatusCreated, `{"id":"abc","status":"pending"}`)

	AssertJSONContains(t, rr, "id", "abc")

	type created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	resp := UnmarshalResponse[created](t, rr)
	assert.Equal(t, "abc", resp.ID)
	assert.Equal(t, "pending", resp.Status)
}
