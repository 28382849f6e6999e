package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	Init()
	PromptOutcomes.WithLabelValues("fulfilled").Inc()
	MenuActions.WithLabelValues("toggle generate", "ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "filestore_prompt_outcomes_total"))
	assert.True(t, strings.Contains(body, `action="toggle generate"`))
}
