package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hawkset.claimhawk.org/actions"
)

func TestListActions(t *testing.T) {
	h, _ := newTestHandlers(t)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/actions", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.ListActions(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Actions []ActionDescriptor `json:"actions"`
		Count   int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, len(actions.Kinds), response.Count)

	// Presentation order follows the registry's declared kind order.
	assert.Equal(t, "click", response.Actions[0].Kind)
	assert.Equal(t, "finished", response.Actions[len(response.Actions)-1].Kind)

	for _, descriptor := range response.Actions {
		assert.NotEmpty(t, descriptor.Description, "kind %s", descriptor.Kind)
		assert.NotEmpty(t, descriptor.Fields, "kind %s", descriptor.Kind)
	}
}

func TestCompileAction(t *testing.T) {
	h, _ := newTestHandlers(t)
	e := echo.New()

	body := `{"kind":"click","params":{"x":"1710","y":"100"}}`
	req := jsonRequest(http.MethodPost, "/api/actions/compile", body)
	rec := httptest.NewRecorder()

	require.NoError(t, h.CompileAction(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var response CompileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "click(point='<point>1710 100</point>')", response.Action)
}

func TestCompileAction_Incomplete(t *testing.T) {
	h, _ := newTestHandlers(t)
	e := echo.New()

	body := `{"kind":"click","params":{"x":"1710"}}`
	req := jsonRequest(http.MethodPost, "/api/actions/compile", body)
	rec := httptest.NewRecorder()

	require.NoError(t, h.CompileAction(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCompileAction_UnknownKindIsPlaceholder(t *testing.T) {
	h, _ := newTestHandlers(t)
	e := echo.New()

	body := `{"kind":"wave","params":{}}`
	req := jsonRequest(http.MethodPost, "/api/actions/compile", body)
	rec := httptest.NewRecorder()

	require.NoError(t, h.CompileAction(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var response CompileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "wave(...)", response.Action)
}

func TestCompileAction_MissingKind(t *testing.T) {
	h, _ := newTestHandlers(t)
	e := echo.New()

	req := jsonRequest(http.MethodPost, "/api/actions/compile", `{"params":{}}`)
	rec := httptest.NewRecorder()

	require.NoError(t, h.CompileAction(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
