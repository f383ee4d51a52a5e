package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hawkset.claimhawk.org/actions"
)

// ActionDescriptor is one registry entry in presentation order.
type ActionDescriptor struct {
	Kind        string              `json:"kind"`
	Description string              `json:"description"`
	Fields      []actions.FieldSpec `json:"fields"`
}

// ListActions enumerates the action kinds and their input fields so form
// UIs can render the annotation widgets without hard-coding the schema.
func (h *Handlers) ListActions(c echo.Context) error {
	descriptors := make([]ActionDescriptor, 0, len(actions.Kinds))
	for _, kind := range actions.Kinds {
		def, ok := actions.Lookup(kind)
		if !ok {
			continue
		}
		descriptors = append(descriptors, ActionDescriptor{
			Kind:        kind,
			Description: def.Description,
			Fields:      def.Fields,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"actions": descriptors,
		"count":   len(descriptors),
	})
}

type CompileRequest struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params"`
}

type CompileResponse struct {
	Action string `json:"action"`
}

// CompileAction renders a parameter set into the canonical command string.
// Incomplete parameters are a client error, reported as 422 so UIs can
// re-prompt rather than surface a failure.
func (h *Handlers) CompileAction(c echo.Context) error {
	var req CompileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if req.Kind == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "kind is required"})
	}

	action, ok := actions.Compile(req.Kind, actions.Params(req.Params))
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "Incomplete parameters for kind " + req.Kind})
	}

	return c.JSON(http.StatusOK, CompileResponse{Action: action})
}
