package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"hawkset.claimhawk.org/actions"
	"hawkset.claimhawk.org/common"
	"hawkset.claimhawk.org/media"
)

// CreateSample ingests one annotated training example as multipart form
// data: a screenshot plus the task description and either a structured
// action (kind + per-field params) or a raw custom action string.
func (h *Handlers) CreateSample(c echo.Context) error {
	name := c.Param("name")

	task := c.FormValue("task")
	if task == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "task is required"})
	}

	imageData, info, err := h.readScreenshot(c)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedFormat) {
			return c.JSON(http.StatusUnsupportedMediaType, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	kind := c.FormValue("kind")
	action := c.FormValue("action")
	var params actions.Params

	if kind != "" {
		params = collectActionParams(c, kind)
		compiled, ok := actions.Compile(kind, params)
		if !ok {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "Incomplete parameters for kind " + kind})
		}
		action = compiled
	} else if action == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "kind or action is required"})
	}

	sample := common.Sample{
		Task:         task,
		Thought:      c.FormValue("thought"),
		Action:       action,
		ActionParams: params,
		ImageData:    media.EncodeBase64(imageData),
	}

	id, err := h.Store.AddSample(name, sample)
	if err != nil {
		common.Logger.Error("Failed to store sample: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to store sample"})
	}

	h.invalidateStats(c, name)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":     id,
		"action": action,
		"width":  info.Width,
		"height": info.Height,
	})
}

func (h *Handlers) readScreenshot(c echo.Context) ([]byte, *media.ImageInfo, error) {
	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		return nil, nil, errors.New("screenshot file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, errors.New("failed to open screenshot upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, errors.New("failed to read screenshot upload")
	}

	info, err := media.ValidateScreenshot(data)
	if err != nil {
		return nil, nil, err
	}
	return data, info, nil
}

// collectActionParams gathers the declared fields for kind from form
// values. Operators may enter a coordinate pair in one combined field
// ("point", "start_point", "end_point"); those are split into components.
// Select fields fall back to their declared default when left empty.
func collectActionParams(c echo.Context, kind string) actions.Params {
	params := actions.Params{}

	def, ok := actions.Lookup(kind)
	if !ok {
		return params
	}

	for _, field := range def.Fields {
		value := c.FormValue(field.Name)
		if value == "" && field.Kind == actions.FieldSelect {
			value = field.Default
		}
		if value != "" {
			params[field.Name] = value
		}
	}

	applyCombined := func(combined, xName, yName string) {
		raw := c.FormValue(combined)
		if raw == "" || (params[xName] != "" && params[yName] != "") {
			return
		}
		x, y := actions.ParseCoordinates(raw)
		if params[xName] == "" && x != "" {
			params[xName] = x
		}
		if params[yName] == "" && y != "" {
			params[yName] = y
		}
	}

	applyCombined("point", "x", "y")
	applyCombined("start_point", "x1", "y1")
	applyCombined("end_point", "x2", "y2")

	return params
}
