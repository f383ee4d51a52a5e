package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hawkset.claimhawk.org/common"
	"hawkset.claimhawk.org/db"
	"hawkset.claimhawk.org/export"
	"hawkset.claimhawk.org/queue"
	"hawkset.claimhawk.org/storage"
)

// ExportDataset serves a dataset in the training annotation format. The
// default path streams the JSON document in the response; ?upload=s3
// instead queues an asynchronous export job and answers 202 with the
// artifact key the consumer will upload to.
func (h *Handlers) ExportDataset(c echo.Context) error {
	name := c.Param("name")

	if _, err := h.Store.GetDataset(name); err != nil {
		if db.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Dataset not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve dataset"})
	}

	if c.QueryParam("upload") == "s3" {
		return h.queueExport(c, name)
	}

	samples, err := h.Store.GetSamples(name, 0)
	if err != nil {
		common.Logger.Error("Failed to load samples for export: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load samples"})
	}

	annotations, err := export.BuildAnnotations(c.Request().Context(), name, samples)
	if err != nil {
		common.Logger.Error("Failed to build annotations: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to build annotations"})
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteJSON(c.Response(), annotations)
}

func (h *Handlers) queueExport(c echo.Context, name string) error {
	if h.Publisher == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Asynchronous export is not configured"})
	}

	job := queue.ExportJob{
		Dataset:     name,
		ArtifactKey: storage.ArtifactKey(name, time.Now()),
		RequestedBy: h.requestUser(c),
		RequestedAt: time.Now().UTC(),
	}

	if err := h.Publisher.PublishExportJob(job); err != nil {
		common.Logger.Error("Failed to queue export job: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to queue export"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"status":       "queued",
		"artifact_key": job.ArtifactKey,
	})
}
