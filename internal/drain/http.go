package drain

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ablay/godrain/internal/metrics"
)

// RegisterRoutes mounts the drain endpoints onto the router.
func RegisterRoutes(group *gin.RouterGroup, service *Service, log *zap.Logger) {
	handler := &httpHandler{service: service, log: log}
	group.POST("/drain/:service/:user", handler.drain)
	group.GET("/index/:service/:user", handler.index)
}

type httpHandler struct {
	service *Service
	log     *zap.Logger
}

func (h *httpHandler) drain(c *gin.Context) {
	service := c.Param("service")
	user := c.Param("user")

	var records []Record
	if err := c.ShouldBindJSON(&records); err != nil {
		h.log.Warn("rejecting malformed batch",
			zap.String("service", service),
			zap.String("user", user),
			zap.Error(err))
		metrics.RecordDrainRequest("malformed")
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrMalformedBatch.Error()})
		return
	}

	if err := h.service.Ingest(c.Request.Context(), service, user, records); err != nil {
		h.log.Error("ingest failed",
			zap.String("service", service),
			zap.String("user", user),
			zap.Error(err))
		metrics.RecordDrainRequest("error")
		c.Status(http.StatusInternalServerError)
		return
	}

	metrics.RecordDrainRequest("ok")
	c.Status(http.StatusOK)
}

func (h *httpHandler) index(c *gin.Context) {
	doc := h.service.Index(c.Request.Context(), c.Param("service"), c.Param("user"))
	c.JSON(http.StatusOK, doc)
}
