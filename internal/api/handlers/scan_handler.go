package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/pkg/response"
	"gorm.io/gorm"
)

type ScanHandler struct {
	service        *application.ScanService
	defaultProfile string
}

func NewScanHandler(service *application.ScanService, defaultProfile string) *ScanHandler {
	return &ScanHandler{service: service, defaultProfile: defaultProfile}
}

// Start queues a scan. An empty body scans every region with the default profile.
func (h *ScanHandler) Start(c *gin.Context) {
	var req application.ScanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
			return
		}
	}
	if req.Profile == "" {
		req.Profile = h.defaultProfile
	}

	rec, err := h.service.Start(c.Request.Context(), req)
	if errors.Is(err, application.ErrScanInProgress) {
		c.JSON(http.StatusConflict, response.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, response.SuccessResponse{Data: rec})
}

func (h *ScanHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "limit must be a positive integer"})
		return
	}
	scans, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Data: scans})
}

func (h *ScanHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid id"})
		return
	}
	rec, err := h.service.Get(c.Request.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: "scan not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Data: rec})
}

// queryInt reads an optional positive integer query value; absent means 0.
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
