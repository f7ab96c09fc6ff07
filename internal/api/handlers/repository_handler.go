package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/pkg/response"
)

type RepositoryHandler struct {
	service *application.InventoryService
}

func NewRepositoryHandler(service *application.InventoryService) *RepositoryHandler {
	return &RepositoryHandler{service: service}
}

func (h *RepositoryHandler) List(c *gin.Context) {
	repos, err := h.service.ListRepositories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Data: repos})
}

func (h *RepositoryHandler) Get(c *gin.Context) {
	detail, err := h.service.GetRepository(c.Request.Context(), c.Param("name"))
	if errors.Is(err, application.ErrRepositoryNotFound) {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Data: detail})
}

// Stats accepts an optional ?top=N.
func (h *RepositoryHandler) Stats(c *gin.Context) {
	top, ok := queryInt(c, "top")
	if !ok {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "top must be a positive integer"})
		return
	}
	st, err := h.service.Stats(c.Request.Context(), top)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Data: st})
}

func (h *RepositoryHandler) Analysis(c *gin.Context) {
	rows, err := h.service.Analyse(c.Request.Context(), c.Query("repository"))
	if errors.Is(err, application.ErrRepositoryNotFound) {
		c.JSON(http.StatusNotFound, response.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Data: rows})
}

// NeverPulled accepts ?repository=a,b to restrict the summary.
func (h *RepositoryHandler) NeverPulled(c *gin.Context) {
	var names []string
	for _, n := range strings.Split(c.Query("repository"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	rows, err := h.service.NeverPulled(c.Request.Context(), names)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Data: rows})
}
