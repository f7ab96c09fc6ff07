package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/regscan/pkg/response"
)

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, response.MessageResponse{Message: "ok"})
}
