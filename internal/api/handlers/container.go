package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/linskybing/regscan/internal/application"
	"github.com/linskybing/regscan/internal/progress"
)

type Handlers struct {
	Repository *RepositoryHandler
	Scan       *ScanHandler
	Hub        *ScanHub
	Router     *gin.Engine
}

func New(svc *application.Services, bus *progress.Bus, defaultProfile string, router *gin.Engine) *Handlers {
	h := &Handlers{
		Repository: NewRepositoryHandler(svc.Inventory),
		Scan:       NewScanHandler(svc.Scan, defaultProfile),
		Hub:        NewScanHub(bus),
		Router:     router,
	}
	return h
}
