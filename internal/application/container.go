package application

import (
	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/linskybing/regscan/internal/registry"
	"github.com/linskybing/regscan/internal/repository"
)

type Services struct {
	Scanner   *Scanner
	Scan      *ScanService
	Inventory *InventoryService
	Cleanup   *CleanupService
}

func New(repos *repository.Repos, client registry.Client, bus *progress.Bus, grouper *image.TagGrouper, topN int) *Services {
	scanner := NewScanner(client, repos, bus)
	return &Services{
		Scanner:   scanner,
		Scan:      NewScanService(repos, scanner),
		Inventory: NewInventoryService(repos, grouper, topN),
		Cleanup:   NewCleanupService(repos, client),
	}
}
