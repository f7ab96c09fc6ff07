package report

import (
	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/domain/repo"
	"github.com/linskybing/regscan/internal/domain/scan"
)

// StorageCostPerGB is the monthly storage price per GiB used for savings estimates.
const StorageCostPerGB = 0.10

const bytesPerGB = 1 << 30

// Stats summarises the local snapshot.
type Stats struct {
	Repositories    int64                       `json:"totalRepositories"`
	Images          int64                       `json:"totalImages"`
	TotalSize       int64                       `json:"totalSize"`
	TopBySize       []repo.RepositorySize       `json:"topBySize"`
	TopByImageCount []repo.RepositoryImageCount `json:"topByImageCount"`
	NeverPulled     []image.NeverPulledSummary  `json:"neverPulled"`
	NeverPulledSize int64                       `json:"neverPulledSize"`
	MonthlySavings  float64                     `json:"estimatedMonthlySavings"`
	ErrorsRecorded  int64                       `json:"errorsRecorded"`
	LastScan        *scan.Scan                  `json:"lastScan"`
}

// RepositoryDetail is a repository with every stored image.
type RepositoryDetail struct {
	repo.Repository
	Images []image.Image `json:"images"`
}

// MonthlyCost prices size bytes at StorageCostPerGB.
func MonthlyCost(size int64) float64 {
	return float64(size) / bytesPerGB * StorageCostPerGB
}
