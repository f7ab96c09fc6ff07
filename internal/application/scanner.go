package application

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/linskybing/regscan/internal/domain/image"
	"github.com/linskybing/regscan/internal/domain/repo"
	"github.com/linskybing/regscan/internal/metrics"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/linskybing/regscan/internal/registry"
	"github.com/linskybing/regscan/internal/repository"
	"k8s.io/klog/v2"
)

const (
	errKindValidation = "validation"
	errKindImages     = "images"
	errKindFatal      = "fatal"
)

type ScanRequest struct {
	Profile string `json:"profile"`
	Region  string `json:"region"`
}

// ScanSummary counts what one run did.
type ScanSummary struct {
	Regions             []string `json:"regions"`
	RepositoriesScanned int      `json:"repositoriesScanned"`
	RepositoriesSkipped int      `json:"repositoriesSkipped"`
	ImagesSaved         int      `json:"imagesSaved"`
	ErrorsRecorded      int      `json:"errorsRecorded"`
}

// Scanner walks regions, repositories and images one at a time, reconciling
// each into the store and reporting on the bus.
type Scanner struct {
	client registry.Client
	repos  *repository.Repos
	bus    *progress.Bus
}

func NewScanner(client registry.Client, repos *repository.Repos, bus *progress.Bus) *Scanner {
	return &Scanner{
		client: client,
		repos:  repos,
		bus:    bus,
	}
}

// Run performs one full scan. Per-repository failures are recorded and
// skipped; anything else aborts the scan with an error event.
func (s *Scanner) Run(ctx context.Context, req ScanRequest) (summary *ScanSummary, err error) {
	start := time.Now()
	summary = &ScanSummary{}
	defer func() {
		metrics.ScanFinished(start, err)
		if err != nil {
			metrics.ScanError(errKindFatal)
			klog.Errorf("Scan failed: %v", err)
			if emitErr := s.bus.Emit(progress.Error(err)); emitErr != nil {
				klog.Errorf("Error listener failed: %v", emitErr)
			}
		}
	}()

	if err = s.bus.Emit(progress.Start()); err != nil {
		return summary, err
	}

	regions, err := s.regions(ctx, req)
	if err != nil {
		return summary, err
	}
	summary.Regions = regions

	for _, region := range regions {
		klog.Infof("Scanning region %s", region)
		if err = s.scanRegion(ctx, req.Profile, region, summary); err != nil {
			return summary, err
		}
	}

	if err = s.bus.Emit(progress.Complete()); err != nil {
		return summary, err
	}
	klog.Infof("Scan complete: %d repositories, %d skipped, %d images, %d errors",
		summary.RepositoriesScanned, summary.RepositoriesSkipped, summary.ImagesSaved, summary.ErrorsRecorded)
	return summary, nil
}

func (s *Scanner) regions(ctx context.Context, req ScanRequest) ([]string, error) {
	if req.Region != "" {
		return []string{req.Region}, nil
	}
	regions, err := s.client.ListRegions(ctx, req.Profile, "")
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}

func (s *Scanner) scanRegion(ctx context.Context, profile, region string, summary *ScanSummary) error {
	pager, err := s.client.ListRepositories(ctx, profile, region)
	if err != nil {
		return fmt.Errorf("list repositories in %s: %w", region, err)
	}

	known, processed := 0, 0
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list repositories in %s: %w", region, err)
		}
		known += len(page)

		for _, summaryRepo := range page {
			if err := s.scanRepository(ctx, profile, summaryRepo, summary); err != nil {
				return err
			}
			processed++
			if err := s.bus.Emit(progress.Progress(summaryRepo.Name, percent(processed, known))); err != nil {
				return fmt.Errorf("progress listener: %w", err)
			}
		}
	}
	return nil
}

// scanRepository returns an error only for failures that must abort the scan.
func (s *Scanner) scanRepository(ctx context.Context, profile string, r registry.RepositorySummary, summary *ScanSummary) error {
	if verr := validate(r); verr != nil {
		summary.RepositoriesSkipped++
		return s.record(ctx, r.Name, errKindValidation, verr, summary)
	}

	if err := s.repos.Repository.Upsert(ctx, &repo.Repository{
		RepositoryName: r.Name,
		RepositoryURI:  r.URI,
		CreatedAt:      r.CreatedAt,
		LastUpdated:    r.LastUpdated,
		Region:         r.Region,
	}); err != nil {
		return fmt.Errorf("save repository %s: %w", r.Name, err)
	}
	summary.RepositoriesScanned++
	metrics.RepositoryScanned(r.Region)

	images, err := s.client.ListImages(ctx, profile, r.Region, r.Name)
	if err != nil {
		return s.record(ctx, r.Name, errKindImages, fmt.Errorf("list images: %w", err), summary)
	}

	saved := 0
	for _, img := range images {
		if err := s.repos.Image.Upsert(ctx, toImage(r.Name, img)); err != nil {
			metrics.ImagesSaved(saved)
			summary.ImagesSaved += saved
			return s.record(ctx, r.Name, errKindImages, fmt.Errorf("save image %s: %w", img.Digest, err), summary)
		}
		saved++
	}
	metrics.ImagesSaved(saved)
	summary.ImagesSaved += saved
	klog.V(2).Infof("Saved %d images for %s", saved, r.Name)
	return nil
}

// record logs a per-repository failure and appends it to the error log. Only
// a failure to append is returned.
func (s *Scanner) record(ctx context.Context, repositoryName, kind string, cause error, summary *ScanSummary) error {
	klog.Errorf("Repository %q: %v", repositoryName, cause)
	metrics.ScanError(kind)
	if _, err := s.repos.Error.Append(ctx, repositoryName, cause.Error()); err != nil {
		return fmt.Errorf("record error for %s: %w", repositoryName, err)
	}
	summary.ErrorsRecorded++
	return nil
}

func validate(r registry.RepositorySummary) *ValidationError {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "repositoryName")
	}
	if r.URI == "" {
		missing = append(missing, "repositoryUri")
	}
	if r.CreatedAt == "" {
		missing = append(missing, "createdAt")
	}
	if r.LastUpdated == "" {
		missing = append(missing, "lastUpdated")
	}
	if r.Region == "" {
		missing = append(missing, "region")
	}
	if len(missing) == 0 {
		return nil
	}
	raw, _ := json.Marshal(r)
	return &ValidationError{RepositoryName: r.Name, Missing: missing, Summary: string(raw)}
}

func toImage(repositoryName string, img registry.ImageSummary) *image.Image {
	out := &image.Image{
		RepositoryName:           repositoryName,
		RegistryID:               img.RegistryID,
		ImageDigest:              img.Digest,
		ImageTags:                image.JoinTags(img.Tags),
		ImageSizeInBytes:         img.SizeInBytes,
		ImagePushedAt:            img.PushedAt,
		ImageScanStatus:          []byte(img.ScanStatus),
		ImageScanFindingsSummary: []byte(img.ScanFindingsSummary),
		ImageManifestMediaType:   img.ManifestMediaType,
		ArtifactMediaType:        img.ArtifactMediaType,
	}
	if img.LastRecordedPullTime != "" {
		pulled := img.LastRecordedPullTime
		out.LastRecordedPullTime = &pulled
	}
	return out
}

func percent(processed, known int) int {
	if known == 0 {
		return 0
	}
	return int(math.Round(100 * float64(processed) / float64(known)))
}
