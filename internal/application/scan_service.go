package application

import (
	"context"
	"sync"

	"github.com/linskybing/regscan/internal/domain/scan"
	"github.com/linskybing/regscan/internal/repository"
	"github.com/linskybing/regscan/pkg/utils"
	"k8s.io/klog/v2"
)

// ScanService runs scans in the background for the API, one at a time, and
// keeps a Scan record of each.
type ScanService struct {
	Repos   *repository.Repos
	scanner *Scanner

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

func NewScanService(repos *repository.Repos, scanner *Scanner) *ScanService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ScanService{
		Repos:   repos,
		scanner: scanner,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start records a pending scan and runs it in the background. It returns
// ErrScanInProgress while another scan is running.
func (s *ScanService) Start(ctx context.Context, req ScanRequest) (*scan.Scan, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	s.running = true
	s.mu.Unlock()

	rec := &scan.Scan{
		Profile:   req.Profile,
		Region:    req.Region,
		StartedAt: utils.NowISO(),
		Status:    scan.StatusPending,
	}
	if err := s.Repos.Scan.Create(ctx, rec); err != nil {
		s.setRunning(false)
		return nil, err
	}

	tracked := *rec
	s.wg.Add(1)
	go s.run(&tracked, req)
	return rec, nil
}

func (s *ScanService) run(rec *scan.Scan, req ScanRequest) {
	defer s.wg.Done()
	defer s.setRunning(false)

	rec.Status = scan.StatusInProgress
	if err := s.Repos.Scan.Update(s.ctx, rec); err != nil {
		klog.Errorf("Failed to mark scan %d in progress: %v", rec.ID, err)
	}

	_, err := s.scanner.Run(s.ctx, req)

	completed := utils.NowISO()
	rec.CompletedAt = &completed
	if err != nil {
		msg := err.Error()
		rec.Status = scan.StatusError
		rec.ErrorMessage = &msg
	} else {
		rec.Status = scan.StatusSuccess
	}
	// The service context may already be cancelled; the final status still has to land.
	if err := s.Repos.Scan.Update(context.Background(), rec); err != nil {
		klog.Errorf("Failed to record result of scan %d: %v", rec.ID, err)
	}
}

func (s *ScanService) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

func (s *ScanService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ScanService) List(ctx context.Context, limit int) ([]scan.Scan, error) {
	return s.Repos.Scan.List(ctx, limit)
}

func (s *ScanService) Get(ctx context.Context, id uint) (*scan.Scan, error) {
	return s.Repos.Scan.FindByID(ctx, id)
}

// Wait blocks until the background scan, if any, has finished.
func (s *ScanService) Wait() {
	s.wg.Wait()
}

// Shutdown cancels a running scan and waits for it to record its result.
func (s *ScanService) Shutdown() {
	s.cancel()
	s.wg.Wait()
}
