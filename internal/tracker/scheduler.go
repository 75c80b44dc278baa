package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"price-tracker/internal/model"

	"github.com/google/uuid"
)

// SourceProvider returns the sheet URLs to use for the next run.
type SourceProvider interface {
	GetSheetSources(ctx context.Context) (model.SheetSources, error)
}

// StatusStore persists the outcome of each run.
type StatusStore interface {
	GetSyncStatus(ctx context.Context) *model.SyncStatus
	UpdateSyncStatus(ctx context.Context, status *model.SyncStatus) error
}

// NoticeWriter keeps the transient message shown after a manual sync.
type NoticeWriter interface {
	SetNotice(ctx context.Context, n model.Notice) error
}

// FailureNotifier is told when a scheduled sync fails.
type FailureNotifier interface {
	NotifySyncFailure(runID string, err error) error
}

// Scheduler runs the sync daily and on demand
type Scheduler struct {
	syncer     *Syncer
	sources    SourceProvider
	status     StatusStore
	notices    NoticeWriter
	notifier   FailureNotifier
	interval   time.Duration
	runOnStart bool

	mu        sync.Mutex
	stopCh    chan struct{}
	doneCh    chan struct{}
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(syncer *Syncer, sources SourceProvider, status StatusStore, notices NoticeWriter, interval time.Duration) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		sources:  sources,
		status:   status,
		notices:  notices,
		interval: interval,
	}
}

// SetNotifier sets the notifier used when a scheduled run fails
func (s *Scheduler) SetNotifier(n FailureNotifier) {
	s.notifier = n
}

// SetRunOnStart makes Start run one sync before the first tick
func (s *Scheduler) SetRunOnStart(v bool) {
	s.runOnStart = v
}

// Start starts the ticker loop; it stops on Stop or when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		log.Println("[Scheduler] already running")
		return
	}
	s.isRunning = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	log.Printf("[Scheduler] started with interval: %v", s.interval)

	go func() {
		defer close(doneCh)

		if s.runOnStart {
			s.runScheduled(ctx)
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runScheduled(ctx)
			case <-stopCh:
				log.Println("[Scheduler] stopped")
				return
			case <-ctx.Done():
				log.Println("[Scheduler] stopping, context cancelled")
				s.mu.Lock()
				if s.doneCh == doneCh {
					s.isRunning = false
				}
				s.mu.Unlock()
				return
			}
		}
	}()
}

// Stop stops the scheduler and waits for an in-flight run to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	runID, _, err := s.run(ctx)
	if err != nil && s.notifier != nil {
		if nerr := s.notifier.NotifySyncFailure(runID, err); nerr != nil {
			log.Printf("[Scheduler] failed to send failure notification: %v", nerr)
		}
	}
}

// SyncNow runs a sync immediately and leaves a notice for the admin.
func (s *Scheduler) SyncNow(ctx context.Context) (*model.SyncResult, error) {
	_, result, err := s.run(ctx)

	notice := model.Notice{Type: "success"}
	if err != nil {
		notice = model.Notice{Type: "error", Message: "Data sync failed: " + err.Error()}
	} else {
		notice.Message = fmt.Sprintf("Data synced and cached successfully. Processed %d unique products and %d store entries.",
			result.Products, result.Stores)
	}
	if nerr := s.notices.SetNotice(ctx, notice); nerr != nil {
		log.Printf("[Scheduler] failed to store sync notice: %v", nerr)
	}

	return result, err
}

// run executes a single sync cycle and records its status
func (s *Scheduler) run(ctx context.Context) (string, *model.SyncResult, error) {
	runID := uuid.NewString()
	startTime := time.Now()
	log.Printf("[Scheduler] starting sync %s", runID)

	s.updateStatus(ctx, &model.SyncStatus{
		RunID:          runID,
		LastSyncTime:   startTime,
		LastSyncStatus: "running",
	})

	src, err := s.sources.GetSheetSources(ctx)
	if err != nil {
		err = fmt.Errorf("failed to read sheet settings: %w", err)
	} else {
		var result *model.SyncResult
		result, err = s.syncer.Sync(ctx, src)
		if err == nil {
			result.RunID = runID
			log.Printf("[Scheduler] sync %s completed in %v. Products: %d, Stores: %d, Catalog: %d, History rows: %d",
				runID, result.Duration, result.Products, result.Stores, result.CatalogSize, result.HistoryRecorded)

			s.updateStatus(ctx, &model.SyncStatus{
				RunID:          runID,
				LastSyncTime:   time.Now(),
				LastSyncStatus: "success",
				ProductsSynced: result.Products,
				StoresSynced:   result.Stores,
				Duration:       result.Duration.Milliseconds(),
			})
			return runID, result, nil
		}
	}

	log.Printf("[Scheduler] sync %s failed: %v", runID, err)
	s.updateStatus(ctx, &model.SyncStatus{
		RunID:          runID,
		LastSyncTime:   startTime,
		LastSyncStatus: "failed",
		LastSyncError:  err.Error(),
		Duration:       time.Since(startTime).Milliseconds(),
	})
	return runID, nil, err
}

func (s *Scheduler) updateStatus(ctx context.Context, status *model.SyncStatus) {
	if err := s.status.UpdateSyncStatus(ctx, status); err != nil {
		log.Printf("[Scheduler] failed to update sync status: %v", err)
	}
}

// Status returns the current state of the scheduler and the last run
func (s *Scheduler) Status(ctx context.Context) *SchedulerStatus {
	return &SchedulerStatus{
		IsRunning: s.IsRunning(),
		Interval:  s.interval.String(),
		LastSync:  s.status.GetSyncStatus(ctx),
	}
}

// SchedulerStatus represents the scheduler status
type SchedulerStatus struct {
	IsRunning bool              `json:"is_running"`
	Interval  string            `json:"interval"`
	LastSync  *model.SyncStatus `json:"last_sync"`
}
