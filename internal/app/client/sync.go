package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/exp/slog"

	"helpdesk/internal/app/client/connectivity"
	"helpdesk/internal/app/client/notify"
	"helpdesk/internal/app/client/remote"
	"helpdesk/internal/app/client/store"
	"helpdesk/internal/domain/queue"
)

// SyncService drains the offline queue into the remote store. At most one
// drain runs at a time. Drains start when connectivity comes back or when
// asked for explicitly.
type SyncService struct {
	store       *store.Store
	remote      remote.Store
	monitor     connectivity.Monitor
	notifier    notify.Notifier
	log         *slog.Logger
	now         func() time.Time
	maxAttempts int

	inFlight atomic.Bool
	online   atomic.Bool
	active   atomic.Bool

	mu          sync.Mutex
	unsubscribe func()
	tasks       conc.WaitGroup

	// ctxMu is separate from mu because monitors may deliver the first
	// event from inside Subscribe.
	ctxMu   sync.RWMutex
	baseCtx context.Context
}

type SyncOptions struct {
	// MaxAttempts abandons an item after that many failed writes. Zero
	// keeps retrying forever.
	MaxAttempts int
	Now         func() time.Time
}

// SyncResult summarises one drain.
type SyncResult struct {
	// Ran is false when the drain was skipped: nothing to do, or another
	// drain was in flight.
	Ran       bool
	Synced    int
	Failed    int
	Abandoned int
}

// SyncStatus is a point-in-time view of the queue.
type SyncStatus struct {
	IsSyncing      bool `json:"isSyncing"`
	OfflineCount   int  `json:"offlineCount"`
	FailedCount    int  `json:"failedCount"`
	AbandonedCount int  `json:"abandonedCount"`
}

func NewSyncService(
	st *store.Store,
	rs remote.Store,
	monitor connectivity.Monitor,
	notifier notify.Notifier,
	log *slog.Logger,
	opts SyncOptions,
) *SyncService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SyncService{
		store:       st,
		remote:      rs,
		monitor:     monitor,
		notifier:    notifier,
		log:         log.With("component", "sync"),
		now:         now,
		maxAttempts: opts.MaxAttempts,
		baseCtx:     context.Background(),
	}
}

// Start subscribes to connectivity changes. Calling it again before Stop
// does nothing.
func (s *SyncService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		return nil
	}

	s.ctxMu.Lock()
	s.baseCtx = context.WithoutCancel(ctx)
	s.ctxMu.Unlock()
	s.active.Store(true)

	unsubscribe, err := s.monitor.Subscribe(s.onConnectivity)
	if err != nil {
		s.active.Store(false)
		return err
	}
	s.unsubscribe = unsubscribe

	s.log.Info("sync service started")
	return nil
}

// Stop unsubscribes from connectivity changes. Drains already running are
// not interrupted; use Wait to wait for them.
func (s *SyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe == nil {
		return
	}
	s.active.Store(false)
	s.unsubscribe()
	s.unsubscribe = nil

	s.log.Info("sync service stopped")
}

// Wait blocks until every drain started by a connectivity change finished.
func (s *SyncService) Wait() {
	s.tasks.Wait()
}

func (s *SyncService) IsOnline() bool {
	return s.online.Load()
}

func (s *SyncService) onConnectivity(isConnected bool) {
	s.online.Store(isConnected)
	if !s.active.Load() {
		return
	}

	s.log.Debug("connectivity changed", "online", isConnected)
	if !isConnected || s.inFlight.Load() {
		return
	}

	s.ctxMu.RLock()
	ctx := s.baseCtx
	s.ctxMu.RUnlock()

	s.log.Info("network connected, starting offline ticket sync")
	s.tasks.Go(func() {
		s.SyncOfflineTickets(ctx)
	})
}

// SyncOfflineTickets drains every pending and failed item once. The drain
// runs to the end of its snapshot even if ctx is cancelled.
func (s *SyncService) SyncOfflineTickets(ctx context.Context) SyncResult {
	return s.drain(ctx, func(it queue.Item) bool {
		return !it.SyncStatus.IsTerminal()
	})
}

// RetryFailedTickets drains the failed items only.
func (s *SyncService) RetryFailedTickets(ctx context.Context) SyncResult {
	if s.store.Counts().Failed == 0 {
		s.notifier.Notify(notify.NoFailedToRetry())
		return SyncResult{}
	}
	return s.drain(ctx, func(it queue.Item) bool {
		return it.SyncStatus == queue.StatusFailed
	})
}

func (s *SyncService) GetSyncStatus() SyncStatus {
	c := s.store.Counts()
	return SyncStatus{
		IsSyncing:      s.store.SyncInProgress(),
		OfflineCount:   c.Offline,
		FailedCount:    c.Failed,
		AbandonedCount: c.Abandoned,
	}
}

func (s *SyncService) drain(ctx context.Context, include func(queue.Item) bool) SyncResult {
	ctx = context.WithoutCancel(ctx)

	if s.store.Counts().Offline == 0 {
		s.log.Debug("no offline tickets to sync")
		return SyncResult{}
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Debug("sync already in progress")
		return SyncResult{}
	}

	var batch []queue.Item
	for _, it := range s.store.Snapshot() {
		if include(it) {
			batch = append(batch, it)
		}
	}
	if len(batch) == 0 {
		s.inFlight.Store(false)
		s.log.Debug("nothing eligible to sync")
		return SyncResult{}
	}

	res := s.process(ctx, batch)

	s.log.Info("sync complete", "synced", res.Synced, "failed", res.Failed, "abandoned", res.Abandoned)

	if n, ok := notify.SyncSummary(res.Synced, res.Failed, res.Abandoned); ok {
		s.notifier.Notify(n)
	}
	return res
}

// process writes batch sequentially. Both in-flight flags are cleared on
// return whatever happens.
func (s *SyncService) process(ctx context.Context, batch []queue.Item) SyncResult {
	defer s.inFlight.Store(false)

	s.store.SetSyncInProgress(true)
	defer s.store.SetSyncInProgress(false)

	s.log.Info("starting sync", "items", len(batch))
	res := SyncResult{Ran: true}

	for _, it := range batch {
		if !s.store.SetItemStatus(it.ID, queue.StatusPending) {
			// Removed or abandoned since the snapshot.
			continue
		}

		if err := writeItem(ctx, s.remote, it, s.now()); err != nil {
			status, _ := s.store.RecordFailure(it.ID, err.Error(), s.maxAttempts)
			res.Failed++
			if status == queue.StatusAbandoned {
				res.Abandoned++
			}
			s.log.Warn("failed to sync item",
				"id", it.ID, "kind", it.Kind, "status", status, "error", err)
			continue
		}

		s.store.PromoteToSynced(it.ID, s.now())
		res.Synced++
		s.log.Debug("item synced", "id", it.ID, "kind", it.Kind)
	}
	return res
}
