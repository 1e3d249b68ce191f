package jobqueue

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/evergreengarden/portal/app/models"
	"github.com/evergreengarden/portal/internal/pkg/database"
	"github.com/evergreengarden/portal/internal/pkg/env"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue         *Queue
	overdueTicker *time.Ticker
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := 3
		if v, err := strconv.Atoi(env.GetEnv("JOB_QUEUE_WORKERS", "3")); err == nil && v > 0 {
			workerCount = v
		}

		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	// Sent invoices past their due date roll to overdue once an hour.
	m.overdueTicker = time.NewTicker(time.Hour)
	m.wg.Add(1)
	go m.overdueWorker()
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks")
	close(m.stopCh)
	if m.overdueTicker != nil {
		m.overdueTicker.Stop()
	}
	m.running = false
	m.wg.Wait()
	m.queue.Stop()
}

// overdueWorker flips sent invoices to overdue when their due date passes.
func (m *Manager) overdueWorker() {
	defer m.wg.Done()

	// Run once on startup so a restart never leaves stale statuses for an hour.
	m.sweepOverdueInvoices()

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.overdueTicker.C:
			m.sweepOverdueInvoices()
		}
	}
}

func (m *Manager) sweepOverdueInvoices() {
	db := database.GetDB()
	if db == nil {
		return
	}

	result := db.Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", models.InvoiceSent, time.Now()).
		Update("status", models.InvoiceOverdue)
	if result.Error != nil {
		log.Errorf("[JobQueue Manager] Overdue sweep failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Infof("[JobQueue Manager] Marked %d invoice(s) overdue", result.RowsAffected)
	}
}
