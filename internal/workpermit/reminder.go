package workpermit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/hr-management/internal/notification"
)

// DefaultReminderDays are the days-remaining marks on which a reminder is sent.
var DefaultReminderDays = []int{30, 14, 7, 1, 0}

type Notifier interface {
	Notify(ctx context.Context, userID int64, category, title, body, link string) (*notification.Notification, error)
}

type ExpiringLister interface {
	Expiring(ctx context.Context, within time.Duration) ([]*WorkPermit, error)
}

type reminderJob struct {
	permit *WorkPermit
	done   *sync.WaitGroup
}

type reminderWorker struct {
	id   int
	pool chan chan reminderJob
	jobs chan reminderJob
}

func (w *reminderWorker) start(ctx context.Context, wg *sync.WaitGroup, process func(context.Context, *WorkPermit), logger *slog.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case w.pool <- w.jobs:
			case <-ctx.Done():
				return
			}
			select {
			case job := <-w.jobs:
				logger.Debug("reminder worker processing permit", "worker_id", w.id, "permit_id", job.permit.ID)
				process(ctx, job.permit)
				job.done.Done()
			case <-ctx.Done():
				logger.Debug("reminder worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

type ReminderConfig struct {
	Window     time.Duration
	Days       []int
	MaxWorkers int
	// Recipients receive a copy of every reminder mail, typically the HR inbox.
	Recipients []string
}

// Reminder sends notifications and mail for permits reaching a reminder mark.
type Reminder struct {
	permits   ExpiringLister
	employees EmployeeLookup
	notifier  Notifier
	mailer    notification.Mailer
	cfg       ReminderConfig
	days      map[int]bool
	logger    *slog.Logger

	pool   chan chan reminderJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewReminder(permits ExpiringLister, employees EmployeeLookup, notifier Notifier, mailer notification.Mailer, cfg ReminderConfig, logger *slog.Logger) *Reminder {
	if cfg.Window <= 0 {
		cfg.Window = DefaultExpiringWindow
	}
	if len(cfg.Days) == 0 {
		cfg.Days = DefaultReminderDays
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	days := make(map[int]bool, len(cfg.Days))
	for _, d := range cfg.Days {
		days[d] = true
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reminder{
		permits:   permits,
		employees: employees,
		notifier:  notifier,
		mailer:    mailer,
		cfg:       cfg,
		days:      days,
		logger:    logger,
		pool:      make(chan chan reminderJob, cfg.MaxWorkers),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (r *Reminder) startPool() {
	r.once.Do(func() {
		for i := 0; i < r.cfg.MaxWorkers; i++ {
			w := &reminderWorker{id: i, pool: r.pool, jobs: make(chan reminderJob)}
			w.start(r.ctx, &r.wg, r.send, r.logger)
		}
		r.logger.Info("reminder worker pool started", "max_workers", r.cfg.MaxWorkers)
	})
}

// Due reports whether a permit sits on one of the reminder marks today.
func (r *Reminder) Due(p *WorkPermit) bool {
	return p.DaysRemaining >= 0 && r.days[p.DaysRemaining]
}

// RunOnce sends reminders for every due permit and waits for them to finish.
// It returns the number of permits reminded.
func (r *Reminder) RunOnce(ctx context.Context) (int, error) {
	r.startPool()

	permits, err := r.permits.Expiring(ctx, r.cfg.Window)
	if err != nil {
		return 0, err
	}

	var batch sync.WaitGroup
	sent := 0
	for _, p := range permits {
		if !r.Due(p) {
			continue
		}
		batch.Add(1)
		select {
		case jobs := <-r.pool:
			jobs <- reminderJob{permit: p, done: &batch}
			sent++
		case <-ctx.Done():
			batch.Done()
			batch.Wait()
			return sent, ctx.Err()
		}
	}
	batch.Wait()
	r.logger.Info("work permit reminders sent", "checked", len(permits), "reminded", sent)
	return sent, nil
}

// Run calls RunOnce every interval until ctx is cancelled.
func (r *Reminder) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("work permit reminder run failed", "error", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reminder) Shutdown() {
	r.cancel()
	r.wg.Wait()
	r.logger.Info("reminder worker pool stopped")
}

func (r *Reminder) send(ctx context.Context, p *WorkPermit) {
	emp, err := r.employees.Get(ctx, p.EmployeeID)
	if err != nil {
		r.logger.Warn("reminder skipped, employee lookup failed", "permit_id", p.ID, "employee_id", p.EmployeeID, "error", err)
		return
	}

	title := fmt.Sprintf("Work permit %s expires in %d days", p.PermitNumber, p.DaysRemaining)
	if p.DaysRemaining == 0 {
		title = fmt.Sprintf("Work permit %s expires today", p.PermitNumber)
	}
	body := fmt.Sprintf("%s permit for %s (%s) expires on %s.",
		p.PermitType, emp.FullName(), emp.EmployeeNumber, p.ExpiryDate.Format("2006-01-02"))

	if emp.UserID != nil && r.notifier != nil {
		if _, err := r.notifier.Notify(ctx, *emp.UserID, notification.CategoryWorkPermit, title, body, "/work-permits/expiring"); err != nil {
			r.logger.Warn("failed to store permit reminder", "permit_id", p.ID, "error", err)
		}
	}

	if r.mailer == nil {
		return
	}
	to := append([]string{}, r.cfg.Recipients...)
	if emp.Email != "" {
		to = append(to, emp.Email)
	}
	if len(to) == 0 {
		return
	}
	if err := r.mailer.Send(ctx, to, title, body); err != nil {
		r.logger.Warn("failed to mail permit reminder", "permit_id", p.ID, "error", err)
	}
}
