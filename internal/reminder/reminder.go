// Package reminder periodically announces appointments that are about to
// begin.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"appointment-scheduler/internal/metrics"
	"appointment-scheduler/internal/model"
	"appointment-scheduler/internal/report"
)

const fallbackSpec = "@every 1m"

// Source is the slice of the repository the worker reads.
type Source interface {
	AppointmentsInRange(ctx context.Context, from, to time.Time) ([]model.Appointment, error)
}

type sentKey struct {
	id    int64
	start int64
}

// Worker scans for appointments starting within Lead and logs one reminder
// per appointment and start time.
type Worker struct {
	log     *zap.Logger
	src     Source
	metrics *metrics.Metrics
	lead    time.Duration
	loc     *time.Location
	now     func() time.Time

	mu   sync.Mutex
	sent map[sentKey]time.Time

	cron   *cron.Cron
	cancel context.CancelFunc
}

type Options struct {
	Lead     time.Duration
	Location *time.Location
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

func NewWorker(log *zap.Logger, src Source, opts Options) *Worker {
	w := &Worker{
		log:     log,
		src:     src,
		metrics: opts.Metrics,
		lead:    opts.Lead,
		loc:     opts.Location,
		now:     opts.Now,
		sent:    make(map[sentKey]time.Time),
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	if w.lead <= 0 {
		w.lead = report.UpcomingLead
	}
	if w.loc == nil {
		w.loc = time.Local
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Start schedules RunOnce on spec. An unparsable spec falls back to once a
// minute.
func (w *Worker) Start(ctx context.Context, spec string) {
	var runCtx context.Context
	runCtx, w.cancel = context.WithCancel(ctx)
	job := func() {
		if _, err := w.RunOnce(runCtx); err != nil {
			w.log.Warn("reminder: scan failed", zap.Error(err))
		}
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, job); err != nil {
		w.log.Warn("reminder: bad schedule, using fallback",
			zap.String("spec", spec), zap.String("fallback", fallbackSpec), zap.Error(err))
		c = cron.New()
		_, _ = c.AddFunc(fallbackSpec, job)
	}
	c.Start()
	w.cron = c
	w.log.Info("reminder: started", zap.String("spec", spec), zap.Duration("lead", w.lead))
}

// Stop cancels a running scan and waits for it to return.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

// RunOnce emits reminders for the appointments starting in [now, now+lead]
// that have not been announced yet and returns how many it emitted.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.now()
	appts, err := w.src.AppointmentsInRange(ctx, now, now.Add(w.lead+time.Minute))
	if err != nil {
		w.observeRun("error")
		return 0, err
	}
	soon := report.Upcoming(appts, now, w.lead)

	w.mu.Lock()
	defer w.mu.Unlock()
	for k, start := range w.sent {
		if start.Before(now) {
			delete(w.sent, k)
		}
	}
	n := 0
	for _, a := range soon {
		k := sentKey{a.ID, a.Start.Unix()}
		if _, ok := w.sent[k]; ok {
			continue
		}
		w.sent[k] = a.Start
		n++
		w.log.Info("appointment starting soon",
			zap.Int64("id", a.ID),
			zap.String("title", a.Title),
			zap.Int64("user_id", a.UserID),
			zap.Int64("contact_id", a.ContactID),
			zap.String("start", a.Start.In(w.loc).Format("Jan 2 3:04 PM MST")),
			zap.Duration("in", a.Start.Sub(now).Round(time.Minute)))
	}
	if w.metrics != nil {
		w.metrics.Reminders.Add(float64(n))
	}
	w.observeRun("ok")
	return n, nil
}

func (w *Worker) observeRun(result string) {
	if w.metrics != nil {
		w.metrics.ReminderRuns.WithLabelValues(result).Inc()
	}
}
