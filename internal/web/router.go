// Package web serves the HTTP side of the scheduler: the grpc-web bridge,
// the iCalendar feed, health and metrics.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"appointment-scheduler/internal/auth"
	"appointment-scheduler/internal/calendar"
	"appointment-scheduler/internal/ics"
	authmw "appointment-scheduler/internal/middleware"
	"appointment-scheduler/internal/model"
	"appointment-scheduler/internal/report"
)

// Store is what the HTTP routes read.
type Store interface {
	AppointmentsInWindow(ctx context.Context, w calendar.Window) ([]model.Appointment, error)
	Ping(ctx context.Context) error
}

type Deps struct {
	Store   Store
	Bridge  http.Handler
	Metrics http.Handler
	Logger  *zap.Logger

	Secret   string
	Location *time.Location
	Now      func() time.Time

	CORSOrigins []string
	// PerMinute caps requests per client IP; zero disables the limit.
	PerMinute int
}

type server struct {
	Deps
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if len(d.CORSOrigins) == 0 {
		d.CORSOrigins = []string{"*"}
	}
	s := &server{d}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Grpc-Web", "X-User-Agent", authmw.RequestIDHeader},
		ExposedHeaders: []string{"Grpc-Status", "Grpc-Message", "Grpc-Status-Details-Bin", authmw.RequestIDHeader},
		MaxAge:         86400,
	}))
	if d.PerMinute > 0 {
		r.Use(httprate.LimitByIP(d.PerMinute, time.Minute))
	}

	r.Get("/healthz", s.health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	r.Get("/calendar.ics", s.calendarFeed)
	if d.Bridge != nil {
		r.Method(http.MethodPost, "/{service}/{method}", d.Bridge)
	}
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type feedQuery struct {
	mode    calendar.Mode
	index   int
	year    int
	contact int64
}

func parseFeedQuery(r *http.Request) (feedQuery, error) {
	q := r.URL.Query()
	fq := feedQuery{mode: calendar.ModeMonth}
	var err error
	if v := q.Get("mode"); v != "" {
		if fq.mode, err = calendar.ParseMode(v); err != nil {
			return fq, err
		}
	}
	ints := map[string]*int{"index": &fq.index, "year": &fq.year}
	for k, dst := range ints {
		if v := q.Get(k); v != "" {
			if *dst, err = strconv.Atoi(v); err != nil {
				return fq, errors.New("bad " + k)
			}
		}
	}
	if v := q.Get("contact"); v != "" {
		if fq.contact, err = strconv.ParseInt(v, 10, 64); err != nil || fq.contact <= 0 {
			return fq, errors.New("bad contact")
		}
	}
	return fq, nil
}

// calendarFeed exports the appointments of a view as text/calendar. The
// query takes mode, index and year like ListAppointments, plus an optional
// contact id.
func (s *server) calendarFeed(w http.ResponseWriter, r *http.Request) {
	tok := authmw.BearerToken(r.Header.Get("Authorization"))
	if tok == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	if _, err := auth.ParseToken(tok, s.Secret); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	fq, err := parseFeedQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	win, err := calendar.Resolve(fq.mode, fq.index, fq.year, s.Location, s.Now)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	appts, err := s.Store.AppointmentsInWindow(r.Context(), win)
	if err != nil {
		s.Logger.Error("calendar feed", zap.Error(err))
		http.Error(w, "appointment store unavailable", http.StatusServiceUnavailable)
		return
	}
	name := win.Label
	if fq.contact > 0 {
		appts = report.ContactSchedule(appts, fq.contact)
		name += " - contact " + strconv.FormatInt(fq.contact, 10)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+feedFilename(win)+`"`)
	if err := ics.Write(w, name, appts, s.Now()); err != nil {
		s.Logger.Warn("calendar feed write", zap.Error(err))
	}
}

func feedFilename(win calendar.Window) string {
	if win.Unfiltered {
		return "appointments.ics"
	}
	return "appointments-" + win.Mode.String() + "-" + win.Start.Format("2006-01-02") + ".ics"
}
