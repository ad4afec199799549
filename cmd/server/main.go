package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"appointment-scheduler/internal/api"
	"appointment-scheduler/internal/config"
	gweb "appointment-scheduler/internal/grpcweb"
	"appointment-scheduler/internal/handler"
	"appointment-scheduler/internal/logging"
	"appointment-scheduler/internal/metrics"
	"appointment-scheduler/internal/middleware"
	"appointment-scheduler/internal/reminder"
	"appointment-scheduler/internal/store"
	"appointment-scheduler/internal/web"
)

func main() {
	path := os.Getenv("SCHEDULER_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	hours, err := cfg.BusinessHours()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	if cfg.Migrate {
		if err := store.MigrateUp(cfg.DatabaseURL); err != nil {
			return err
		}
		log.Info("migrations applied")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	st := store.New(pool)
	if err := st.Ping(ctx); err != nil {
		return err
	}
	log.Info("connected to postgres")

	m := metrics.New(true)
	h, err := handler.New(st, handler.Options{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL,
		Location: loc,
		Hours:    hours,
		Logger:   log.Named("handler"),
		Metrics:  m,
	})
	if err != nil {
		return err
	}

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go rl.Run(ctx)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(api.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.Logging(log.Named("rpc"), m),
			middleware.RateLimit(rl),
			middleware.Auth(cfg.JWTSecret),
		),
	)
	api.RegisterSchedulerServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}
	go func() {
		log.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()

	if cfg.Reminder.Enabled {
		rw := reminder.NewWorker(log.Named("reminder"), st, reminder.Options{
			Lead:     cfg.Reminder.Lead,
			Location: loc,
			Metrics:  m,
		})
		rw.Start(ctx, cfg.Reminder.Schedule)
		defer rw.Stop()
	}

	// grpc-web bridge forwards browser calls to the grpc listener
	bridge, err := gweb.New("localhost:"+cfg.GRPCPort, log.Named("grpcweb"))
	if err != nil {
		return err
	}
	defer bridge.Close()

	httpSrv := &http.Server{
		Addr: ":" + cfg.WebPort,
		Handler: web.NewRouter(web.Deps{
			Store:       st,
			Bridge:      bridge,
			Metrics:     m.Handler(),
			Logger:      log.Named("web"),
			Secret:      cfg.JWTSecret,
			Location:    loc,
			CORSOrigins: cfg.CORSOrigins,
			PerMinute:   cfg.RateLimit.HTTPPerMinute,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http serve", zap.Error(err))
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	srv.GracefulStop()
	return nil
}
