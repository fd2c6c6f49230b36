package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rmaia/dispatchboard/config"
	coremetrics "github.com/rmaia/dispatchboard/core/metrics"
	"github.com/rmaia/dispatchboard/core/refresh"
	"github.com/rmaia/dispatchboard/core/session"
	"github.com/rmaia/dispatchboard/core/topology"
	"github.com/rmaia/dispatchboard/core/workflow"
	infrabackend "github.com/rmaia/dispatchboard/infra/backend"
	"github.com/rmaia/dispatchboard/infra/logger"
	"github.com/rmaia/dispatchboard/infra/metrics"
	"github.com/rmaia/dispatchboard/web"
)

// Service orchestrates the refresh controller, the workflows and the web
// server of the dashboard.
type Service struct {
	Controller *refresh.Controller
	Session    *session.Session

	srv         *web.Server
	listen      string
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	logg := logger.New("service")

	var sink coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		s, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sink = s
	}

	client := infrabackend.New(cfg.Backend)
	sess := session.New()
	ctl := refresh.New(client, sess, logger.New("refresh"), sink, cfg.Refresh.Interval())

	topo := topology.Default()
	assign := workflow.NewAssignmentManager(client, topo, ctl, logger.New("assignment"), sink)
	area := workflow.NewAreaStatusManager(client, ctl, logger.New("area-status"), sink)

	srv := web.NewServer(client, sess, ctl, assign, area, topo, logger.New("web"))

	return &Service{
		Controller:  ctl,
		Session:     sess,
		srv:         srv,
		listen:      cfg.Web.Listen,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run loads the initial snapshots, starts the background refresh and serves
// the dashboard until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.Controller.RefreshAll(ctx)
	if err := s.Controller.Start(ctx); err != nil {
		return fmt.Errorf("start refresh: %w", err)
	}
	defer s.Controller.Stop()

	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	httpSrv := &http.Server{Addr: s.listen, Handler: s.srv.SetupRouter()}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("dashboard listening on %s", s.listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
