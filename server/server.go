package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Mentat-Vision/moe/config"
	"github.com/Mentat-Vision/moe/dispatch"
	"github.com/Mentat-Vision/moe/expert"
	"github.com/Mentat-Vision/moe/session"
	"github.com/Mentat-Vision/moe/stats"
	"github.com/Mentat-Vision/moe/util/logger"
	"github.com/Mentat-Vision/moe/util/workerpool"
)

const (
	defaultPreprocessors = 4
	sweepInterval        = time.Second
)

// Server is the frame dispatch server: it owns the expert workers, the
// session registry, the router/aggregator pair and the stats publisher,
// and exposes the websocket data plane plus the HTTP control plane on
// one listen address.
type Server struct {
	config *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	logger *logger.Logger

	registry   *expert.Registry
	manager    *session.Manager
	aggregator *dispatch.Aggregator
	router     *dispatch.Router
	collector  *stats.Collector
	publisher  *stats.Publisher
	emitter    *stats.MQTTEmitter
	preprocess *workerpool.WorkerPool
	httpServer *http.Server

	mu     sync.RWMutex
	latest map[string][]byte // last combined result per camera
}

// NewServer creates a new dispatch server instance. The configuration
// must already be validated.
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())

	idleTimeout := cfg.Server.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = session.DefaultIdleTimeout
	}

	registry := expert.NewRegistry(expert.NewToggles())
	collector := stats.NewCollector(registry)
	statsFn := func() any { return collector.Snapshot() }

	aggregator := dispatch.NewAggregator(statsFn)

	timeouts := make(map[string]time.Duration, len(cfg.Experts))
	for _, e := range cfg.Experts {
		timeouts[e.Name] = e.Timeout
	}
	router := dispatch.NewRouter(registry, aggregator, statsFn, timeouts)

	manager := session.NewManager(session.WithIdleTimeout(idleTimeout))
	manager.OnClose(aggregator.CancelCamera)

	preprocessors := cfg.Server.Preprocessor
	if preprocessors <= 0 {
		preprocessors = defaultPreprocessors
	}

	s := &Server{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger.NewLogger("Server"),
		registry:   registry,
		manager:    manager,
		aggregator: aggregator,
		router:     router,
		collector:  collector,
		publisher:  stats.NewPublisher(collector),
		preprocess: workerpool.New(ctx, preprocessors),
		latest:     make(map[string][]byte),
	}

	if cfg.MQTT.Broker != "" {
		s.emitter = stats.NewMQTTEmitter(cfg.MQTT)
	}

	aggregator.OnCombined(s.onCombined)
	return s, nil
}

// onCombined retains the latest result per camera and mirrors it to the
// dashboard publisher and the optional broker.
func (s *Server) onCombined(cameraID string, combined []byte) {
	s.mu.Lock()
	s.latest[cameraID] = combined
	s.mu.Unlock()

	s.publisher.PublishCombined(cameraID, combined)
	if s.emitter != nil {
		if err := s.emitter.PublishCombined(cameraID, combined); err != nil {
			s.logger.Debugf("broker publish for %s failed: %v", cameraID, err)
		}
	}
}

// Start brings up the workers and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Infof("Starting dispatch server on %s", s.config.Server.ListenAddr)

	if err := s.startWorkers(ctx); err != nil {
		return err
	}

	s.aggregator.Start()
	s.manager.StartSweeper(sweepInterval)
	s.preprocess.Start()
	s.publisher.Start(stats.DefaultSnapshotInterval)

	if s.emitter != nil {
		// Broker mirroring is best-effort: the paho client keeps retrying
		// in the background after a failed first connect.
		if err := s.emitter.Connect(); err != nil {
			s.logger.Warnf("MQTT connect failed, results will not be mirrored yet: %v", err)
		}
		go s.mirrorStats()
	}

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	s.logger.Infof("Dispatch server context cancelled, initiating shutdown")
	return nil
}

// startWorkers builds one worker per configured expert. A backend that
// fails to initialize is skipped so one dead model server cannot keep
// the rest of the pipeline down.
func (s *Server) startWorkers(ctx context.Context) error {
	started := 0
	for _, e := range s.config.Experts {
		capability := expert.NewRemoteCapability(e.BackendAddr, e.Timeout)
		queue := e.QueueCapacity
		if queue <= 0 {
			queue = expert.DefaultQueueCapacity
		}
		w := expert.NewWorker(e.Name, capability, queue)
		if err := w.Start(ctx); err != nil {
			s.logger.Errorf("Skipping expert %s: %v", e.Name, err)
			continue
		}
		if err := s.registry.Register(w); err != nil {
			return err
		}
		s.registry.Toggles().Set(e.Name, e.ExpertEnabled())
		started++
	}
	if started == 0 {
		return fmt.Errorf("no expert workers could be started")
	}
	s.logger.Infof("Started %d/%d expert workers", started, len(s.config.Experts))
	return nil
}

// mirrorStats periodically publishes stats snapshots to the broker.
func (s *Server) mirrorStats() {
	ticker := time.NewTicker(stats.DefaultSnapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.emitter.PublishStats(s.collector.Snapshot()); err != nil {
				s.logger.Debugf("broker stats publish failed: %v", err)
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) startHTTPServer() error {
	s.httpServer = &http.Server{
		Addr:    s.config.Server.ListenAddr,
		Handler: s.setupRoutes(),
	}

	go func() {
		s.logger.Infof("HTTP server listening on %s", s.config.Server.ListenAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP server error: %v", err)
		}
		s.logger.Infof("HTTP server stopped")
	}()

	return nil
}

// Stop gracefully stops the dispatch server.
func (s *Server) Stop() error {
	s.logger.Infof("Stopping dispatch server")

	if s.httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warnf("HTTP server shutdown error: %v", err)
			s.httpServer.Close()
		}
		shutdownCancel()
	}

	s.manager.Stop()
	s.publisher.Stop()
	s.aggregator.Stop()
	s.preprocess.Stop()

	if s.emitter != nil {
		s.emitter.Disconnect()
	}

	s.cancel()
	s.logger.Infof("Dispatch server stopped")
	return nil
}

// LatestCombined returns the most recent combined result for a camera.
func (s *Server) LatestCombined(cameraID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	combined, ok := s.latest[cameraID]
	return combined, ok
}
