// Package service hosts the bot: it runs transport adapters, probes the
// model provider, and serves liveness/readiness endpoints.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"factlens/pkg/bot"
	"factlens/pkg/bus"
	"factlens/pkg/config"
	"factlens/pkg/llm"
)

const providerProbeInterval = 30 * time.Second

type Service struct {
	cfg      *config.Config
	log      *slog.Logger
	provider llm.Client
	handler  bot.Handler
	events   *bus.Bus
	channels []bot.Adapter

	mu               sync.RWMutex
	startedAt        time.Time
	providerLastOKAt time.Time
	providerLastErr  string
	channelStates    map[string]channelState
	analysesTotal    int64
	analysesFailed   int64
	lastAnalysisAt   time.Time
	lastAnalysisErr  string
}

type channelState struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
}

type statusResponse struct {
	Status            string                  `json:"status"`
	UptimeSeconds     int64                   `json:"uptime_seconds"`
	ProviderLastOKAt  string                  `json:"provider_last_ok_at,omitempty"`
	ProviderLastErr   string                  `json:"provider_last_error,omitempty"`
	Channels          map[string]channelState `json:"channels"`
	AnalysesTotal     int64                   `json:"analyses_total"`
	AnalysesFailed    int64                   `json:"analyses_failed"`
	LastAnalysisAt    string                  `json:"last_analysis_at,omitempty"`
	LastAnalysisError string                  `json:"last_analysis_error,omitempty"`
}

func New(cfg *config.Config, handler bot.Handler, adapters []bot.Adapter, provider llm.Client, events *bus.Bus, log *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if len(adapters) == 0 {
		return nil, errors.New("at least one channel adapter is required")
	}
	if provider == nil {
		return nil, errors.New("provider client is required")
	}
	if log == nil {
		log = slog.Default()
	}

	channelStates := make(map[string]channelState, len(adapters))
	for _, adapter := range adapters {
		channelStates[adapter.Name()] = channelState{}
	}

	return &Service{
		cfg:           cfg,
		log:           log.With("component", "service"),
		provider:      provider,
		handler:       handler,
		events:        events,
		channels:      adapters,
		channelStates: channelStates,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	if err := s.checkProviderHealth(ctx); err != nil {
		return err
	}

	serverErrors := make(chan error, 1)
	go s.runStatusServer(ctx, serverErrors)

	ticker := time.NewTicker(providerProbeInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.checkProviderHealth(ctx)
			}
		}
	}()

	if s.events != nil {
		go s.watchEvents(ctx)
	}

	errCh := make(chan error, len(s.channels))
	for _, adapter := range s.channels {
		adapter := adapter
		s.setChannelState(adapter.Name(), channelState{Running: true})

		go func() {
			err := adapter.Run(ctx, s.handler)
			s.setChannelState(adapter.Name(), channelState{Running: false, Error: errorString(err)})
			if err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("run %s channel: %w", adapter.Name(), err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErrors:
		return err
	case err := <-errCh:
		return err
	}
}

// watchEvents folds analysis lifecycle events into the status counters.
func (s *Service) watchEvents(ctx context.Context) {
	events, unsubscribe := s.events.Subscribe(ctx, 0)
	defer unsubscribe()

	for event := range events {
		switch event.Type {
		case bus.EventAnalysisCompleted:
			s.mu.Lock()
			s.analysesTotal++
			s.lastAnalysisAt = event.At
			s.lastAnalysisErr = ""
			s.mu.Unlock()
		case bus.EventAnalysisFailed:
			s.mu.Lock()
			s.analysesTotal++
			s.analysesFailed++
			s.lastAnalysisAt = event.At
			s.lastAnalysisErr = event.Error
			s.mu.Unlock()
		}
	}
}

func (s *Service) runStatusServer(ctx context.Context, errCh chan<- error) {
	host := strings.TrimSpace(s.cfg.Status.Host)
	port := s.cfg.Status.Port

	addr := host + ":" + strconv.Itoa(port)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Status server started", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- fmt.Errorf("start status server: %w", err)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondStatus(w, http.StatusOK, "ok")
}

func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if !s.isReady() {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	s.respondStatus(w, statusCode, status)
}

func (s *Service) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := s.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to write status response", "error", err)
	}
}

func (s *Service) currentStatus(status string) statusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uptime := int64(0)
	if !s.startedAt.IsZero() {
		uptime = int64(time.Since(s.startedAt).Seconds())
	}

	channels := make(map[string]channelState, len(s.channelStates))
	for name, state := range s.channelStates {
		channels[name] = state
	}

	providerLastOK := ""
	if !s.providerLastOKAt.IsZero() {
		providerLastOK = s.providerLastOKAt.Format(time.RFC3339)
	}

	lastAnalysis := ""
	if !s.lastAnalysisAt.IsZero() {
		lastAnalysis = s.lastAnalysisAt.Format(time.RFC3339)
	}

	return statusResponse{
		Status:            status,
		UptimeSeconds:     uptime,
		ProviderLastOKAt:  providerLastOK,
		ProviderLastErr:   s.providerLastErr,
		Channels:          channels,
		AnalysesTotal:     s.analysesTotal,
		AnalysesFailed:    s.analysesFailed,
		LastAnalysisAt:    lastAnalysis,
		LastAnalysisError: s.lastAnalysisErr,
	}
}

func (s *Service) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.channelStates) == 0 {
		return false
	}

	anyRunning := false
	for _, state := range s.channelStates {
		if state.Running {
			anyRunning = true
			break
		}
	}

	if !anyRunning {
		return false
	}

	if s.providerLastOKAt.IsZero() {
		return false
	}

	if s.providerLastErr != "" {
		return false
	}

	return true
}

func (s *Service) checkProviderHealth(ctx context.Context) error {
	if err := s.provider.Health(ctx); err != nil {
		s.mu.Lock()
		s.providerLastErr = err.Error()
		s.mu.Unlock()
		return fmt.Errorf("provider health check failed: %w", err)
	}

	s.mu.Lock()
	s.providerLastErr = ""
	s.providerLastOKAt = time.Now().UTC()
	s.mu.Unlock()

	return nil
}

func (s *Service) setChannelState(name string, state channelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelStates[name] = state
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
