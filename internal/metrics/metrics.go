// Package metrics exposes Prometheus counters for the pipeline and the
// dispatcher, plus a small HTTP server to scrape them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "founderflow_job_runs_total",
		Help: "Job runs by terminal status.",
	}, []string{"status"})

	LeadsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "founderflow_leads_collected_total",
		Help: "Leads collected, by outcome (saved or duplicate).",
	}, []string{"outcome"})

	EmailsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "founderflow_emails_scheduled_total",
		Help: "Outreach emails placed on the schedule.",
	})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "founderflow_email_deliveries_total",
		Help: "Dispatch attempts by result (sent, retried, failed).",
	}, []string{"result"})
)

// Server serves /metrics on its own listener so long-running dispatch loops
// can be scraped.
type Server struct {
	srv *http.Server
}

func NewServer(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}
}

func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[metrics] server: %v", err)
		}
	}()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Printf("[metrics] shutdown: %v", err)
	}
}
