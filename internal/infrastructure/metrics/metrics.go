// Package metrics exposes the workflow counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts workflow events. The zero-dependency Nop is used when
// metrics are not wired.
type Recorder interface {
	CheckCreated()
	DuplicateRejected()
	CheckUpdated()
	CheckApproved()
	ReportExported(format string)
}

type Nop struct{}

func (Nop) CheckCreated()         {}
func (Nop) DuplicateRejected()    {}
func (Nop) CheckUpdated()         {}
func (Nop) CheckApproved()        {}
func (Nop) ReportExported(string) {}

type Prometheus struct {
	reg *prometheus.Registry

	checks  *prometheus.CounterVec // water_chiller_checks_total{event}
	exports *prometheus.CounterVec // water_chiller_reports_total{format}
}

func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	checks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "water_chiller_checks_total",
			Help: "Check workflow events, partitioned by event (created, duplicate, updated, approved).",
		},
		[]string{"event"},
	)
	exports := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "water_chiller_reports_total",
			Help: "Rendered check reports, partitioned by format.",
		},
		[]string{"format"},
	)
	reg.MustRegister(
		checks,
		exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Prometheus{reg: reg, checks: checks, exports: exports}
}

func (p *Prometheus) CheckCreated()      { p.checks.WithLabelValues("created").Inc() }
func (p *Prometheus) DuplicateRejected() { p.checks.WithLabelValues("duplicate").Inc() }
func (p *Prometheus) CheckUpdated()      { p.checks.WithLabelValues("updated").Inc() }
func (p *Prometheus) CheckApproved()     { p.checks.WithLabelValues("approved").Inc() }

func (p *Prometheus) ReportExported(format string) {
	p.exports.WithLabelValues(format).Inc()
}

func (p *Prometheus) Registry() *prometheus.Registry { return p.reg }

// Handler serves the registry for scraping.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{Registry: p.reg})
}
