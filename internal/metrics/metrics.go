package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the game counters and the registry they are exposed from.
type Metrics struct {
	Registry *prometheus.Registry

	GamesCreated prometheus.Counter
	Moves        *prometheus.CounterVec
	Jumps        prometheus.Counter
	Restarts     prometheus.Counter
	Outcomes     *prometheus.CounterVec
	Subscribers  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		GamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tictactoe_games_created_total",
			Help: "Games created",
		}),
		Moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tictactoe_moves_total",
			Help: "Moves received, by whether they were accepted",
		}, []string{"result"}),
		Jumps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tictactoe_jumps_total",
			Help: "Jumps to a history step",
		}),
		Restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tictactoe_restarts_total",
			Help: "Games restarted",
		}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tictactoe_outcomes_total",
			Help: "Moves that ended a game, by outcome",
		}, []string{"outcome"}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tictactoe_subscribers",
			Help: "Open board event streams",
		}),
	}
	m.Registry.MustRegister(
		m.GamesCreated, m.Moves, m.Jumps, m.Restarts, m.Outcomes, m.Subscribers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
