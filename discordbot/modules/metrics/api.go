// Package metrics provides bot module exposing prometheus counters
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/eientei/modbot/discordbot/bot"
	"github.com/eientei/modbot/discordbot/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "modbot"

// New provides module instance
func New() bot.Module {
	return &module{}
}

type module struct {
	config   *bot.Configuration
	registry *prometheus.Registry
	server   *http.Server
	commands *prometheus.CounterVec
	actions  *prometheus.CounterVec
	filtered prometheus.Counter
}

func (mod *module) Initialize(config *bot.Configuration) error {
	mod.config = config
	mod.registry = prometheus.NewRegistry()
	mod.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(mod.registry)

	mod.commands = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Executed commands by route and outcome.",
	}, []string{"route", "status"})

	mod.actions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "Moderation actions by kind.",
	}, []string{"kind"})

	mod.filtered = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "filtered_messages_total",
		Help:      "Messages removed for containing banned words.",
	})

	config.Router.PrependMiddleware(mod.middlewareMetrics)

	listen := config.Config.Private.Metrics.Listen
	if listen == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(mod.registry, promhttp.HandlerOpts{}))

	mod.server = &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := mod.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Log.WithError(err).Error("Serving metrics")
		}
	}()

	return nil
}

func (mod *module) Configure(*bot.Configuration, *discordgo.Guild) {

}

func (mod *module) Shutdown(config *bot.Configuration) {
	if mod.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := mod.server.Shutdown(ctx)
	if err != nil {
		config.Log.WithError(err).Error("Shutting down metrics server")
	}
}

func (mod *module) ActionTaken(action *bot.Action) {
	mod.actions.WithLabelValues(action.Kind).Inc()

	if action.Kind == bot.ActionFilter {
		mod.filtered.Inc()
	}
}

func (mod *module) middlewareMetrics(handler router.HandlerFunc) router.HandlerFunc {
	return func(ctx *router.Context) error {
		err := handler(ctx)

		status := "ok"

		switch {
		case err == nil, errors.Is(err, bot.ErrNoReply):
		case errors.Is(err, router.ErrInvalidArgument):
			status = "invalid"
		default:
			status = "error"
		}

		mod.commands.WithLabelValues(ctx.Route.Name, status).Inc()

		return err
	}
}
