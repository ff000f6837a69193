package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/hub"
	"github.com/goliatone/go-hubsummary/pkg/activity"
	dashboardpkg "github.com/goliatone/go-hubsummary/pkg/dashboard"
	"github.com/goliatone/go-hubsummary/pkg/hubdata"
)

// app bundles the wired dashboard dependencies shared by every command.
type app struct {
	cfg       Config
	logger    *logrus.Logger
	service   *dashboard.Service
	registry  *dashboard.Registry
	broadcast *dashboard.BroadcastHook
	charts    *dashboard.ChartCache
	telemetry dashboard.Telemetry
}

func newApp(ctx context.Context, cfg Config, logger *logrus.Logger) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		broadcast: dashboard.NewBroadcastHook(),
		charts:    dashboard.NewChartCache(cfg.Dashboard.ChartTTL),
		telemetry: dashboard.NewLogTelemetry(logger),
	}
	a.registry = dashboard.NewRegistry(dashboard.WithProviders(a.chartProviders()))

	var layout []dashboard.AddWidgetRequest
	if cfg.Dashboard.Manifest != "" {
		doc, err := a.registry.LoadManifestFile(cfg.Dashboard.Manifest)
		if err != nil {
			return nil, err
		}
		if requests := doc.SeedRequests(); len(requests) > 0 {
			layout = requests
		}
		logger.WithFields(logrus.Fields{
			"manifest": cfg.Dashboard.Manifest,
			"widgets":  len(doc.Widgets),
			"layout":   len(layout),
		}).Info("loaded widget manifest")
		if unbound := a.registry.Unbound(); len(unbound) > 0 {
			logger.WithField("widgets", unbound).Warn("manifest widgets without a provider render empty")
		}
	}

	hubOpts := dashboard.HubSourceOptions{}
	if cfg.Datasets.BaseURL != "" {
		client, err := hubdata.NewHTTPClient(hubdata.HTTPConfig{
			BaseURL: cfg.Datasets.BaseURL,
			APIKey:  cfg.Datasets.APIKey,
			Timeout: cfg.Datasets.Timeout,
		})
		if err != nil {
			return nil, err
		}
		hubOpts.Visits = hubdata.NewVisitRepository(client)
		hubOpts.HTD = hubdata.NewHTDRepository(client)
		hubOpts.RMs = hubdata.NewRMRepository(client)
		logger.WithField("base_url", cfg.Datasets.BaseURL).Info("using remote hub datasets")
	}

	service, err := dashboardpkg.New(ctx, dashboard.Options{
		Providers:   a.registry,
		RefreshHook: a.broadcast,
		Telemetry:   a.telemetry,
		Hub:         dashboard.NewHubSource(hubOpts),
		ActivityHooks: activity.Hooks{activity.HookFunc(func(_ context.Context, evt activity.Event) error {
			logger.WithFields(logrus.Fields{
				"verb":   evt.Verb,
				"actor":  evt.ActorID,
				"object": evt.ObjectID,
			}).Info("activity")
			return nil
		})},
		ActivityConfig: activity.Config{Enabled: cfg.Activity.Enabled, Channel: cfg.Activity.Channel},
	}, layout)
	if err != nil {
		return nil, fmt.Errorf("hubctl: bootstrap dashboard: %w", err)
	}
	a.service = service
	return a, nil
}

// chartProviders share one render cache so chart_ttl applies to every chart.
func (a *app) chartProviders() map[string]dashboard.Provider {
	renderer := func(chartType string) *dashboard.ChartRenderer {
		return dashboard.NewChartRenderer(chartType, dashboard.WithChartCache(a.charts))
	}
	return map[string]dashboard.Provider{
		dashboard.WidgetRatingChart: dashboard.NewRatingChartProvider(map[string]*dashboard.ChartRenderer{
			"bar": renderer("bar"),
			"pie": renderer("pie"),
		}),
		dashboard.WidgetRMProductivity: dashboard.NewProductivityProvider(renderer("bar")),
		dashboard.WidgetHubAggregate:   dashboard.NewHubAggregateProvider(renderer("gauge")),
	}
}

// viewer builds the CLI viewer for the configured date and clock.
func (a *app) viewer(date string) dashboard.ViewerContext {
	if date == "" {
		date = a.cfg.Dashboard.Date
	}
	if date == "" {
		date = hub.Today()
	}
	state := hub.DefaultState(date)
	if a.cfg.Dashboard.Clock != "" {
		state.Clock = a.cfg.Dashboard.Clock
	}
	return dashboard.ViewerContext{UserID: "hubctl", State: state}
}
