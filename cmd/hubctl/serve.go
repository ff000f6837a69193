package main

import (
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-hubsummary/components/dashboard"
	"github.com/goliatone/go-hubsummary/components/dashboard/gorouter"
	"github.com/goliatone/go-hubsummary/components/dashboard/httpapi"
)

type serveCmd struct {
	Addr string `help:"Listen address. Overrides server.addr."`
}

func (cmd *serveCmd) Run(rc *runContext) error {
	a, err := rc.app()
	if err != nil {
		return err
	}
	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return err
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  a.service,
		Renderer: renderer,
		Title:    a.cfg.Dashboard.Title,
	})

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        httpapi.NewServiceExecutor(a.service, a.telemetry),
		Broadcast:  a.broadcast,
		BasePath:   a.cfg.Server.BasePath,
		Date:       firstSet(rc.global.Date, a.cfg.Dashboard.Date),
		Clock:      a.cfg.Dashboard.Clock,
	}); err != nil {
		return err
	}

	addr := firstSet(cmd.Addr, a.cfg.Server.Addr)
	a.logger.WithFields(logrus.Fields{
		"addr":      addr,
		"dashboard": a.cfg.Server.BasePath + "/dashboard",
		"snapshot":  a.cfg.Server.BasePath + "/api/snapshot",
	}).Info("hub dashboard ready")
	defer a.broadcast.Close()
	return server.Serve(addr)
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
