package goadmin

import (
	"context"
	"errors"

	activitypkg "github.com/goliatone/go-hubsummary/pkg/activity"
	dashboardpkg "github.com/goliatone/go-hubsummary/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the hub dashboard into an admin shell. When Service is nil one
// is built from Options during Bootstrap.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
	Options         dashboardpkg.Options
	Layout          []dashboardpkg.AddWidgetRequest
	DefaultMenuItem MenuItem
	ActivityHooks   activitypkg.Hooks
	ActivityConfig  activitypkg.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.MenuCode == "" {
		cfg.MenuCode = "ops.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Hub Summary"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "hub.dashboard"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "gauge"
	}
	if len(cfg.ActivityHooks) > 0 && len(cfg.Options.ActivityHooks) == 0 {
		cfg.Options.ActivityHooks = cfg.ActivityHooks
		cfg.Options.ActivityConfig = cfg.ActivityConfig
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap builds and seeds the dashboard service when needed, then
// registers the menu entry.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDashboard {
		return nil
	}
	if a.cfg.Service == nil {
		service, err := dashboardpkg.New(ctx, a.cfg.Options, a.cfg.Layout)
		if err != nil {
			return err
		}
		a.cfg.Service = service
	}
	if a.cfg.MenuBuilder == nil {
		return nil
	}
	if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem); err != nil {
		return errors.Join(errors.New("goadmin: ensure menu item"), err)
	}
	return nil
}
