package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// RegisterAreas ensures the hub dashboard areas exist in the store.
func RegisterAreas(ctx context.Context, store WidgetStore) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, area := range DefaultAreaDefinitions() {
		if _, err := store.EnsureArea(ctx, area); err != nil {
			return fmt.Errorf("register area %s: %w", area.Code, err)
		}
	}
	return nil
}

// RegisterDefinitions stores widget definitions. With a registry every
// registered definition is stored, including manifest widgets; without one the
// built-in hub widgets are used.
func RegisterDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) error {
	if store == nil {
		return errMissingWidgetStore
	}
	defs := DefaultWidgetDefinitions()
	if registry != nil {
		defs = registry.Definitions()
	}
	for _, def := range defs {
		if _, err := store.EnsureDefinition(ctx, def); err != nil {
			return fmt.Errorf("register definition %s: %w", def.Code, err)
		}
	}
	return nil
}

// SeedLayout creates widget assignments. A nil request list seeds the default
// hub layout.
func SeedLayout(ctx context.Context, service *Service, requests []AddWidgetRequest) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed layout")
	}
	if requests == nil {
		requests = DefaultSeedWidgets()
	}
	var seedErr error
	for _, req := range requests {
		if err := service.AddWidget(ctx, req); err != nil {
			seedErr = errors.Join(seedErr, fmt.Errorf("seed %s in %s: %w", req.DefinitionID, req.AreaCode, err))
		}
	}
	return seedErr
}
