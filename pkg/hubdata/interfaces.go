// Package hubdata loads the hub datasets (visits, HTD rows, RM roster) from
// an upstream hub service instead of the built-in demo data.
package hubdata

import (
	"context"

	"github.com/goliatone/go-hubsummary/components/hub"
)

// VisitClient fetches the visit log around a base date.
type VisitClient interface {
	FetchVisits(ctx context.Context, baseDate string) ([]hub.Visit, error)
}

// HTDClient fetches control-tower rows.
type HTDClient interface {
	FetchHTDRows(ctx context.Context) ([]hub.HTDRow, error)
}

// RMClient fetches the RM roster with schedules.
type RMClient interface {
	FetchRMs(ctx context.Context) ([]hub.RM, error)
}

// Client is a convenience union for services that implement every dataset.
type Client interface {
	VisitClient
	HTDClient
	RMClient
}
