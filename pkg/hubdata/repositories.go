package hubdata

import (
	"context"

	"github.com/goliatone/go-hubsummary/components/hub"
)

// NewVisitRepository adapts a visit client into a hub repository. Blank lead
// ids are filled the same way the demo dataset does.
func NewVisitRepository(client VisitClient) hub.VisitRepository {
	return &visitRepository{client: client}
}

type visitRepository struct {
	client VisitClient
}

func (r *visitRepository) FetchVisits(ctx context.Context, baseDate string) ([]hub.Visit, error) {
	visits, err := r.client.FetchVisits(ctx, baseDate)
	if err != nil {
		return nil, err
	}
	return hub.NormalizeLeadIDs(visits), nil
}

// NewHTDRepository adapts an HTD client into a hub repository.
func NewHTDRepository(client HTDClient) hub.HTDRepository {
	return &htdRepository{client: client}
}

type htdRepository struct {
	client HTDClient
}

func (r *htdRepository) FetchHTDRows(ctx context.Context) ([]hub.HTDRow, error) {
	return r.client.FetchHTDRows(ctx)
}

// NewRMRepository adapts an RM client into a hub repository.
func NewRMRepository(client RMClient) hub.RMRepository {
	return &rmRepository{client: client}
}

type rmRepository struct {
	client RMClient
}

func (r *rmRepository) FetchRMs(ctx context.Context) ([]hub.RM, error) {
	return r.client.FetchRMs(ctx)
}

// Sources wires every repository of client with an empty overlay.
func Sources(client Client) hub.Sources {
	return hub.Sources{
		Visits: NewVisitRepository(client),
		HTD:    NewHTDRepository(client),
		RMs:    NewRMRepository(client),
	}
}
