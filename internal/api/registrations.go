package api

import (
	"context"
	"fmt"

	"github.com/nhle/campus-inbox/internal/model"
)

// FetchLegacyRegistrations returns registrations from the older
// registration endpoint.
func (c *Client) FetchLegacyRegistrations(ctx context.Context) ([]model.Registration, error) {
	var regs []model.Registration
	if err := c.get(ctx, "/api/registrations/mine", &regs); err != nil {
		return nil, fmt.Errorf("fetching registrations: %w", err)
	}
	return regs, nil
}

// FetchEventRegistrations returns registrations from the event
// registration endpoint.
func (c *Client) FetchEventRegistrations(ctx context.Context) ([]model.Registration, error) {
	var regs []model.Registration
	if err := c.get(ctx, "/api/event-registrations/mine", &regs); err != nil {
		return nil, fmt.Errorf("fetching event registrations: %w", err)
	}
	return regs, nil
}
