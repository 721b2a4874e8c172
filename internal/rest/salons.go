package rest

import (
	"context"
	"encoding/json"
	"fmt"
)

type Salon struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
	City    string `json:"city,omitempty"`
}

// Salons lists all salons. The backend may answer either a plain array or a
// DRF-paginated envelope; both shapes are accepted.
func (c *Client) Salons(ctx context.Context) ([]Salon, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/salons/api/list/", nil, &raw); err != nil {
		return nil, err
	}

	var salons []Salon
	if err := json.Unmarshal(raw, &salons); err == nil {
		return salons, nil
	}

	var page struct {
		Count   int     `json:"count"`
		Results []Salon `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode salon list: %w", err)
	}
	return page.Results, nil
}

func (c *Client) Salon(ctx context.Context, id int) (Salon, error) {
	var salon Salon
	if err := c.get(ctx, fmt.Sprintf("/salons/api/%d/", id), nil, &salon); err != nil {
		return Salon{}, err
	}
	return salon, nil
}
