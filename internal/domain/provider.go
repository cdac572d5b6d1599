package domain

import (
	"time"
)

// Provider is a solar-energy company being rated. Its displayed rating rolls
// up reviews attached to it directly and reviews attached to its solutions.
type Provider struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Solution is a product or service offering owned by a provider.
type Solution struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
