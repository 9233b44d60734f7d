package experiment

import "LeadPilot/pkg/response"

var (
	ErrVariantNotFound    = response.NewError(404, "variant not found")
	ErrNoActiveVariants   = response.NewError(404, "no active variants for scenario")
	ErrInvalidInteraction = response.NewError(400, "invalid interaction data")
)
