package entity

import "encoding/json"

type GenerateRequest struct {
	Query string `json:"query" validate:"required"`
}

// UpstreamResponse is the query service answer, relayed without looking at its schema.
type UpstreamResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}
