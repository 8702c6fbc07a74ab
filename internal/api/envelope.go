package api

import "github.com/danielgtaylor/huma/v2"

// EnvelopeVersion is sent as "v" in every response body.
const EnvelopeVersion = 1

// APIEnvelope wraps successful responses and simple errors.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope wraps errors that carry a machine-readable code.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma.Transformer that wraps every response body.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case *APIEnvelope, *APIErrorEnvelope:
		return v, nil
	case *APIError:
		if body.Code == "" {
			return &APIEnvelope{Version: EnvelopeVersion, Error: body.Message}, nil
		}
		return &APIErrorEnvelope{
			Version: EnvelopeVersion,
			Code:    body.Code,
			Message: body.Message,
			Details: body.Details,
		}, nil
	}

	return &APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}
