package responses

// SuccessEnvelope wraps every successful JSON body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public part of a failed request. Details are only present
// for codes whose metadata allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
