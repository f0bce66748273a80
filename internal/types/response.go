package types

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp" example:"2025-06-01 12:00:00"`
	Version   string `json:"version" example:"1.0.0"`
}
