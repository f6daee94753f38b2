// Package boost provides an HTTP client for the boost engine API.
package boost

// Stats holds the engine's cumulative counters for one boost session.
type Stats struct {
	Success    int64 `json:"success"`
	Failed     int64 `json:"failed"`
	TotalViews int64 `json:"totalViews"`
	TotalLikes int64 `json:"totalLikes"`
}

// Response is the engine's envelope for all three endpoints. Fields beyond
// Success are populated depending on the call and outcome.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	TargetURL string `json:"targetUrl,omitempty"`
	Stats     *Stats `json:"stats,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FailureReason returns the most specific failure text the engine provided.
func (r *Response) FailureReason() string {
	if r.Error != "" {
		return r.Error
	}
	if r.Message != "" {
		return r.Message
	}
	return "boost engine reported failure"
}
