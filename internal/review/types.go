package review

import "strings"

// approvedMarker is the one-word verdict the system prompt asks the model to
// reply with when nothing blocks the change.
const approvedMarker = "APPROVED"

// Result is the outcome of one review: the model's feedback plus the
// metadata the presenter reports. It lives only until it is printed.
type Result struct {
	Feedback   string
	Approved   bool
	Provider   string
	Model      string
	TokensUsed int
	LLMMs      int64
	Mode       string
	Files      []string
}

// IsApproved reports whether feedback contains the approval marker.
func IsApproved(feedback string) bool {
	return strings.Contains(feedback, approvedMarker)
}
