package api

// Error codes surfaced to callers. Each booking failure mode maps to exactly
// one code so the UI can branch on it (re-pick a slot vs. buy credits).
const (
	CodeInvalidArgument    = "invalid_argument"
	CodeNotAuthenticated   = "not_authenticated"
	CodeLeadTimeViolation  = "lead_time_violation"
	CodeSlotTaken          = "slot_taken"
	CodeNoCredits          = "no_credits"
	CodeTransactionTimeout = "transaction_timeout"
	CodeNotFound           = "not_found"
	CodeForbidden          = "forbidden"
	CodeInternal           = "internal_error"
)

type ErrorResponse struct {
	Error   string            `json:"error" example:"something went wrong"`
	Code    string            `json:"code,omitempty" example:"slot_taken"`
	Details []ValidationError `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
