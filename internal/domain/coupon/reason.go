package coupon

import "fmt"

// Reason is a typed rejection code. The zero value means no rejection.
type Reason string

const (
	ReasonNone                     Reason = ""
	ReasonExpired                  Reason = "EXPIRED"
	ReasonNotStarted               Reason = "NOT_STARTED"
	ReasonInactive                 Reason = "INACTIVE"
	ReasonUsageExhausted           Reason = "USAGE_EXHAUSTED"
	ReasonMinOrderNotMet           Reason = "MIN_ORDER_NOT_MET"
	ReasonNotApplicableToSelection Reason = "NOT_APPLICABLE_TO_SELECTION"
	ReasonUnknownCode              Reason = "UNKNOWN_CODE"
	ReasonInvalidCoupon            Reason = "INVALID_COUPON"
	ReasonPerUserLimitReached      Reason = "PER_USER_LIMIT_REACHED"
)

var reasonMessages = map[Reason]string{
	ReasonExpired:                  "coupon expired",
	ReasonNotStarted:               "coupon is not active yet",
	ReasonInactive:                 "coupon is inactive",
	ReasonUsageExhausted:           "coupon usage limit reached",
	ReasonMinOrderNotMet:           "minimum order value not met",
	ReasonNotApplicableToSelection: "coupon does not apply to the selected items",
	ReasonUnknownCode:              "invalid coupon code",
	ReasonInvalidCoupon:            "coupon is misconfigured",
	ReasonPerUserLimitReached:      "coupon already used the maximum number of times",
}

// Message returns a human-readable description of the reason.
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return string(r)
}

// RejectionError carries a rejection reason through error-returning APIs
// such as order placement.
type RejectionError struct {
	Code   string
	Reason Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("coupon %q rejected: %s", e.Code, e.Reason.Message())
}
