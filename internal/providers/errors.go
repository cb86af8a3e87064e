package providers

import "strings"

type ErrorType string

const (
	ErrorQuota     ErrorType = "quota"
	ErrorRate      ErrorType = "rate"
	ErrorContext   ErrorType = "context"
	ErrorTransient ErrorType = "transient"
	ErrorPermanent ErrorType = "permanent"
)

var errorRules = []struct {
	needles []string
	kind    ErrorType
}{
	{[]string{"insufficient_quota", "quota", "credit"}, ErrorQuota},
	{[]string{"429", "rate"}, ErrorRate},
	{[]string{"context", "too long"}, ErrorContext},
	{[]string{"timeout", "temporarily", "unavailable"}, ErrorTransient},
}

// ClassifyError buckets a provider error by its message. Providers do not
// share a structured error format, so substring matching is the contract.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	for _, rule := range errorRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return rule.kind
			}
		}
	}
	return ErrorPermanent
}
