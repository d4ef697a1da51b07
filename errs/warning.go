package errs

import "fmt"

// Warning is a non-fatal advisory condition. Warnings never abort a build;
// they are collected on the result and optionally forwarded to a callback.
type Warning struct {
	// Code identifies the advisory condition.
	Code WarningCode

	// Message is a human-readable description with the concrete numbers filled in.
	Message string
}

// WarningCode enumerates the advisory conditions a build can emit.
type WarningCode uint8

const (
	// WarnForcedStrategyOverBudget reports a forced strategy whose estimated
	// footprint exceeds the memory budget.
	WarnForcedStrategyOverBudget WarningCode = iota + 1

	// WarnPercentageOverBudget reports a requested auxiliary percentage that
	// exceeds what the budget supports. The request is still honored.
	WarnPercentageOverBudget

	// WarnLowAuxiliaryColumns reports a bounded-strategy column count below the
	// recommended efficiency threshold.
	WarnLowAuxiliaryColumns
)

func (w Warning) String() string {
	return fmt.Sprintf("WARNING: %s", w.Message)
}

// Warnf constructs a Warning with a formatted message.
func Warnf(code WarningCode, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}
