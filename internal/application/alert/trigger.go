package alert

import (
	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
)

// summaryLimit caps how much of the result summary rides in the alert text.
const summaryLimit = 100

// ShouldAlert reports whether a result's risk level warrants a high-severity
// notification. Only High and Critical qualify; the empty default result is
// Low and therefore never fires.
func ShouldAlert(level analysis.RiskLevel) bool {
	return level.AtLeast(analysis.RiskHigh)
}

// Alert is one high-severity notification. Spoken is the text a UI should
// feed to speech synthesis.
type Alert struct {
	Level   analysis.RiskLevel `json:"level"`
	Message string             `json:"message"`
	Spoken  string             `json:"spoken"`
}

// Build assembles the notification for a qualifying result.
func Build(res *analysis.Result) Alert {
	msg := truncate(res.Summary, summaryLimit)
	return Alert{
		Level:   res.RiskLevel,
		Message: msg,
		Spoken:  "Alert. High risk detected. " + msg,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
