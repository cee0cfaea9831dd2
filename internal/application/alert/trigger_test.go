package alert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
)

func TestShouldAlert(t *testing.T) {
	cases := []struct {
		level analysis.RiskLevel
		want  bool
	}{
		{analysis.RiskLow, false},
		{analysis.RiskMedium, false},
		{analysis.RiskHigh, true},
		{analysis.RiskCritical, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.level), func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldAlert(tc.level))
		})
	}
}

func TestShouldAlert_EmptyResult(t *testing.T) {
	assert.False(t, ShouldAlert(analysis.EmptyResult().RiskLevel))
}

func TestBuild_TruncatesSummary(t *testing.T) {
	long := strings.Repeat("x", 250)
	a := Build(&analysis.Result{RiskLevel: analysis.RiskCritical, Summary: long})
	assert.Len(t, a.Message, 100)
	assert.Equal(t, "Alert. High risk detected. "+a.Message, a.Spoken)
}

func TestBuild_ShortSummaryUntouched(t *testing.T) {
	a := Build(&analysis.Result{RiskLevel: analysis.RiskHigh, Summary: "ssh brute force"})
	assert.Equal(t, "ssh brute force", a.Message)
}
