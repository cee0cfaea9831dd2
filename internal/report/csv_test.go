package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
)

func TestAnomaliesCSV(t *testing.T) {
	res := &analysis.Result{
		Anomalies: []analysis.Anomaly{
			{
				Timestamp:   "2023-10-27 08:15:30",
				EventType:   "Brute Force",
				Severity:    analysis.RiskCritical,
				Description: "Repeated failed logins, account locked",
				SourceIP:    "192.168.1.55",
			},
			{
				Timestamp:   "2023-10-27 10:00:00",
				EventType:   "Maintenance",
				Severity:    analysis.RiskLow,
				Description: `Task "nightly, full" completed`,
			},
		},
	}

	out, err := AnomaliesCSV(res)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,EventType,Severity,Description,SourceIP", lines[0])
	assert.Contains(t, lines[1], "192.168.1.55")
	assert.True(t, strings.HasSuffix(lines[2], "N/A"), "missing source IP renders as N/A")
	assert.Contains(t, lines[2], `"Task ""nightly, full"" completed"`)
}

func TestAnomaliesCSV_EmptyResult(t *testing.T) {
	out, err := AnomaliesCSV(analysis.EmptyResult())
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,EventType,Severity,Description,SourceIP", strings.TrimSpace(string(out)))
}
