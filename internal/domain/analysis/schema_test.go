package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBody(t *testing.T, mutate func(m map[string]any)) []byte {
	t.Helper()
	m := map[string]any{
		"riskScore": 82.0,
		"riskLevel": "Critical",
		"summary":   "Brute force followed by an outbound transfer.",
		"anomalies": []any{
			map[string]any{
				"id":          "a-1",
				"timestamp":   "2023-10-27 08:15:30",
				"eventType":   "Brute Force Login",
				"severity":    "Critical",
				"description": "Repeated failed logins before lockout.",
				"sourceIp":    "192.168.1.55",
			},
		},
		"suggestions": []any{
			map[string]any{
				"id":       "s-1",
				"action":   "Block IP 192.168.1.55 at the perimeter",
				"reason":   "Origin of the brute force attempts",
				"priority": "Immediate",
				"type":     "Network",
			},
		},
		"threatDistribution": []any{
			map[string]any{"name": "Auth", "value": 4.0},
			map[string]any{"name": "Network", "value": 2.0},
		},
	}
	if mutate != nil {
		mutate(m)
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func TestParseResult_Valid(t *testing.T) {
	res, err := ParseResult(validBody(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 82.0, res.RiskScore)
	assert.Equal(t, RiskCritical, res.RiskLevel)
	assert.Len(t, res.Anomalies, 1)
	assert.Equal(t, "192.168.1.55", res.Anomalies[0].SourceIP)
	assert.Len(t, res.Suggestions, 1)
	assert.Len(t, res.ThreatDistribution, 2)
}

func TestParseResult_EmptyArraysAccepted(t *testing.T) {
	res, err := ParseResult(validBody(t, func(m map[string]any) {
		m["riskLevel"] = "Low"
		m["riskScore"] = 3.0
		m["anomalies"] = []any{}
		m["suggestions"] = []any{}
		m["threatDistribution"] = []any{}
	}))
	require.NoError(t, err)
	assert.Empty(t, res.Anomalies)
	assert.Empty(t, res.Suggestions)
}

func TestParseResult_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m map[string]any)
		field  string
	}{
		{"missing threatDistribution", func(m map[string]any) { delete(m, "threatDistribution") }, "threatDistribution"},
		{"null anomalies", func(m map[string]any) { m["anomalies"] = nil }, "anomalies"},
		{"missing summary", func(m map[string]any) { delete(m, "summary") }, "summary"},
		{"missing riskScore", func(m map[string]any) { delete(m, "riskScore") }, "riskScore"},
		{"unknown riskLevel", func(m map[string]any) { m["riskLevel"] = "Extreme" }, "riskLevel"},
		{"score above 100", func(m map[string]any) { m["riskScore"] = 140.0 }, "riskScore"},
		{"score below 0", func(m map[string]any) { m["riskScore"] = -1.0 }, "riskScore"},
		{"bad anomaly severity", func(m map[string]any) {
			m["anomalies"].([]any)[0].(map[string]any)["severity"] = "Severe"
		}, "anomalies[0].severity"},
		{"bad suggestion priority", func(m map[string]any) {
			m["suggestions"].([]any)[0].(map[string]any)["priority"] = "Urgent"
		}, "suggestions[0].priority"},
		{"bad suggestion type", func(m map[string]any) {
			m["suggestions"].([]any)[0].(map[string]any)["type"] = "Hardware"
		}, "suggestions[0].type"},
		{"negative distribution value", func(m map[string]any) {
			m["threatDistribution"].([]any)[0].(map[string]any)["value"] = -2.0
		}, "threatDistribution[0].value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseResult(validBody(t, tc.mutate))
			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.field, se.Field)
		})
	}
}

func TestParseResult_MalformedJSON(t *testing.T) {
	_, err := ParseResult([]byte("risk: high, trust me"))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Empty(t, se.Field)
}

func TestParseResult_BlankBody(t *testing.T) {
	for _, body := range []string{"", "   ", "\n\t"} {
		_, err := ParseResult([]byte(body))
		assert.True(t, errors.Is(err, ErrEmptyResponse), "body %q", body)
	}
}

func TestParseResult_StripsCodeFence(t *testing.T) {
	fenced := "```json\n" + string(validBody(t, nil)) + "\n```"
	res, err := ParseResult([]byte(fenced))
	require.NoError(t, err)
	assert.Equal(t, RiskCritical, res.RiskLevel)
}

func TestResult_RoundTrip(t *testing.T) {
	t.Run("sourceIp present", func(t *testing.T) {
		orig, err := ParseResult(validBody(t, nil))
		require.NoError(t, err)
		b, err := json.Marshal(orig)
		require.NoError(t, err)
		back, err := ParseResult(b)
		require.NoError(t, err)
		assert.Equal(t, orig, back)
	})

	t.Run("sourceIp absent", func(t *testing.T) {
		orig, err := ParseResult(validBody(t, func(m map[string]any) {
			delete(m["anomalies"].([]any)[0].(map[string]any), "sourceIp")
		}))
		require.NoError(t, err)
		assert.Empty(t, orig.Anomalies[0].SourceIP)

		b, err := json.Marshal(orig)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "sourceIp")

		back, err := ParseResult(b)
		require.NoError(t, err)
		assert.Equal(t, orig, back)
	})
}

func TestLevelForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0, RiskLow}, {24.9, RiskLow},
		{25, RiskMedium}, {49, RiskMedium},
		{50, RiskHigh}, {74.5, RiskHigh},
		{75, RiskCritical}, {100, RiskCritical},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelForScore(tc.score), "score %v", tc.score)
	}
}

func TestCheckScoreLevel(t *testing.T) {
	res, err := ParseResult(validBody(t, nil))
	require.NoError(t, err)
	assert.NoError(t, CheckScoreLevel(res))

	res.RiskLevel = RiskLow
	var se *SchemaError
	assert.ErrorAs(t, CheckScoreLevel(res), &se)
}

func TestRiskLevelOrdering(t *testing.T) {
	assert.True(t, RiskCritical.AtLeast(RiskHigh))
	assert.True(t, RiskHigh.AtLeast(RiskHigh))
	assert.False(t, RiskMedium.AtLeast(RiskHigh))
	assert.False(t, RiskLevel("Extreme").AtLeast(RiskLow))
}
