package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// envelope mirrors Result with pointer fields so that a missing top-level
// field can be told apart from a present-but-empty one. Array fields may be
// empty but must be present; null counts as missing.
type envelope struct {
	RiskScore          *float64                   `json:"riskScore"`
	RiskLevel          *RiskLevel                 `json:"riskLevel"`
	Summary            *string                    `json:"summary"`
	Anomalies          *[]Anomaly                 `json:"anomalies"`
	Suggestions        *[]Suggestion              `json:"suggestions"`
	ThreatDistribution *[]ThreatDistributionEntry `json:"threatDistribution"`
}

// ParseResult validates a raw backend response against the result contract
// and returns a typed Result. It rejects rather than coerces: any missing
// field, unknown enum value, or out-of-range score fails with *SchemaError.
// A blank body fails with ErrEmptyResponse.
//
// Out-of-range riskScore is rejected, not clamped. The contract treats the
// range as part of the schema, so a backend that cannot stay inside [0,100]
// is not trusted on the rest of the payload either.
func ParseResult(raw []byte) (*Result, error) {
	cleaned := stripFences(raw)
	if len(bytes.TrimSpace(cleaned)) == 0 {
		return nil, ErrEmptyResponse
	}

	var env envelope
	if err := json.Unmarshal(cleaned, &env); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("not parseable as JSON: %v", err)}
	}

	switch {
	case env.RiskScore == nil:
		return nil, &SchemaError{Field: "riskScore", Reason: "missing"}
	case env.RiskLevel == nil:
		return nil, &SchemaError{Field: "riskLevel", Reason: "missing"}
	case env.Summary == nil:
		return nil, &SchemaError{Field: "summary", Reason: "missing"}
	case env.Anomalies == nil:
		return nil, &SchemaError{Field: "anomalies", Reason: "missing"}
	case env.Suggestions == nil:
		return nil, &SchemaError{Field: "suggestions", Reason: "missing"}
	case env.ThreatDistribution == nil:
		return nil, &SchemaError{Field: "threatDistribution", Reason: "missing"}
	}

	if !env.RiskLevel.Valid() {
		return nil, &SchemaError{Field: "riskLevel", Reason: fmt.Sprintf("unknown level %q", *env.RiskLevel)}
	}
	if *env.RiskScore < 0 || *env.RiskScore > 100 {
		return nil, &SchemaError{Field: "riskScore", Reason: fmt.Sprintf("%v outside [0,100]", *env.RiskScore)}
	}

	for i, a := range *env.Anomalies {
		if !a.Severity.Valid() {
			return nil, &SchemaError{
				Field:  fmt.Sprintf("anomalies[%d].severity", i),
				Reason: fmt.Sprintf("unknown level %q", a.Severity),
			}
		}
	}
	for i, s := range *env.Suggestions {
		if !s.Priority.Valid() {
			return nil, &SchemaError{
				Field:  fmt.Sprintf("suggestions[%d].priority", i),
				Reason: fmt.Sprintf("unknown priority %q", s.Priority),
			}
		}
		if !s.Type.Valid() {
			return nil, &SchemaError{
				Field:  fmt.Sprintf("suggestions[%d].type", i),
				Reason: fmt.Sprintf("unknown type %q", s.Type),
			}
		}
	}
	for i, e := range *env.ThreatDistribution {
		if e.Value < 0 {
			return nil, &SchemaError{
				Field:  fmt.Sprintf("threatDistribution[%d].value", i),
				Reason: fmt.Sprintf("negative magnitude %v", e.Value),
			}
		}
	}

	return &Result{
		RiskScore:          *env.RiskScore,
		RiskLevel:          *env.RiskLevel,
		Summary:            *env.Summary,
		Anomalies:          *env.Anomalies,
		Suggestions:        *env.Suggestions,
		ThreatDistribution: *env.ThreatDistribution,
	}, nil
}

// CheckScoreLevel enforces the canonical score band for the level. Off by
// default: the backend sets score and level independently, and the default
// policy trusts its judgement on both.
func CheckScoreLevel(r *Result) error {
	if want := LevelForScore(r.RiskScore); want != r.RiskLevel {
		return &SchemaError{
			Field:  "riskLevel",
			Reason: fmt.Sprintf("level %q inconsistent with score %v (expected %q)", r.RiskLevel, r.RiskScore, want),
		}
	}
	return nil
}

// stripFences removes a markdown code fence wrapper if the model added one
// despite the JSON response mode.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(s)
}
