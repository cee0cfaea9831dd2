package analysis

// RiskLevel is the ordinal severity classification assigned by the backend.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// riskRank orders levels Low < Medium < High < Critical.
var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Valid reports whether l is one of the four known levels.
func (l RiskLevel) Valid() bool {
	_, ok := riskRank[l]
	return ok
}

// AtLeast reports whether l sits at or above min in the severity order.
// Unknown levels rank below Low.
func (l RiskLevel) AtLeast(min RiskLevel) bool {
	lr, ok := riskRank[l]
	if !ok {
		return false
	}
	return lr >= riskRank[min]
}

// Priority enum for suggestions
type Priority string

const (
	PriorityImmediate Priority = "Immediate"
	PriorityHigh      Priority = "High"
	PriorityNormal    Priority = "Normal"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityImmediate, PriorityHigh, PriorityNormal:
		return true
	}
	return false
}

// SuggestionType enum
type SuggestionType string

const (
	TypeNetwork SuggestionType = "Network"
	TypeSystem  SuggestionType = "System"
	TypePolicy  SuggestionType = "Policy"
)

func (t SuggestionType) Valid() bool {
	switch t {
	case TypeNetwork, TypeSystem, TypePolicy:
		return true
	}
	return false
}

// Anomaly is one suspicious event extracted from the input data.
// Identity is positional within a result; there is no cross-request identity.
type Anomaly struct {
	ID          string    `json:"id"`
	Timestamp   string    `json:"timestamp"` // opaque, display-only
	EventType   string    `json:"eventType"`
	Severity    RiskLevel `json:"severity"`
	Description string    `json:"description"`
	SourceIP    string    `json:"sourceIp,omitempty"`
}

// Suggestion is a recommended mitigation action tied to detected risk.
type Suggestion struct {
	ID       string         `json:"id"`
	Action   string         `json:"action"`
	Reason   string         `json:"reason"`
	Priority Priority       `json:"priority"`
	Type     SuggestionType `json:"type"`
}

// ThreatDistributionEntry is a category label plus a raw magnitude for charts.
// Values are counts/intensities, not percentages; they need not sum to 100.
type ThreatDistributionEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Result is a validated analysis response. Immutable once produced.
type Result struct {
	RiskScore          float64                   `json:"riskScore"`
	RiskLevel          RiskLevel                 `json:"riskLevel"`
	Summary            string                    `json:"summary"`
	Anomalies          []Anomaly                 `json:"anomalies"`
	Suggestions        []Suggestion              `json:"suggestions"`
	ThreatDistribution []ThreatDistributionEntry `json:"threatDistribution"`
}

// EmptyResult is the state before any analysis has run. It carries level Low
// and therefore never qualifies for alerting.
func EmptyResult() *Result {
	return &Result{
		RiskScore:          0,
		RiskLevel:          RiskLow,
		Summary:            "No data analyzed yet. Please upload logs or use sample data.",
		Anomalies:          []Anomaly{},
		Suggestions:        []Suggestion{},
		ThreatDistribution: []ThreatDistributionEntry{},
	}
}

// LevelForScore maps a score onto the canonical band used when score/level
// consistency enforcement is enabled: 0-24 Low, 25-49 Medium, 50-74 High,
// 75-100 Critical.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score < 25:
		return RiskLow
	case score < 50:
		return RiskMedium
	case score < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}
