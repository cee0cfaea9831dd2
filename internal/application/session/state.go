package session

import (
	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
)

// View enum for the navigation tabs mirrored by the UI.
type View string

const (
	ViewUpload    View = "upload"
	ViewDashboard View = "dashboard"
	ViewActions   View = "actions"
	ViewReports   View = "reports"
)

func (v View) Valid() bool {
	switch v {
	case ViewUpload, ViewDashboard, ViewActions, ViewReports:
		return true
	}
	return false
}

// State is the singleton session snapshot. CurrentResult is immutable once
// produced, so sharing the pointer across snapshots is safe. A result and an
// error can coexist: a failed re-analysis keeps the previous result visible.
type State struct {
	ActiveView    View             `json:"activeView"`
	CurrentResult *analysis.Result `json:"currentResult"`
	IsAnalyzing   bool             `json:"isAnalyzing"`
	LastError     string           `json:"lastError,omitempty"`
	AlertActive   bool             `json:"alertActive"`
}
