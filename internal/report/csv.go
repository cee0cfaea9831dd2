// Package report renders already-validated analysis results for export.
package report

import (
	"bytes"
	"encoding/csv"

	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
)

var csvHeader = []string{"Timestamp", "EventType", "Severity", "Description", "SourceIP"}

// AnomaliesCSV renders the anomaly table of a result as CSV. A missing source
// IP renders as N/A. Pure formatting over validated data; no extra contract.
func AnomaliesCSV(res *analysis.Result) ([]byte, error) {
	if res == nil {
		res = analysis.EmptyResult()
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, a := range res.Anomalies {
		ip := a.SourceIP
		if ip == "" {
			ip = "N/A"
		}
		if err := w.Write([]string{a.Timestamp, a.EventType, string(a.Severity), a.Description, ip}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
