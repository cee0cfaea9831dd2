package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/logsentinel/internal/application/alert"
	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
	"github.com/bryanwahyu/logsentinel/internal/domain/faults"
	"github.com/bryanwahyu/logsentinel/internal/domain/history"
	"github.com/bryanwahyu/logsentinel/internal/report"
)

// Events receives state transitions for fan-out to connected UIs. All calls
// happen after the transition is committed; implementations must not block.
type Events interface {
	StateChanged(st State)
	AlertRaised(a alert.Alert)
}

// Archiver stores submitted inputs and the rendered report for an analysis,
// keyed by its record id.
type Archiver interface {
	ArchiveInput(ctx context.Context, id string, req analysis.Request) error
	ArchiveReport(ctx context.Context, id string, csvData []byte) error
}

// Service is the session state machine. It is the single writer of State;
// every mutation goes through a transition method behind the mutex. At most
// one analysis is in flight at a time.
type Service struct {
	Analyzer analysis.Analyzer
	Clock    Clock
	Log      *zap.Logger

	// optional collaborators, nil-safe
	Events  Events
	History history.Repository
	Faults  faults.Repository
	Archive Archiver

	// AlertWindow is how long AlertActive stays set before auto-clearing.
	AlertWindow time.Duration

	mu       sync.Mutex
	st       State
	alertGen uint64 // invalidates stale auto-clear timers
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// New returns a machine in the initial state: upload view, empty result.
func New(analyzer analysis.Analyzer, window time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Analyzer:    analyzer,
		Clock:       SystemClock{},
		Log:         log,
		AlertWindow: window,
		st: State{
			ActiveView:    ViewUpload,
			CurrentResult: analysis.EmptyResult(),
		},
	}
}

// Snapshot returns the current state. The embedded result pointer is shared;
// results are immutable by contract.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Submit starts one analysis in the background. A second submission while one
// is in flight is rejected with analysis.ErrInFlight; nothing is queued.
// Submitting clears the previous error immediately, so a failure message is
// visible exactly until the next attempt begins.
//
// The machine does not second-guess the request: an empty request reaching
// this point is sent as-is. Non-triviality is the caller's precondition.
func (s *Service) Submit(req analysis.Request) error {
	s.mu.Lock()
	if s.st.IsAnalyzing {
		s.mu.Unlock()
		return analysis.ErrInFlight
	}
	s.st.IsAnalyzing = true
	s.st.LastError = ""
	st := s.st
	s.mu.Unlock()
	s.publishState(st)

	// Run detached from the caller's context: once issued, the call runs to
	// completion or failure. There is no cancellation contract.
	go s.run(req)
	return nil
}

func (s *Service) run(req analysis.Request) {
	ctx := context.Background()
	res, err := s.Analyzer.Analyze(ctx, req)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.succeed(ctx, req, res)
}

// fail leaves the previous result untouched and the view where it was.
func (s *Service) fail(ctx context.Context, err error) {
	s.mu.Lock()
	s.st.IsAnalyzing = false
	s.st.LastError = err.Error()
	st := s.st
	s.mu.Unlock()

	s.Log.Warn("analysis failed", zap.String("stage", string(stageFor(err))), zap.Error(err))
	s.publishState(st)
	s.recordFault(ctx, err)
}

func (s *Service) succeed(ctx context.Context, req analysis.Request, res *analysis.Result) {
	var raised *alert.Alert

	s.mu.Lock()
	s.st.IsAnalyzing = false
	s.st.LastError = ""
	s.st.CurrentResult = res
	// A successful analysis always lands on the dashboard, wherever the
	// user navigated meanwhile.
	s.st.ActiveView = ViewDashboard
	if alert.ShouldAlert(res.RiskLevel) {
		s.st.AlertActive = true
		s.alertGen++
		gen := s.alertGen
		a := alert.Build(res)
		raised = &a
		time.AfterFunc(s.AlertWindow, func() { s.clearAlert(gen) })
	}
	st := s.st
	s.mu.Unlock()

	s.Log.Info("analysis complete",
		zap.Float64("risk_score", res.RiskScore),
		zap.String("risk_level", string(res.RiskLevel)),
		zap.Int("anomalies", len(res.Anomalies)),
	)
	s.publishState(st)
	if raised != nil && s.Events != nil {
		s.Events.AlertRaised(*raised)
	}
	s.recordHistory(ctx, req, res)
}

// clearAlert drops the alert flag once the window elapses. A newer alert bumps
// the generation, so a stale timer firing late is a no-op.
func (s *Service) clearAlert(gen uint64) {
	s.mu.Lock()
	if gen != s.alertGen || !s.st.AlertActive {
		s.mu.Unlock()
		return
	}
	s.st.AlertActive = false
	st := s.st
	s.mu.Unlock()
	s.publishState(st)
}

// DismissError clears the error message only; nothing else moves.
func (s *Service) DismissError() {
	s.mu.Lock()
	s.st.LastError = ""
	st := s.st
	s.mu.Unlock()
	s.publishState(st)
}

// SetView is free navigation, allowed at any time regardless of analysis
// status.
func (s *Service) SetView(v View) error {
	if !v.Valid() {
		return &analysis.InputError{Reason: "unknown view: " + string(v)}
	}
	s.mu.Lock()
	s.st.ActiveView = v
	st := s.st
	s.mu.Unlock()
	s.publishState(st)
	return nil
}

func (s *Service) publishState(st State) {
	if s.Events != nil {
		s.Events.StateChanged(st)
	}
}

// recordHistory persists the validated result for auditing; best-effort, the
// session state is already committed.
func (s *Service) recordHistory(ctx context.Context, req analysis.Request, res *analysis.Result) {
	id := uuid.New().String()

	if s.Archive != nil {
		if err := s.Archive.ArchiveInput(ctx, id, req); err != nil {
			s.Log.Warn("input archive failed", zap.String("id", id), zap.Error(err))
		}
		if csvData, err := report.AnomaliesCSV(res); err == nil {
			if err := s.Archive.ArchiveReport(ctx, id, csvData); err != nil {
				s.Log.Warn("report archive failed", zap.String("id", id), zap.Error(err))
			}
		}
	}

	if s.History == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		s.Log.Warn("history marshal failed", zap.Error(err))
		return
	}
	digest := sha256.Sum256([]byte(req.LogText))
	rec := &history.Record{
		ID:          history.RecordID(id),
		InputDigest: hex.EncodeToString(digest[:]),
		ImageCount:  len(req.Images),
		RiskScore:   res.RiskScore,
		RiskLevel:   string(res.RiskLevel),
		ResultJSON:  string(raw),
		CreatedAt:   s.Clock.Now(),
	}
	if err := s.History.Save(ctx, rec); err != nil {
		s.Log.Warn("history save failed", zap.String("id", id), zap.Error(err))
	}
}

func (s *Service) recordFault(ctx context.Context, err error) {
	if s.Faults == nil {
		return
	}
	f := &faults.Fault{
		Stage:     stageFor(err),
		Message:   err.Error(),
		CreatedAt: s.Clock.Now(),
	}
	if serr := s.Faults.Save(ctx, f); serr != nil {
		s.Log.Warn("fault save failed", zap.Error(serr))
	}
}

func stageFor(err error) faults.Stage {
	var (
		inputErr     *analysis.InputError
		transportErr *analysis.TransportError
		schemaErr    *analysis.SchemaError
	)
	switch {
	case errors.As(err, &inputErr):
		return faults.StageInput
	case errors.As(err, &transportErr):
		return faults.StageTransport
	case errors.Is(err, analysis.ErrEmptyResponse):
		return faults.StageEmpty
	case errors.As(err, &schemaErr):
		return faults.StageSchema
	default:
		return faults.StageTransport
	}
}
