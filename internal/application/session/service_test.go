package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/logsentinel/internal/application/alert"
	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
	"github.com/bryanwahyu/logsentinel/internal/domain/history"
)

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{} // when set, Analyze blocks until closed
	res   *analysis.Result
	err   error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	res, err := f.res, f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return res, err
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingEvents struct {
	mu     sync.Mutex
	states []State
	alerts []alert.Alert
}

func (r *recordingEvents) StateChanged(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recordingEvents) AlertRaised(a alert.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func (r *recordingEvents) alertCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

type memHistory struct {
	mu   sync.Mutex
	recs []*history.Record
}

func (m *memHistory) Save(ctx context.Context, rec *history.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memHistory) Paginate(ctx context.Context, page, pageSize int) ([]*history.Record, error) {
	return nil, nil
}

func (m *memHistory) Latest(ctx context.Context) (*history.Record, error) { return nil, nil }

func highResult() *analysis.Result {
	return &analysis.Result{
		RiskScore:          80,
		RiskLevel:          analysis.RiskHigh,
		Summary:            "Brute force attack in progress from 192.168.1.55.",
		Anomalies:          []analysis.Anomaly{{ID: "a-1", EventType: "Brute Force Login", Severity: analysis.RiskHigh}},
		Suggestions:        []analysis.Suggestion{},
		ThreatDistribution: []analysis.ThreatDistributionEntry{},
	}
}

func lowResult() *analysis.Result {
	return &analysis.Result{
		RiskScore:          5,
		RiskLevel:          analysis.RiskLow,
		Summary:            "Nothing unusual.",
		Anomalies:          []analysis.Anomaly{},
		Suggestions:        []analysis.Suggestion{},
		ThreatDistribution: []analysis.ThreatDistributionEntry{},
	}
}

func waitIdle(t *testing.T, s *Service) {
	t.Helper()
	require.Eventually(t, func() bool { return !s.Snapshot().IsAnalyzing }, time.Second, 5*time.Millisecond)
}

func TestInitialState(t *testing.T) {
	s := New(&fakeAnalyzer{}, time.Second, nil)
	st := s.Snapshot()
	assert.Equal(t, ViewUpload, st.ActiveView)
	assert.False(t, st.IsAnalyzing)
	assert.False(t, st.AlertActive)
	assert.Empty(t, st.LastError)
	assert.Equal(t, analysis.RiskLow, st.CurrentResult.RiskLevel)
	assert.Empty(t, st.CurrentResult.Anomalies)
}

func TestSubmit_RejectsConcurrent(t *testing.T) {
	gate := make(chan struct{})
	fa := &fakeAnalyzer{gate: gate, res: lowResult()}
	s := New(fa, time.Second, nil)

	require.NoError(t, s.Submit(analysis.Request{LogText: "x"}))
	assert.ErrorIs(t, s.Submit(analysis.Request{LogText: "y"}), analysis.ErrInFlight)

	close(gate)
	waitIdle(t, s)
	assert.Equal(t, 1, fa.callCount())

	// idle again, a new submission is accepted
	require.NoError(t, s.Submit(analysis.Request{LogText: "z"}))
	waitIdle(t, s)
	assert.Equal(t, 2, fa.callCount())
}

func TestSuccess_TransitionsToDashboardAndAlerts(t *testing.T) {
	fa := &fakeAnalyzer{res: highResult()}
	ev := &recordingEvents{}
	s := New(fa, time.Second, nil)
	s.Events = ev

	require.NoError(t, s.Submit(analysis.Request{LogText: "log"}))
	waitIdle(t, s)

	st := s.Snapshot()
	assert.Equal(t, ViewDashboard, st.ActiveView)
	assert.Equal(t, analysis.RiskHigh, st.CurrentResult.RiskLevel)
	assert.Empty(t, st.LastError)
	assert.True(t, st.AlertActive)

	require.Equal(t, 1, ev.alertCount())
	assert.Equal(t, analysis.RiskHigh, ev.alerts[0].Level)
	assert.Contains(t, ev.alerts[0].Spoken, "Alert. High risk detected.")
}

func TestSuccess_LowRiskNoAlert(t *testing.T) {
	fa := &fakeAnalyzer{res: lowResult()}
	ev := &recordingEvents{}
	s := New(fa, time.Second, nil)
	s.Events = ev

	require.NoError(t, s.Submit(analysis.Request{LogText: "log"}))
	waitIdle(t, s)

	st := s.Snapshot()
	assert.Equal(t, ViewDashboard, st.ActiveView)
	assert.False(t, st.AlertActive)
	assert.Zero(t, ev.alertCount())
}

func TestFailure_KeepsPreviousResultAndView(t *testing.T) {
	fa := &fakeAnalyzer{res: lowResult()}
	s := New(fa, time.Second, nil)

	require.NoError(t, s.Submit(analysis.Request{LogText: "first"}))
	waitIdle(t, s)
	prev := s.Snapshot().CurrentResult

	require.NoError(t, s.SetView(ViewActions))

	fa.mu.Lock()
	fa.res = nil
	fa.err = &analysis.TransportError{StatusCode: 503, Err: errors.New("backend down")}
	fa.mu.Unlock()

	require.NoError(t, s.Submit(analysis.Request{LogText: "second"}))
	waitIdle(t, s)

	st := s.Snapshot()
	assert.Same(t, prev, st.CurrentResult)
	assert.NotEmpty(t, st.LastError)
	assert.Equal(t, ViewActions, st.ActiveView, "failure must not move the view")
}

func TestFailure_FirstAttemptKeepsEmptyResult(t *testing.T) {
	fa := &fakeAnalyzer{err: &analysis.TransportError{Err: errors.New("unreachable")}}
	s := New(fa, time.Second, nil)

	require.NoError(t, s.Submit(analysis.Request{LogText: "x"}))
	waitIdle(t, s)

	st := s.Snapshot()
	assert.Equal(t, analysis.RiskLow, st.CurrentResult.RiskLevel)
	assert.Contains(t, st.LastError, "unreachable")
	assert.Equal(t, ViewUpload, st.ActiveView)
	assert.False(t, st.AlertActive)
}

func TestSubmit_ClearsErrorOnSubmissionNotSuccess(t *testing.T) {
	gate := make(chan struct{})
	fa := &fakeAnalyzer{err: errors.New("boom")}
	s := New(fa, time.Second, nil)

	require.NoError(t, s.Submit(analysis.Request{LogText: "x"}))
	waitIdle(t, s)
	require.NotEmpty(t, s.Snapshot().LastError)

	fa.mu.Lock()
	fa.gate = gate
	fa.err = nil
	fa.res = lowResult()
	fa.mu.Unlock()

	require.NoError(t, s.Submit(analysis.Request{LogText: "y"}))
	assert.Empty(t, s.Snapshot().LastError, "submission itself clears the previous error")
	close(gate)
	waitIdle(t, s)
}

func TestDismissError(t *testing.T) {
	fa := &fakeAnalyzer{err: errors.New("boom")}
	s := New(fa, time.Second, nil)

	require.NoError(t, s.Submit(analysis.Request{LogText: "x"}))
	waitIdle(t, s)
	require.NotEmpty(t, s.Snapshot().LastError)

	s.DismissError()
	st := s.Snapshot()
	assert.Empty(t, st.LastError)
	assert.Equal(t, ViewUpload, st.ActiveView)
}

func TestSetView_RejectsUnknown(t *testing.T) {
	s := New(&fakeAnalyzer{}, time.Second, nil)
	var ie *analysis.InputError
	assert.ErrorAs(t, s.SetView(View("settings")), &ie)
	assert.Equal(t, ViewUpload, s.Snapshot().ActiveView)
}

func TestAlert_AutoClearsAfterWindow(t *testing.T) {
	fa := &fakeAnalyzer{res: highResult()}
	s := New(fa, 50*time.Millisecond, nil)

	require.NoError(t, s.Submit(analysis.Request{LogText: "x"}))
	require.Eventually(t, func() bool { return s.Snapshot().AlertActive }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !s.Snapshot().AlertActive }, time.Second, 5*time.Millisecond)
}

func TestAlert_NewerAlertSupersedesDeadline(t *testing.T) {
	fa := &fakeAnalyzer{res: highResult()}
	s := New(fa, 300*time.Millisecond, nil)

	require.NoError(t, s.Submit(analysis.Request{LogText: "first"}))
	waitIdle(t, s)
	require.True(t, s.Snapshot().AlertActive)

	// second qualifying result ~100ms in restarts the window
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, s.Submit(analysis.Request{LogText: "second"}))
	waitIdle(t, s)

	// past the first deadline but inside the second: still active
	time.Sleep(250 * time.Millisecond)
	assert.True(t, s.Snapshot().AlertActive, "stale timer must not clear a superseding alert")

	require.Eventually(t, func() bool { return !s.Snapshot().AlertActive }, time.Second, 5*time.Millisecond)
}

func TestHistory_RecordedOnSuccess(t *testing.T) {
	fa := &fakeAnalyzer{res: highResult()}
	repo := &memHistory{}
	s := New(fa, time.Second, nil)
	s.History = repo

	require.NoError(t, s.Submit(analysis.Request{LogText: "some log", Images: []analysis.ImageAttachment{{Data: []byte{1}, MIMEType: "image/png"}}}))
	waitIdle(t, s)

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.recs) == 1
	}, time.Second, 5*time.Millisecond)

	repo.mu.Lock()
	rec := repo.recs[0]
	repo.mu.Unlock()
	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.InputDigest)
	assert.Equal(t, 1, rec.ImageCount)
	assert.Equal(t, "High", rec.RiskLevel)
	assert.Contains(t, rec.ResultJSON, "riskScore")
}
