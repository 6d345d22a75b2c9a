package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/daniel5812/brain-dump-server/internal/action"
	"github.com/daniel5812/brain-dump-server/internal/calendar"
	"github.com/daniel5812/brain-dump-server/internal/followup"
	"github.com/daniel5812/brain-dump-server/internal/intent"
	"github.com/daniel5812/brain-dump-server/internal/messages"
	"github.com/daniel5812/brain-dump-server/internal/observe"
	"github.com/daniel5812/brain-dump-server/internal/tasks"
)

var testNow = time.Date(2026, time.January, 21, 12, 0, 0, 0, time.Local)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, userID, message string) error {
	f.sent = append(f.sent, message)
	return f.err
}

type fakeTasks struct {
	created []action.CreateTask
	err     error
}

func (f *fakeTasks) Create(ctx context.Context, userID, title, due string) error {
	f.created = append(f.created, action.CreateTask{Title: title, Due: due})
	return f.err
}

type fakeCalendar struct {
	created []action.CreateMeeting
	err     error
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, userID, title, start, end string) error {
	f.created = append(f.created, action.CreateMeeting{Title: title, Start: start, End: end})
	return f.err
}

// metricsForTest returns a Metrics instance backed by a ManualReader so tests
// can inspect what the executor recorded.
func metricsForTest(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// counterValue sums the data points of a counter that carry the given
// attribute value.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name, attrKey, attrVal string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is not a sum", name)
			}
			for _, dp := range sum.DataPoints {
				for _, kv := range dp.Attributes.ToSlice() {
					if string(kv.Key) == attrKey && kv.Value.AsString() == attrVal {
						total += dp.Value
					}
				}
			}
		}
	}
	return total
}

func TestExecuteMeetingPlan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sender := &fakeSender{}
	cal := &fakeCalendar{}
	e := New(sender, &fakeTasks{}, cal, followup.NewMemStore(0))

	plan := action.Plan{Actions: []action.Action{
		action.CreateMeeting{Title: "פגישה עם דני", Start: "2026-01-22T18:00:00", End: "2026-01-22T19:00:00"},
		action.SendMessage{Message: messages.MeetingScheduled("פגישה עם דני")},
	}}

	if err := e.Execute(ctx, "972501234567", plan); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(cal.created) != 1 || cal.created[0].Start != "2026-01-22T18:00:00" {
		t.Fatalf("calendar calls = %+v", cal.created)
	}
	if len(sender.sent) != 1 || sender.sent[0] != messages.MeetingScheduled("פגישה עם דני") {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestExecuteStopsAfterFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sender := &fakeSender{}
	e := New(sender, &fakeTasks{err: tasks.ErrNotConfigured}, &fakeCalendar{}, followup.NewMemStore(0))

	plan := action.Plan{Actions: []action.Action{
		action.CreateTask{Title: "משימה"},
		action.SendMessage{Message: messages.TaskCreated("משימה", "")},
	}}

	if err := e.Execute(ctx, "972501234567", plan); err == nil {
		t.Fatal("Execute should surface the task failure")
	}

	// Onboarding instructions replace the confirmation message.
	if len(sender.sent) != 1 || sender.sent[0] != messages.TodoistNotConfigured {
		t.Fatalf("sent = %v, want only the onboarding message", sender.sent)
	}
}

func TestExecuteCalendarNotConfigured(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sender := &fakeSender{}
	e := New(sender, &fakeTasks{}, &fakeCalendar{err: calendar.ErrNotConfigured}, followup.NewMemStore(0))

	plan := action.Plan{Actions: []action.Action{
		action.CreateMeeting{Title: "פגישה", Start: "2026-01-22T18:00:00", End: "2026-01-22T19:00:00"},
	}}

	if err := e.Execute(ctx, "972501234567", plan); err == nil {
		t.Fatal("Execute should surface the calendar failure")
	}
	if len(sender.sent) != 1 || sender.sent[0] != messages.CalendarNotConfigured {
		t.Fatalf("sent = %v, want the onboarding message", sender.sent)
	}
}

func TestExecuteRequestFollowup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sender := &fakeSender{}
	pending := followup.NewMemStore(0)
	e := New(sender, &fakeTasks{}, &fakeCalendar{}, pending,
		WithClock(func() time.Time { return testNow }))

	plan := action.Plan{Actions: []action.Action{
		action.RequestFollowup{
			IntentType: intent.HypothesisMeeting,
			Title:      "פגישה עם דני",
			Missing:    intent.NeedTime,
			Context:    "מחר",
			Question:   messages.QuestionFor(intent.NeedTime),
		},
	}}

	if err := e.Execute(ctx, "972501234567", plan); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	p, ok, err := pending.Get(ctx, "972501234567")
	if err != nil || !ok {
		t.Fatalf("pending Get = %v, %v", ok, err)
	}
	if p.Title != "פגישה עם דני" || p.Missing != intent.NeedTime || p.RawTimeExpression != "מחר" {
		t.Fatalf("pending = %+v", p)
	}
	if !p.CreatedAt.Equal(testNow) {
		t.Fatalf("CreatedAt = %v", p.CreatedAt)
	}
	if len(sender.sent) != 1 || sender.sent[0] != messages.QuestionFor(intent.NeedTime) {
		t.Fatalf("sent = %v", sender.sent)
	}
}

func TestExecuteRecordsCounters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	met, reader := metricsForTest(t)
	sender := &fakeSender{}
	e := New(sender, &fakeTasks{}, &fakeCalendar{}, followup.NewMemStore(0),
		WithMetrics(met))

	plan := action.Plan{Actions: []action.Action{
		action.CreateTask{Title: "משימה", Due: "2026-01-22T08:00:00"},
		action.SendMessage{Message: messages.TaskCreated("משימה", "2026-01-22T08:00:00")},
	}}
	if err := e.Execute(ctx, "972501234567", plan); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := counterValue(t, reader, "braindump.integration.requests", "integration", "todoist"); got != 1 {
		t.Errorf("todoist requests = %d, want 1", got)
	}
	if got := counterValue(t, reader, "braindump.messages.sent", "status", "ok"); got != 1 {
		t.Errorf("messages sent = %d, want 1", got)
	}
}

func TestExecuteRecordsIntegrationFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	met, reader := metricsForTest(t)
	e := New(&fakeSender{}, &fakeTasks{}, &fakeCalendar{err: errors.New("api down")},
		followup.NewMemStore(0), WithMetrics(met))

	plan := action.Plan{Actions: []action.Action{
		action.CreateMeeting{Title: "פגישה", Start: "2026-01-22T18:00:00", End: "2026-01-22T19:00:00"},
	}}
	if err := e.Execute(ctx, "972501234567", plan); err == nil {
		t.Fatal("Execute should surface the calendar failure")
	}

	if got := counterValue(t, reader, "braindump.integration.requests", "status", "error"); got != 1 {
		t.Errorf("failed integration requests = %d, want 1", got)
	}
	if got := counterValue(t, reader, "braindump.messages.sent", "status", "ok"); got != 0 {
		t.Errorf("messages sent = %d, want none after an aborted plan", got)
	}
}

func TestExecuteSaveIdea(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sender := &fakeSender{}
	e := New(sender, &fakeTasks{}, &fakeCalendar{}, followup.NewMemStore(0))

	plan := action.Plan{Actions: []action.Action{
		action.SaveIdea{Title: "רעיון"},
		action.SendMessage{Message: messages.IdeaSaved("רעיון")},
	}}

	if err := e.Execute(ctx, "972501234567", plan); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v", sender.sent)
	}
}
