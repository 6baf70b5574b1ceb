package contact

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pending struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (p *pending) Stop() bool {
	was := !p.stopped
	p.stopped = true
	return was
}

// scheduler records timers and fires them on demand.
type scheduler struct {
	mu     sync.Mutex
	timers []*pending
}

func (s *scheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &pending{d: d, fn: fn}
	s.timers = append(s.timers, p)
	return p
}

// fire runs the oldest timer, stopped or not, and returns its delay.
func (s *scheduler) fire(t *testing.T) time.Duration {
	t.Helper()
	s.mu.Lock()
	require.NotEmpty(t, s.timers, "no pending timer")
	p := s.timers[0]
	s.timers = s.timers[1:]
	s.mu.Unlock()
	p.fn()
	return p.d
}

func (s *scheduler) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func filled() Values {
	return Values{
		Name:        "Priya Raman",
		Email:       "priya@example.com",
		Phone:       "+91 98765 43210",
		Company:     "Raman Events",
		Subject:     "Wedding order",
		Message:     "Need sparklers for 300 guests.",
		InquiryType: "wedding",
		EventDate:   "2025-12-12",
	}
}

func newForm(s *scheduler, onChange func(Snapshot)) *Form {
	return New(Config{
		AfterFunc:    s.AfterFunc,
		NewReference: func() string { return "ref-1" },
		OnChange:     onChange,
	})
}

func TestSubmitLifecycle(t *testing.T) {
	t.Parallel()

	s := &scheduler{}
	var seen []Status
	f := newForm(s, func(snap Snapshot) { seen = append(seen, snap.Status) })
	f.SetValues(filled())
	require.Equal(t, StatusIdle, f.Status())

	snap, ok := f.Submit()
	require.True(t, ok)
	require.Equal(t, StatusSubmitting, snap.Status)
	require.Equal(t, "ref-1", snap.Reference)

	require.Equal(t, DefaultSubmitDelay, s.fire(t))
	require.Equal(t, StatusSubmitted, f.Status())
	require.Equal(t, "Priya Raman", f.Snapshot().Values.Name)

	require.Equal(t, DefaultResetDelay, s.fire(t))
	final := f.Snapshot()
	require.Equal(t, StatusIdle, final.Status)
	require.Equal(t, Values{}, final.Values)
	for _, field := range Fields {
		require.Equal(t, "", final.Values.Get(field))
	}

	require.Equal(t, []Status{StatusSubmitting, StatusSubmitted, StatusIdle}, seen)
	require.Zero(t, s.len())
}

func TestSecondSubmitIgnored(t *testing.T) {
	t.Parallel()

	s := &scheduler{}
	f := newForm(s, nil)
	f.SetValues(filled())
	_, ok := f.Submit()
	require.True(t, ok)
	before := f.Snapshot()

	snap, ok := f.Submit()
	require.False(t, ok)
	require.Equal(t, before, snap)
	require.Equal(t, 1, s.len())

	s.fire(t)
	_, ok = f.Submit()
	require.False(t, ok)
	require.Equal(t, StatusSubmitted, f.Status())
}

func TestFormUsableAfterReset(t *testing.T) {
	t.Parallel()

	s := &scheduler{}
	f := newForm(s, nil)
	f.SetValues(filled())
	f.Submit()
	s.fire(t)
	s.fire(t)

	require.NoError(t, f.Set(FieldName, "Arun"))
	_, ok := f.Submit()
	require.True(t, ok)
}

func TestCloseCancelsTimers(t *testing.T) {
	t.Parallel()

	s := &scheduler{}
	var changes int
	f := newForm(s, func(Snapshot) { changes++ })
	f.SetValues(filled())
	f.Submit()

	f.Close()
	require.Equal(t, StatusIdle, f.Status())
	require.True(t, s.timers[0].stopped)

	s.fire(t)
	require.Equal(t, StatusIdle, f.Status())
	require.Equal(t, 1, changes)
	require.Zero(t, s.len())

	_, ok := f.Submit()
	require.False(t, ok)
	f.Close()
}

func TestConfiguredDelays(t *testing.T) {
	t.Parallel()

	s := &scheduler{}
	f := New(Config{SubmitDelay: 10 * time.Millisecond, ResetDelay: 20 * time.Millisecond, AfterFunc: s.AfterFunc})
	f.Submit()
	require.Equal(t, 10*time.Millisecond, s.fire(t))
	require.Equal(t, 20*time.Millisecond, s.fire(t))
}

func TestRealTimers(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	f := New(Config{
		SubmitDelay: time.Millisecond,
		ResetDelay:  time.Millisecond,
		OnChange: func(snap Snapshot) {
			if snap.Status == StatusIdle {
				close(done)
			}
		},
	})
	f.SetValues(filled())
	snap, ok := f.Submit()
	require.True(t, ok)
	require.NotEmpty(t, snap.Reference)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("form did not return to idle")
	}
	require.Equal(t, Values{}, f.Snapshot().Values)
}

func TestSetUnknownField(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	err := f.Set("fax", "123")
	require.True(t, errors.Is(err, ErrUnknownField))
	require.NoError(t, f.Set(FieldEmail, "a@b.c"))
	require.Equal(t, "a@b.c", f.Snapshot().Values.Email)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	v := filled()
	require.Empty(t, Validate(&v))

	v = Values{Name: "  ", Email: "not-an-email", InquiryType: "party", EventDate: "12/12/2025"}
	errs := Validate(&v)
	require.Equal(t, "", v.Name)
	require.Contains(t, errs, FieldName)
	require.Contains(t, errs, FieldPhone)
	require.Contains(t, errs, FieldSubject)
	require.Contains(t, errs, FieldMessage)
	require.Equal(t, "Enter a valid email address.", errs[FieldEmail])
	require.Equal(t, "Choose an inquiry type.", errs[FieldInquiryType])
	require.Equal(t, "Use the format YYYY-MM-DD.", errs[FieldEventDate])
	require.NotContains(t, errs, FieldCompany)
}
