// Package contact implements the contact form lifecycle:
// idle, submitting, submitted, then back to idle with empty fields.
package contact

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultSubmitDelay = 2000 * time.Millisecond
	DefaultResetDelay  = 5000 * time.Millisecond
)

// ErrUnknownField is returned by Set for names outside Fields.
var ErrUnknownField = errors.New("contact: unknown field")

// Status is the form's lifecycle state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
)

// Field names match the form input names.
type Field string

const (
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldCompany     Field = "company"
	FieldSubject     Field = "subject"
	FieldMessage     Field = "message"
	FieldInquiryType Field = "inquiryType"
	FieldEventDate   Field = "eventDate"
)

// Fields lists every form field in display order.
var Fields = []Field{FieldName, FieldEmail, FieldPhone, FieldCompany, FieldInquiryType, FieldEventDate, FieldSubject, FieldMessage}

// Values holds the field contents.
type Values struct {
	Name        string
	Email       string
	Phone       string
	Company     string
	Subject     string
	Message     string
	InquiryType string
	EventDate   string
}

func (v *Values) field(f Field) (*string, bool) {
	switch f {
	case FieldName:
		return &v.Name, true
	case FieldEmail:
		return &v.Email, true
	case FieldPhone:
		return &v.Phone, true
	case FieldCompany:
		return &v.Company, true
	case FieldSubject:
		return &v.Subject, true
	case FieldMessage:
		return &v.Message, true
	case FieldInquiryType:
		return &v.InquiryType, true
	case FieldEventDate:
		return &v.EventDate, true
	}
	return nil, false
}

// Get returns the value of f, or "" for an unknown field.
func (v Values) Get(f Field) string {
	if p, ok := v.field(f); ok {
		return *p
	}
	return ""
}

// Snapshot is a consistent view of the form.
type Snapshot struct {
	Status      Status
	Values      Values
	Reference   string
	SubmittedAt time.Time
}

// Timer is the handle returned by AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. It matches time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// Config configures a Form. Zero values pick the defaults.
type Config struct {
	SubmitDelay  time.Duration
	ResetDelay   time.Duration
	AfterFunc    AfterFunc
	Now          func() time.Time
	NewReference func() string
	// OnChange runs after every status change with the lock released.
	OnChange func(Snapshot)
}

// Form is one visitor's contact form. Timers are owned by the form and
// cancelled by Close.
type Form struct {
	cfg Config

	mu     sync.Mutex
	snap   Snapshot
	timer  Timer
	gen    uint64
	closed bool
}

// New returns an idle form.
func New(cfg Config) *Form {
	if cfg.SubmitDelay <= 0 {
		cfg.SubmitDelay = DefaultSubmitDelay
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = DefaultResetDelay
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewReference == nil {
		cfg.NewReference = func() string { return uuid.NewString() }
	}
	return &Form{cfg: cfg, snap: Snapshot{Status: StatusIdle}}
}

// Snapshot returns the current state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Status returns the current lifecycle state.
func (f *Form) Status() Status {
	return f.Snapshot().Status
}

// Set updates one field.
func (f *Form) Set(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.snap.Values.field(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	*p = value
	return nil
}

// SetValues replaces every field.
func (f *Form) SetValues(v Values) {
	f.mu.Lock()
	f.snap.Values = v
	f.mu.Unlock()
}

// Submit starts a submission. It reports false and changes nothing unless the
// form is idle and open. Required fields are the caller's concern.
func (f *Form) Submit() (Snapshot, bool) {
	f.mu.Lock()
	if f.closed || f.snap.Status != StatusIdle {
		snap := f.snap
		f.mu.Unlock()
		return snap, false
	}
	f.snap.Status = StatusSubmitting
	f.snap.Reference = f.cfg.NewReference()
	f.snap.SubmittedAt = f.cfg.Now()
	gen := f.gen
	f.timer = f.cfg.AfterFunc(f.cfg.SubmitDelay, func() { f.submitted(gen) })
	snap := f.snap
	f.mu.Unlock()

	f.notify(snap)
	return snap, true
}

func (f *Form) submitted(gen uint64) {
	f.mu.Lock()
	if f.closed || gen != f.gen || f.snap.Status != StatusSubmitting {
		f.mu.Unlock()
		return
	}
	f.snap.Status = StatusSubmitted
	f.timer = f.cfg.AfterFunc(f.cfg.ResetDelay, func() { f.reset(gen) })
	snap := f.snap
	f.mu.Unlock()

	f.notify(snap)
}

func (f *Form) reset(gen uint64) {
	f.mu.Lock()
	if f.closed || gen != f.gen || f.snap.Status != StatusSubmitted {
		f.mu.Unlock()
		return
	}
	f.gen++
	f.timer = nil
	f.snap = Snapshot{Status: StatusIdle}
	snap := f.snap
	f.mu.Unlock()

	f.notify(snap)
}

// Close cancels pending timers and returns the form to idle with empty fields.
// Late timer callbacks and further submissions are ignored.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.gen++
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.snap = Snapshot{Status: StatusIdle}
}

func (f *Form) notify(snap Snapshot) {
	if f.cfg.OnChange != nil {
		f.cfg.OnChange(snap)
	}
}
