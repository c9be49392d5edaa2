package contact

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	DefaultSuccessDelay = 5 * time.Second
	DefaultTypingIdle   = time.Second
)

var (
	ErrBusy   = errors.New("a submission is already in flight")
	ErrClosed = errors.New("contact form closed")
)

// Outcome is the result of a submit attempt that was not refused outright.
type Outcome int

const (
	OutcomeInvalid Outcome = iota
	OutcomeDelivered
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeFallback:
		return "fallback"
	}
	return "unknown"
}

// State is the lifecycle position of a form.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	}
	return "unknown"
}

// View is a snapshot of a form for rendering.
type View struct {
	Submission       Submission
	Errors           Errors
	Loading          bool
	Success          bool
	Typing           bool
	CharCount        int
	MinMessageLength int
	MailtoURI        string
	State            State
}

// Options configures a Form. Zero values select the defaults.
type Options struct {
	MailtoAddress string
	SuccessDelay  time.Duration
	TypingIdle    time.Duration
	Logger        *zap.Logger
}

// Form owns one visitor's contact submission: field state, validation,
// delivery through the relay and the mailto fallback.
type Form struct {
	validator *Validator
	relay     Relay
	launcher  Launcher
	opts      Options
	log       *zap.Logger

	mu         sync.Mutex
	sub        Submission
	errs       Errors
	loading    bool
	success    bool
	typing     bool
	charCount  int
	mailto     string
	closed     bool
	lastActive time.Time

	successTimer *time.Timer
	successGen   uint64
	typingTimer  *time.Timer
	typingGen    uint64
}

// NewForm creates an empty form in the Idle state.
func NewForm(v *Validator, relay Relay, launcher Launcher, opts Options) *Form {
	if opts.SuccessDelay <= 0 {
		opts.SuccessDelay = DefaultSuccessDelay
	}
	if opts.TypingIdle <= 0 {
		opts.TypingIdle = DefaultTypingIdle
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if launcher == nil {
		launcher = LauncherFunc(func(context.Context, string) error { return nil })
	}
	return &Form{
		validator:  v,
		relay:      relay,
		launcher:   launcher,
		opts:       opts,
		log:        log.With(zap.String("component", "contact_form")),
		errs:       Errors{},
		lastActive: time.Now(),
	}
}

// UpdateField sets one field. Validation is not run.
func (f *Form) UpdateField(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.loading {
		return ErrBusy
	}
	if err := f.sub.Set(field, value); err != nil {
		return err
	}
	f.lastActive = time.Now()

	if field == FieldMessage {
		f.charCount = utf8.RuneCountInString(value)
		f.typing = true
		f.scheduleTypingClearLocked()
	}
	return nil
}

// Validate checks the current submission without recording the result.
func (f *Form) Validate() Errors {
	f.mu.Lock()
	sub := f.sub
	f.mu.Unlock()
	return f.validator.Validate(sub)
}

// Submit validates the current submission and, when valid, delivers it.
// A submit while another is in flight returns ErrBusy without touching the relay.
func (f *Form) Submit(ctx context.Context) (View, Outcome, error) {
	return f.submit(ctx, nil)
}

// SubmitWith replaces every field with s and submits, as one step: a
// concurrent submit can neither overwrite s nor have its values sent under it.
func (f *Form) SubmitWith(ctx context.Context, s Submission) (View, Outcome, error) {
	return f.submit(ctx, &s)
}

func (f *Form) submit(ctx context.Context, replace *Submission) (view View, outcome Outcome, err error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return View{}, OutcomeInvalid, ErrClosed
	}
	if f.loading {
		view = f.viewLocked()
		f.mu.Unlock()
		return view, OutcomeInvalid, ErrBusy
	}
	if replace != nil {
		f.sub = *replace
		f.charCount = utf8.RuneCountInString(f.sub.Message)
	}

	f.lastActive = time.Now()
	f.mailto = ""
	f.errs = f.validator.Validate(f.sub)
	if len(f.errs) > 0 {
		f.success = false
		f.cancelSuccessLocked()
		view = f.viewLocked()
		f.mu.Unlock()
		return view, OutcomeInvalid, nil
	}

	f.loading = true
	f.success = false
	f.cancelSuccessLocked()
	sub := f.sub
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.loading = false
		view = f.viewLocked()
		f.mu.Unlock()
	}()

	sendErr := f.relay.Send(ctx, sub)
	if sendErr == nil {
		f.mu.Lock()
		f.sub = Submission{}
		f.charCount = 0
		f.typing = false
		f.cancelTypingLocked()
		f.success = true
		f.scheduleSuccessClearLocked()
		f.mu.Unlock()

		f.log.Info("contact submission delivered")
		return view, OutcomeDelivered, nil
	}

	f.log.Warn("contact relay failed, falling back to mail client", zap.Error(sendErr))

	uri := MailtoURI(f.opts.MailtoAddress, sub)
	if err := f.launcher.Launch(ctx, uri); err != nil {
		f.log.Warn("mail client launch failed", zap.Error(err))
	}

	f.mu.Lock()
	f.mailto = uri
	f.mu.Unlock()
	return view, OutcomeFallback, nil
}

// View returns the current snapshot.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// State returns the lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

// Loading reports whether a submission is in flight.
func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Close cancels pending timers. The form rejects further use.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.cancelSuccessLocked()
	f.cancelTypingLocked()
}

// idleSince reports whether the form has been untouched since cutoff and is not sending.
func (f *Form) idleSince(cutoff time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.loading && f.lastActive.Before(cutoff)
}

func (f *Form) viewLocked() View {
	errs := make(Errors, len(f.errs))
	for k, v := range f.errs {
		errs[k] = v
	}
	return View{
		Submission:       f.sub,
		Errors:           errs,
		Loading:          f.loading,
		Success:          f.success,
		Typing:           f.typing,
		CharCount:        f.charCount,
		MinMessageLength: f.validator.MinMessageLength(),
		MailtoURI:        f.mailto,
		State:            f.stateLocked(),
	}
}

func (f *Form) stateLocked() State {
	switch {
	case f.loading:
		return StateSubmitting
	case f.success:
		return StateSuccess
	case !f.sub.IsEmpty() || len(f.errs) > 0 || f.mailto != "":
		return StateEditing
	}
	return StateIdle
}

// Timers carry a generation so a callback that lost the race with a
// reschedule or Close does nothing.

func (f *Form) scheduleSuccessClearLocked() {
	f.cancelSuccessLocked()
	if f.closed {
		return
	}
	gen := f.successGen
	f.successTimer = time.AfterFunc(f.opts.SuccessDelay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed || gen != f.successGen {
			return
		}
		f.success = false
	})
}

func (f *Form) cancelSuccessLocked() {
	f.successGen++
	if f.successTimer != nil {
		f.successTimer.Stop()
		f.successTimer = nil
	}
}

func (f *Form) scheduleTypingClearLocked() {
	f.cancelTypingLocked()
	if f.closed {
		return
	}
	gen := f.typingGen
	f.typingTimer = time.AfterFunc(f.opts.TypingIdle, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed || gen != f.typingGen {
			return
		}
		f.typing = false
	})
}

func (f *Form) cancelTypingLocked() {
	f.typingGen++
	if f.typingTimer != nil {
		f.typingTimer.Stop()
		f.typingTimer = nil
	}
}
