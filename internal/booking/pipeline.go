// Package booking implements the clinic booking form: field collection,
// validation, the submit status machine and the spreadsheet submitters.
package booking

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/internal/observability/metrics"
	"github.com/wolfman30/medibook/pkg/logging"
)

// DefaultRevertDelay is how long Success is shown before the form returns to Idle.
const DefaultRevertDelay = 3 * time.Second

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	RevertDelay time.Duration
	Logger      *logging.Logger
	Metrics     *metrics.BookingMetrics
}

// Outcome describes the result of one submit attempt.
type Outcome struct {
	Status  Status  `json:"status"`
	Missing []Field `json:"missing,omitempty"`
}

// Rejected reports whether validation blocked the attempt.
func (o Outcome) Rejected() bool {
	return len(o.Missing) > 0
}

// State is a point-in-time view of the pipeline.
type State struct {
	Form      Form   `json:"form"`
	Status    Status `json:"status"`
	CanSubmit bool   `json:"canSubmit"`
}

// Pipeline owns one booking form: its values, its status and the delayed
// Success -> Idle revert. A pipeline belongs to a single page; Close tears it
// down and every later collaborator resolution is dropped.
type Pipeline struct {
	submitter   Submitter
	revertDelay time.Duration
	logger      *logging.Logger
	metrics     *metrics.BookingMetrics

	mu        sync.Mutex
	form      Form
	status    Status
	closed    bool
	revert    *time.Timer
	observers []func(Status)

	// notifyMu keeps observer callbacks in transition order.
	notifyMu sync.Mutex
}

// NewPipeline creates an idle pipeline with an empty form.
func NewPipeline(submitter Submitter, cfg PipelineConfig) *Pipeline {
	if submitter == nil {
		panic("booking: submitter cannot be nil")
	}
	if cfg.RevertDelay <= 0 {
		cfg.RevertDelay = DefaultRevertDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Pipeline{
		submitter:   submitter,
		revertDelay: cfg.RevertDelay,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		status:      StatusIdle,
	}
}

// OnStatusChange registers fn to run after every status transition.
// Callbacks must not call back into AttemptSubmit or Close.
func (p *Pipeline) OnStatusChange(fn func(Status)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.observers = append(p.observers, fn)
	p.mu.Unlock()
}

// UpdateField merges one input value into the form. No validation happens here.
func (p *Pipeline) UpdateField(name, value string) error {
	field, err := ParseField(name)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.form.set(field, value)
}

// UpdateFields merges several input values at once. Every name and value is
// checked first; if any is rejected the form is left unchanged.
func (p *Pipeline) UpdateFields(values map[string]string) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	next := p.form
	for _, name := range names {
		field, err := ParseField(name)
		if err != nil {
			return err
		}
		if err := next.set(field, values[name]); err != nil {
			return err
		}
	}
	p.form = next
	return nil
}

// State returns the current form, status and submit affordance.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{Form: p.form, Status: p.status, CanSubmit: p.status.CanSubmit()}
}

// Status returns the current status.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// CanSubmit reports whether the submit action is currently enabled.
func (p *Pipeline) CanSubmit() bool {
	return p.Status().CanSubmit()
}

// AttemptSubmit validates the form and, when every required field is present,
// hands the record to the submitter. It blocks until the submitter resolves.
//
// A rejected attempt returns the missing fields and leaves the status alone.
// Attempts while submitting or just booked return ErrSubmitDisabled.
func (p *Pipeline) AttemptSubmit(ctx context.Context) (Outcome, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if !p.status.CanSubmit() {
		status := p.status
		p.mu.Unlock()
		return Outcome{Status: status}, ErrSubmitDisabled
	}
	if missing := p.form.Missing(); len(missing) > 0 {
		status := p.status
		p.mu.Unlock()
		p.metrics.ObserveRejected(fieldNames(missing))
		p.logger.Info("booking: submit blocked by validation", "missing", strings.Join(fieldNames(missing), ","))
		return Outcome{Status: status, Missing: missing}, nil
	}
	record := p.form
	p.transitionAndNotify(StatusSubmitting)

	start := time.Now()
	err := p.submitter.Submit(ctx, record)
	elapsed := time.Since(start).Seconds()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Debug("booking: dropping resolution for closed pipeline", "success", err == nil)
		return Outcome{}, ErrClosed
	}
	if err != nil {
		p.metrics.ObserveSubmission("error", elapsed)
		p.logger.Warn("booking: submission failed", "error", err)
		p.transitionAndNotify(StatusError)
		return Outcome{Status: StatusError}, nil
	}

	p.metrics.ObserveSubmission("success", elapsed)
	p.logger.Info("booking: submission accepted", "duration_ms", int64(elapsed*1000))
	p.form = Form{}
	p.revert = time.AfterFunc(p.revertDelay, p.revertToIdle)
	p.transitionAndNotify(StatusSuccess)
	return Outcome{Status: StatusSuccess}, nil
}

// Close tears the pipeline down and cancels a pending revert.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.revert != nil {
		p.revert.Stop()
		p.revert = nil
	}
}

func (p *Pipeline) revertToIdle() {
	p.mu.Lock()
	if p.closed || p.status != StatusSuccess {
		p.mu.Unlock()
		return
	}
	p.revert = nil
	p.transitionAndNotify(StatusIdle)
}

// transitionAndNotify must be called with p.mu held; it releases p.mu before
// running observers.
func (p *Pipeline) transitionAndNotify(to Status) {
	if !p.status.canTransition(to) {
		from := p.status
		p.mu.Unlock()
		p.logger.Error("booking: illegal status transition", "from", from.String(), "to", to.String())
		return
	}
	p.status = to
	observers := make([]func(Status), len(p.observers))
	copy(observers, p.observers)

	p.notifyMu.Lock()
	p.mu.Unlock()
	defer p.notifyMu.Unlock()
	for _, fn := range observers {
		fn(to)
	}
}

// ButtonLabel returns the submit button caption for status.
func ButtonLabel(l *i18n.Localizer, status Status) string {
	switch status {
	case StatusSuccess:
		return l.Text(i18n.KeyBooked)
	case StatusSubmitting:
		return l.Text(i18n.KeyLoading)
	case StatusIdle, StatusError:
		return l.Text(i18n.KeyBookBtn)
	default:
		return l.Text(i18n.KeyBookBtn)
	}
}

func fieldNames(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
