// Package orchestrator drives the conversational configuration loop: one
// Handle call per user turn, serialized per session, every mutation committed
// atomically or not at all.
//
// A turn loads (or creates) the session, classifies explicit keyword intents,
// consults the extractor, folds updates into the master record, searches the
// catalogue under the cart's compatibility constraint and routes the outcome
// through the composer. Categorized port failures render as user prompts;
// only the session-busy signal escapes to the transport as an error.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/catalog"
	"github.com/beedev/recommenderv2/configurator/compose"
	"github.com/beedev/recommenderv2/configurator/events"
	"github.com/beedev/recommenderv2/configurator/extract"
	"github.com/beedev/recommenderv2/configurator/store"
	"github.com/beedev/recommenderv2/configurator/telemetry"
)

type (
	// Extractor is the language-model port consulted once per turn.
	Extractor interface {
		Extract(ctx context.Context, in extract.Input) (extract.Outcome, error)
	}

	// Orchestrator is the sole mutator of session state.
	//
	// Contract:
	// - Mutations to one session id are serialized through the locker; a
	//   turn that cannot take the lock returns store.ErrSessionBusy.
	// - Either the whole turn persists or nothing does: the pipeline works
	//   on a clone and writes it back only after Verify passes.
	// - Every categorized port failure is rendered as a composed prompt;
	//   no internal error text reaches the user.
	Orchestrator struct {
		store   *store.Store
		locker  store.Locker
		repo    catalog.Repository
		extract Extractor
		compose *compose.Composer
		events  events.Publisher
		applic  *configurator.ApplicabilityTable
		logger  telemetry.Logger
		metrics telemetry.Metrics
		tracer  telemetry.Tracer

		minReal    int
		autoCommit float64
		askConfirm float64
		replaceBag bool

		turnBudget    time.Duration
		extractBudget time.Duration
		graphBudget   time.Duration

		now   func() time.Time
		newID func() string
	}

	// Options configures New.
	Options struct {
		// Store is the session store. Required.
		Store *store.Store

		// Locker serializes turns per session id. Required.
		Locker store.Locker

		// Repository is the product catalogue port. Required.
		Repository catalog.Repository

		// Extractor is the language-model port. Required.
		Extractor Extractor

		// Composer renders every user-visible message. Required.
		Composer *compose.Composer

		// Events receives lifecycle events, best-effort. Optional.
		Events events.Publisher

		// Applicability resolves power-source GINs to their component
		// applicability. Optional; nil treats every kind as applicable.
		Applicability *configurator.ApplicabilityTable

		// Logger, Metrics and Tracer default to no-ops.
		Logger  telemetry.Logger
		Metrics telemetry.Metrics
		Tracer  telemetry.Tracer

		// MinRealComponents is the finalization threshold. Zero means
		// DefaultMinRealComponents.
		MinRealComponents int

		// AutoCommitConfidence is the extractor confidence at or above
		// which a unique direct-mention match commits without asking.
		// Zero means DefaultAutoCommitConfidence.
		AutoCommitConfidence float64

		// ConfirmConfidence is the confidence below which even a unique
		// match is presented as a plain option list. Zero means
		// DefaultConfirmConfidence.
		ConfirmConfidence float64

		// ReplaceBagOnMention drops previously accumulated attributes for
		// a kind when the user names a product of that kind directly. The
		// default keeps them and lets the selected product enrich the bag.
		ReplaceBagOnMention bool

		// TurnDeadline bounds the whole turn; ExtractDeadline the model
		// call; GraphDeadline each catalogue query. Zero means the
		// package default, negative disables the bound.
		TurnDeadline    time.Duration
		ExtractDeadline time.Duration
		GraphDeadline   time.Duration

		// Now and NewID exist for tests. Defaults: time.Now and uuid.
		Now   func() time.Time
		NewID func() string
	}

	// Request is one user turn.
	Request struct {
		// SessionID resumes an existing session. Empty starts a new one.
		SessionID string
		// Message is the user's utterance.
		Message string
		// Language switches the session's reply language when non-empty.
		Language string
		// Reset discards the session and starts fresh under the same id.
		Reset bool
	}

	// Option is one presented candidate, numbered for rank selection.
	Option struct {
		Rank        int
		GIN         string
		Name        string
		Description string
	}

	// Response is the turn outcome the transport serializes.
	Response struct {
		SessionID string
		State     configurator.State
		Message   string
		Options   []Option
		Cart      configurator.Cart
		Master    configurator.MasterRecord
		Completed bool
	}
)

// Defaults for the deployment knobs. The finalization threshold and the
// confidence cutoffs are deliberately configuration, not constants of the
// domain.
const (
	DefaultMinRealComponents    = 1
	DefaultAutoCommitConfidence = 0.8
	DefaultConfirmConfidence    = 0.5
	DefaultTurnDeadline         = 30 * time.Second
	DefaultExtractDeadline      = 10 * time.Second
	DefaultGraphDeadline        = 3 * time.Second
)

// New validates the wiring and returns a ready orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	if opts.Locker == nil {
		return nil, errors.New("orchestrator: locker is required")
	}
	if opts.Repository == nil {
		return nil, errors.New("orchestrator: repository is required")
	}
	if opts.Extractor == nil {
		return nil, errors.New("orchestrator: extractor is required")
	}
	if opts.Composer == nil {
		return nil, errors.New("orchestrator: composer is required")
	}
	o := &Orchestrator{
		store:         opts.Store,
		locker:        opts.Locker,
		repo:          opts.Repository,
		extract:       opts.Extractor,
		compose:       opts.Composer,
		events:        opts.Events,
		applic:        opts.Applicability,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		tracer:        opts.Tracer,
		minReal:       opts.MinRealComponents,
		autoCommit:    opts.AutoCommitConfidence,
		askConfirm:    opts.ConfirmConfidence,
		replaceBag:    opts.ReplaceBagOnMention,
		turnBudget:    opts.TurnDeadline,
		extractBudget: opts.ExtractDeadline,
		graphBudget:   opts.GraphDeadline,
		now:           opts.Now,
		newID:         opts.NewID,
	}
	if o.logger == nil {
		o.logger = telemetry.NewNoopLogger()
	}
	if o.metrics == nil {
		o.metrics = telemetry.NewNoopMetrics()
	}
	if o.tracer == nil {
		o.tracer = telemetry.NewNoopTracer()
	}
	if o.minReal == 0 {
		o.minReal = DefaultMinRealComponents
	}
	if o.autoCommit == 0 {
		o.autoCommit = DefaultAutoCommitConfidence
	}
	if o.askConfirm == 0 {
		o.askConfirm = DefaultConfirmConfidence
	}
	if o.turnBudget == 0 {
		o.turnBudget = DefaultTurnDeadline
	}
	if o.extractBudget == 0 {
		o.extractBudget = DefaultExtractDeadline
	}
	if o.graphBudget == 0 {
		o.graphBudget = DefaultGraphDeadline
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	return o, nil
}

// Handle runs one turn. The returned response is always renderable; an error
// is returned only when the turn could not start at all (lock busy or lock
// infrastructure failure).
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := withBudget(ctx, o.turnBudget)
	defer cancel()
	ctx, span := o.tracer.Start(ctx, "configurator.turn")
	defer span.End()
	started := o.now()

	id := req.SessionID
	if id == "" {
		id = o.newID()
	}

	token, err := o.locker.Acquire(ctx, id)
	if err != nil {
		o.metrics.IncCounter("configurator_turns_rejected", 1, "reason", reasonFor(err))
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	defer func() {
		if rerr := o.locker.Release(context.WithoutCancel(ctx), id, token); rerr != nil {
			o.logger.Warn(ctx, "session lock release failed", "session_id", id, "err", rerr)
		}
	}()

	sess, expired, err := o.load(ctx, id, req.SessionID != "")
	if err != nil {
		return o.renderPortFailure(ctx, id, nil, err), nil
	}
	if req.Language != "" {
		sess.Language = req.Language
	}

	if req.Reset || keywordIntent(req.Message) == intentReset {
		return o.reset(ctx, sess)
	}
	if expired {
		// The prior state is gone; greet and persist the fresh session
		// without interpreting the message against a context the user no
		// longer has.
		return o.finish(ctx, sess, sess, turnOutcome{reply: o.compose.SessionExpired(sess.Language), created: true, skipLog: true}), nil
	}
	if req.SessionID == "" && req.Message == "" {
		return o.finish(ctx, sess, sess, turnOutcome{reply: o.compose.Greeting(sess.Language), created: true, skipLog: true}), nil
	}

	work := sess.Clone()
	out, err := o.runTurn(ctx, work, req.Message)
	if err != nil {
		o.metrics.IncCounter("configurator_turn_errors", 1, "category", reasonFor(err))
		span.RecordError(err)
		return o.renderPortFailure(ctx, id, sess, err), nil
	}
	out.created = out.created || req.SessionID == ""
	o.metrics.RecordTimer("configurator_turn_duration", o.now().Sub(started), "state", string(work.CurrentState))
	return o.finish(ctx, sess, work, out), nil
}

// State returns a read-only snapshot of a session. It takes no lock: a
// snapshot raced with a turn is simply the pre- or post-turn state.
func (o *Orchestrator) State(ctx context.Context, sessionID string) (*Response, error) {
	sess, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := o.snapshot(sess)
	return resp, nil
}

// load fetches the session, creating a fresh one on a miss. The expired flag
// reports a miss for an id the client believed was live.
func (o *Orchestrator) load(ctx context.Context, id string, resumed bool) (*configurator.Session, bool, error) {
	sess, err := o.store.Get(ctx, id)
	switch {
	case err == nil:
		return sess, false, nil
	case errors.Is(err, configurator.ErrSessionExpired):
		return configurator.NewSession(id, o.now()), resumed, nil
	default:
		return nil, false, err
	}
}

// reset discards the session and persists a fresh one under the same id.
// The fresh session carries no log, so reset is idempotent.
func (o *Orchestrator) reset(ctx context.Context, sess *configurator.Session) (*Response, error) {
	fresh := configurator.NewSession(sess.ID, o.now())
	fresh.Language = sess.Language
	if err := o.store.Put(ctx, fresh); err != nil {
		return o.renderPortFailure(ctx, sess.ID, sess, err), nil
	}
	o.publish(ctx, events.Reset(fresh.ID, fresh.CurrentState, o.now()))
	o.metrics.IncCounter("configurator_sessions_reset", 1)
	resp := o.snapshot(fresh)
	resp.Message = o.compose.Greeting(fresh.Language)
	return resp, nil
}

// turnOutcome carries what the pipeline decided back to the persist step.
type turnOutcome struct {
	reply     string
	created   bool
	completed bool
	skipLog   bool
}

// finish logs the exchange, verifies and persists the worked session, and
// publishes lifecycle events. On persist failure the original session is
// reported unchanged.
func (o *Orchestrator) finish(ctx context.Context, prev, work *configurator.Session, out turnOutcome) *Response {
	now := o.now()
	if !out.skipLog {
		work.Append("assistant", out.reply, now)
	}
	if err := work.Verify(); err != nil {
		o.logger.Error(ctx, "session failed verification", "session_id", work.ID, "err", err)
		o.metrics.IncCounter("configurator_integrity_breaches", 1)
		resp := o.snapshot(prev)
		resp.Message = o.compose.GenericError(prev.Language)
		return resp
	}
	if err := o.store.Put(ctx, work); err != nil {
		o.logger.Error(ctx, "session persist failed", "session_id", work.ID, "err", err)
		resp := o.snapshot(prev)
		resp.Message = o.compose.Unavailable(prev.Language)
		return resp
	}
	if out.created {
		o.publish(ctx, events.Created(work.ID, work.CreatedAt))
		o.metrics.IncCounter("configurator_sessions_created", 1)
	}
	if out.completed {
		if err := o.store.Archive(ctx, work, now); err != nil {
			o.logger.Warn(ctx, "archive write failed", "session_id", work.ID, "err", err)
			o.metrics.IncCounter("configurator_archive_failures", 1)
		}
		o.publish(ctx, events.Completed(work.ID, work.CurrentState, now))
		o.metrics.IncCounter("configurator_sessions_completed", 1)
	}
	resp := o.snapshot(work)
	resp.Message = out.reply
	return resp
}

// renderPortFailure maps a categorized port error to its prompt. The session
// is reported as it was before the turn; nothing has been persisted.
func (o *Orchestrator) renderPortFailure(ctx context.Context, id string, prev *configurator.Session, err error) *Response {
	lang := ""
	var resp *Response
	if prev != nil {
		lang = prev.Language
		resp = o.snapshot(prev)
	} else {
		resp = &Response{SessionID: id, State: configurator.StatePowerSource}
	}
	switch {
	case errors.Is(err, configurator.ErrExtraction):
		o.logger.Warn(ctx, "extraction failed", "session_id", id, "err", err)
		resp.Message = o.compose.ExtractionFallback(lang)
	case errors.Is(err, configurator.ErrRepository):
		o.logger.Warn(ctx, "catalogue unavailable", "session_id", id, "err", err)
		resp.Message = o.compose.Unavailable(lang)
	case errors.Is(err, store.ErrUnavailable):
		o.logger.Warn(ctx, "session store unavailable", "session_id", id, "err", err)
		resp.Message = o.compose.Unavailable(lang)
	default:
		// Uncategorized failures are treated as integrity violations:
		// abort, persist nothing, tell the user something generic.
		o.logger.Error(ctx, "turn aborted", "session_id", id, "err", err)
		o.metrics.IncCounter("configurator_integrity_breaches", 1)
		resp.Message = o.compose.GenericError(lang)
	}
	return resp
}

// snapshot builds the response envelope from a session, message left empty.
func (o *Orchestrator) snapshot(sess *configurator.Session) *Response {
	resp := &Response{
		SessionID: sess.ID,
		State:     sess.CurrentState,
		Message:   "",
		Cart:      sess.Cart.Clone(),
		Master:    sess.Master.Clone(),
		Completed: sess.Completed,
	}
	for i, p := range sess.PendingOptions {
		resp.Options = append(resp.Options, Option{
			Rank:        i + 1,
			GIN:         p.GIN,
			Name:        p.Name,
			Description: p.Description,
		})
	}
	return resp
}

// publish sends a lifecycle event, best-effort.
func (o *Orchestrator) publish(ctx context.Context, ev events.Event) {
	if o.events == nil {
		return
	}
	if err := o.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		o.logger.Warn(ctx, "event publish failed", "type", string(ev.Type), "session_id", ev.SessionID, "err", err)
	}
}

// reasonFor labels an error for metrics without leaking its text.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, store.ErrSessionBusy):
		return "busy"
	case errors.Is(err, configurator.ErrExtraction):
		return "extraction"
	case errors.Is(err, configurator.ErrRepository):
		return "repository"
	case errors.Is(err, configurator.ErrIntegrity):
		return "integrity"
	case errors.Is(err, store.ErrUnavailable):
		return "store"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline"
	default:
		return "other"
	}
}

// withBudget bounds ctx by d when positive.
func withBudget(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
