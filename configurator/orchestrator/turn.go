package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/catalog"
	"github.com/beedev/recommenderv2/configurator/compat"
	"github.com/beedev/recommenderv2/configurator/extract"
)

// runTurn executes the pipeline on the work clone. Everything it mutates is
// discarded unless the caller persists the clone.
func (o *Orchestrator) runTurn(ctx context.Context, work *configurator.Session, message string) (turnOutcome, error) {
	lang := work.Language
	history := work.LastLog(extract.DefaultHistory)
	work.Append("user", message, o.now())

	switch keywordIntent(message) {
	case intentSkip:
		return o.turnSkip(work, lang)
	case intentDone:
		return o.turnDone(work, lang)
	case intentConfirm:
		return o.turnConfirm(ctx, work, lang)
	}

	if p, ok := resolveSelection(message, work.PendingOptions); ok {
		return o.commitSelection(ctx, work, p, lang)
	}

	out, err := o.runExtract(ctx, work, message, history)
	if err != nil {
		return turnOutcome{}, err
	}
	if out.NeedsClarification {
		q := out.ClarificationQuestion
		if q == "" {
			q = o.compose.ExtractionFallback(lang)
		}
		return turnOutcome{reply: q}, nil
	}

	o.fold(work, out)

	kind, ok := o.target(ctx, work, out)
	if !ok {
		return o.turnIdle(work, lang), nil
	}
	return o.turnSearch(ctx, work, kind, out.ConfidenceFor(kind), lang)
}

// turnSkip handles the explicit skip keyword. The power source is mandatory
// and skipping it only re-prompts.
func (o *Orchestrator) turnSkip(work *configurator.Session, lang string) (turnOutcome, error) {
	kind, ok := work.CurrentState.Kind()
	if !ok {
		return turnOutcome{reply: o.compose.FinalizePrompt(lang, work.Cart)}, nil
	}
	if kind == configurator.KindPowerSource {
		return turnOutcome{reply: o.compose.RejectSkipOfPowerSource(lang)}, nil
	}
	if err := work.Cart.Skip(kind); err != nil {
		return turnOutcome{}, err
	}
	work.PendingOptions = nil
	next := configurator.NextActive(work.CurrentState, work.Applicability)
	work.CurrentState = next

	reply := o.compose.SkipNotice(lang, kind)
	if next == configurator.StateFinalize {
		reply += "\n\n" + o.compose.FinalizePrompt(lang, work.Cart)
	} else {
		nk, _ := next.Kind()
		reply += "\n\n" + o.compose.PromptFor(lang, nk)
	}
	return turnOutcome{reply: reply}, nil
}

// turnDone jumps to the finalize state and shows the pending configuration.
// Completion itself still requires an explicit confirm there.
func (o *Orchestrator) turnDone(work *configurator.Session, lang string) (turnOutcome, error) {
	work.PendingOptions = nil
	work.CurrentState = configurator.StateFinalize
	return turnOutcome{reply: o.compose.FinalizePrompt(lang, work.Cart)}, nil
}

// turnConfirm handles bare affirmations: at finalize they complete the
// configuration, after a single presented option they commit it.
func (o *Orchestrator) turnConfirm(ctx context.Context, work *configurator.Session, lang string) (turnOutcome, error) {
	if work.CurrentState == configurator.StateFinalize {
		return o.finalize(ctx, work, lang)
	}
	switch len(work.PendingOptions) {
	case 1:
		return o.commitSelection(ctx, work, work.PendingOptions[0], lang)
	case 0:
		return o.turnIdle(work, lang), nil
	default:
		// Ambiguous: several options are on the table.
		kind := work.PendingOptions[0].Kind
		return turnOutcome{reply: o.compose.PresentOptions(lang, kind, work.PendingOptions, false)}, nil
	}
}

// finalize checks the component threshold and either completes the session
// or bounces to the first state still open.
func (o *Orchestrator) finalize(ctx context.Context, work *configurator.Session, lang string) (turnOutcome, error) {
	have := work.Cart.RealComponents()
	if have < o.minReal {
		reply := o.compose.ThresholdNotMet(lang, have, o.minReal)
		work.CurrentState = firstOpenState(work)
		if kind, ok := work.CurrentState.Kind(); ok {
			reply += "\n\n" + o.compose.PromptFor(lang, kind)
		}
		return turnOutcome{reply: reply}, nil
	}
	work.Completed = true
	work.PendingOptions = nil
	o.logger.Info(ctx, "configuration completed", "session_id", work.ID, "components", have)
	return turnOutcome{reply: o.compose.Completed(lang, work.Cart), completed: true}, nil
}

// runExtract consults the model under its own deadline. A bare deadline
// expiry counts as an extraction failure.
func (o *Orchestrator) runExtract(ctx context.Context, work *configurator.Session, message string, history []configurator.LogEntry) (extract.Outcome, error) {
	ectx, cancel := withBudget(ctx, o.extractBudget)
	defer cancel()
	out, err := o.extract.Extract(ectx, extract.Input{
		Message: message,
		State:   work.CurrentState,
		Master:  work.Master,
		Log:     history,
	})
	if err != nil {
		if !errors.Is(err, configurator.ErrExtraction) && errors.Is(err, context.DeadlineExceeded) {
			return extract.Outcome{}, fmt.Errorf("%w: %v", configurator.ErrExtraction, err)
		}
		return extract.Outcome{}, err
	}
	return out, nil
}

// fold merges the extraction outcome into the master record: mentions first
// so the replace-bag policy never drops attributes from this same turn, then
// field updates, last write wins.
func (o *Orchestrator) fold(work *configurator.Session, out extract.Outcome) {
	for k, mention := range out.DirectMentions {
		if o.replaceBag {
			work.Master.Zero(k)
		}
		work.Master.Bag(k).DirectMention = mention
	}
	for k, updates := range out.Updates {
		work.Master.Bag(k).Apply(updates)
	}
}

// target picks the kind this turn acts on: the current state's kind when the
// turn touched it or a mention is waiting there, otherwise the earliest
// upstream kind the turn revised. Mentions for kinds the applicability table
// excludes are consumed and dropped.
func (o *Orchestrator) target(ctx context.Context, work *configurator.Session, out extract.Outcome) (configurator.Kind, bool) {
	touched := func(k configurator.Kind) bool {
		return work.Master.Bag(k).DirectMention != "" || len(out.Updates[k]) > 0
	}
	if k, ok := work.CurrentState.Kind(); ok && touched(k) {
		return k, true
	}
	for _, s := range configurator.States() {
		if !s.Before(work.CurrentState) {
			break
		}
		k, ok := s.Kind()
		if !ok || !touched(k) {
			continue
		}
		if e := work.Cart.Entry(k); e != nil && e.Status == configurator.StatusNotApplicable {
			o.logger.Debug(ctx, "mention for inapplicable kind dropped", "session_id", work.ID, "kind", string(k))
			work.Master.Bag(k).DirectMention = ""
			continue
		}
		return k, true
	}
	return "", false
}

// turnIdle re-prompts the current state when the turn produced nothing
// actionable. Options presented earlier stay on the table.
func (o *Orchestrator) turnIdle(work *configurator.Session, lang string) turnOutcome {
	if kind, ok := work.CurrentState.Kind(); ok {
		return turnOutcome{reply: o.compose.PromptFor(lang, kind)}
	}
	return turnOutcome{reply: o.compose.FinalizePrompt(lang, work.Cart)}
}

// turnSearch resolves candidates for the target kind. A direct mention takes
// the name shortcut when the model was confident enough: against the bare
// catalogue while the kind is unconstrained, otherwise against the
// compatibility-filtered results, so a committed product always satisfies
// the predicate it was searched under.
func (o *Orchestrator) turnSearch(ctx context.Context, work *configurator.Session, kind configurator.Kind, confidence float64, lang string) (turnOutcome, error) {
	bag := work.Master.Bag(kind)
	mention := bag.DirectMention
	pred := compat.For(kind, &work.Cart)

	if mention != "" {
		bag.DirectMention = ""
		if confidence >= o.askConfirm {
			if pred.Empty() {
				products, err := o.lookup(ctx, kind, mention)
				if err != nil {
					return turnOutcome{}, err
				}
				switch {
				case len(products) == 1 && confidence >= o.autoCommit:
					return o.commitSelection(ctx, work, products[0], lang)
				case len(products) >= 1:
					return o.present(work, kind, products, false, lang), nil
				}
				// No catalogue name matched; run the attribute search.
			} else {
				res, err := o.findOptions(ctx, kind, bag, pred)
				if err != nil {
					return turnOutcome{}, err
				}
				matches := nameMatches(mention, res.Products)
				switch {
				case len(matches) == 1 && confidence >= o.autoCommit:
					return o.commitSelection(ctx, work, matches[0], lang)
				case len(matches) >= 1:
					return o.present(work, kind, matches, res.Fallback, lang), nil
				default:
					return o.present(work, kind, res.Products, res.Fallback, lang), nil
				}
			}
		}
	}

	if bag.Len() == 0 && mention == "" {
		return o.turnIdle(work, lang), nil
	}
	res, err := o.findOptions(ctx, kind, bag, pred)
	if err != nil {
		return turnOutcome{}, err
	}
	return o.present(work, kind, res.Products, res.Fallback, lang), nil
}

// findOptions runs the attribute search with the per-query graph budget.
func (o *Orchestrator) findOptions(ctx context.Context, kind configurator.Kind, bag *configurator.ParameterBag, pred compat.Predicate) (catalog.Result, error) {
	q := catalog.Query{Kind: kind, Bag: *bag, Predicate: pred}
	if kind == configurator.KindAccessory {
		q.Category = configurator.ClassifyAccessory(*bag)
	}
	gctx, cancel := withBudget(ctx, o.graphBudget)
	defer cancel()
	res, err := catalog.FindOptions(gctx, o.repo, q)
	if err != nil {
		return catalog.Result{}, err
	}
	o.metrics.IncCounter("configurator_searches", 1, "kind", string(kind), "fallback", fmt.Sprintf("%t", res.Fallback))
	return res, nil
}

// lookup resolves a direct product mention by name.
func (o *Orchestrator) lookup(ctx context.Context, kind configurator.Kind, raw string) ([]configurator.Product, error) {
	gctx, cancel := withBudget(ctx, o.graphBudget)
	defer cancel()
	return o.repo.LookupByName(gctx, kind, raw)
}

// present stores the candidates for rank selection next turn and renders
// them.
func (o *Orchestrator) present(work *configurator.Session, kind configurator.Kind, products []configurator.Product, fallback bool, lang string) turnOutcome {
	work.PendingOptions = products
	return turnOutcome{reply: o.compose.PresentOptions(lang, kind, products, fallback)}
}

// commitSelection locks a product into the cart and advances the state
// machine: cascade on replacement, applicability on a power source, then the
// next active prompt.
func (o *Orchestrator) commitSelection(ctx context.Context, work *configurator.Session, p configurator.Product, lang string) (turnOutcome, error) {
	state, ok := configurator.StateFor(p.Kind)
	if !ok {
		return turnOutcome{}, fmt.Errorf("%w: commit of unknown kind %q", configurator.ErrIntegrity, p.Kind)
	}
	entry := work.Cart.Entry(p.Kind)
	replace := entry != nil && entry.Status == configurator.StatusSelected
	if err := work.Cart.Select(p, replace); err != nil {
		return turnOutcome{}, err
	}

	var b strings.Builder
	b.WriteString(o.compose.Confirm(lang, p.Kind, p))

	if replace {
		cascade(work, state)
	}
	if p.Kind == configurator.KindPowerSource {
		app := o.applicability(p.GIN)
		work.Applicability = &app
	}
	if p.Kind == configurator.KindPowerSource || replace {
		na, err := remark(work)
		if err != nil {
			return turnOutcome{}, err
		}
		if p.Kind == configurator.KindPowerSource && len(na) > 0 {
			b.WriteString("\n" + o.compose.NotApplicableNotice(lang, na))
		}
	}

	bag := work.Master.Bag(p.Kind)
	bag.Enrich(p)
	bag.DirectMention = ""
	work.PendingOptions = nil

	next := configurator.NextActive(state, work.Applicability)
	if p.Kind == configurator.KindAccessory {
		next = configurator.StateAccessories
	}
	work.CurrentState = next

	o.logger.Info(ctx, "product committed",
		"session_id", work.ID, "kind", string(p.Kind), "gin", p.GIN, "replace", replace, "next", string(next))
	o.metrics.IncCounter("configurator_commits", 1, "kind", string(p.Kind))

	if next == configurator.StateFinalize {
		b.WriteString("\n\n" + o.compose.FinalizePrompt(lang, work.Cart))
	} else {
		nk, _ := next.Kind()
		b.WriteString("\n\n" + o.compose.PromptFor(lang, nk))
	}
	return turnOutcome{reply: b.String()}, nil
}

// applicability resolves a power-source GIN against the table, defaulting
// to all-applicable when no table is wired.
func (o *Orchestrator) applicability(gin string) configurator.Applicability {
	if o.applic == nil {
		return configurator.DefaultApplicability()
	}
	return o.applic.Lookup(gin)
}

// cascade clears the cart entries and master bags of every state after the
// modified one, active or not, so no stale selection or filter survives a
// replacement.
func cascade(work *configurator.Session, from configurator.State) {
	for _, ds := range configurator.DownstreamStates(from, nil) {
		k, _ := ds.Kind()
		work.Cart.Reset(k)
		work.Master.Zero(k)
	}
}

// remark re-derives the NotApplicable cart entries from the session's
// applicability. Entries the cascade cleared get their marks back; selected
// entries never lose theirs.
func remark(work *configurator.Session) ([]configurator.Kind, error) {
	if work.Applicability == nil {
		return nil, nil
	}
	na := work.Applicability.NotApplicableKinds()
	for _, k := range na {
		if err := work.Cart.MarkNotApplicable(k); err != nil {
			return nil, err
		}
	}
	return na, nil
}

// firstOpenState is where a refused finalization bounces: the earliest
// active state whose slot is still undecided, accessories counting as always
// open, or finalize itself when nothing is.
func firstOpenState(work *configurator.Session) configurator.State {
	for _, s := range configurator.ActiveStates(work.Applicability) {
		if s == configurator.StateFinalize {
			continue
		}
		k, _ := s.Kind()
		if k == configurator.KindAccessory {
			return s
		}
		if work.Cart.Entry(k).Status == configurator.StatusUnset {
			return s
		}
	}
	return configurator.StateFinalize
}

// nameMatches filters candidates by the mentioned name.
func nameMatches(mention string, products []configurator.Product) []configurator.Product {
	var out []configurator.Product
	for _, p := range products {
		if catalog.NameMatch(mention, p.Name) {
			out = append(out, p)
		}
	}
	return out
}
