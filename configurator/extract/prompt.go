package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beedev/recommenderv2/configurator"
)

// systemPrompt is the stable instruction block sent with every extraction
// call. Per-turn data goes in the user prompt so this text never varies.
const systemPrompt = `You are a welding equipment expert. Extract technical requirements from the user's message into a component-based JSON object.

Respond with a single JSON object and nothing else. Fields:
- "updates": object keyed by component (power_source, feeder, cooler, interconnector, torch, accessories); each value maps attribute name to canonical value. Include only components the message gives new information for.
- "needs_clarification": boolean, true when the message contains nothing actionable.
- "clarification_question": the follow-up question to ask; non-empty exactly when needs_clarification is true, otherwise "".
- "direct_product_mentions": object keyed by component; value is the product name exactly as the user wrote it.
- "confidence": object keyed by component; value between 0 and 1.
- "reasoning": short free-text trace, optional.

Canonical value forms:
- current: "<int> A" (example "500 A")
- voltage: "<int>V" (example "230V")
- phase: "single-phase" or "3-phase"
- process: "<Name> (<Abbrev>)" (example "MIG (GMAW)")
- cooling_type: "water", "air" or "none"
- wire_size: "0.XXX inch" with a leading zero (example "0.035 inch")
- cable_length: "<int> ft" (example "25 ft")
- portability: "portable" or "stationary"
- material: lowercase token (example "aluminum")

Rules:
- One message may cover several components; extract all of them.
- Emit only deltas. Never null out or repeat values already recorded.
- When the user names a known product, record it under direct_product_mentions for the matching component.`

// promptNameKinds are the kinds whose product names are listed in prompts.
// Listing every kind would blow up the prompt for no recognition gain.
var promptNameKinds = []configurator.Kind{
	configurator.KindPowerSource,
	configurator.KindFeeder,
	configurator.KindCooler,
}

// prompt renders the per-turn user prompt: message, state focus, master
// snapshot, known product names and recent conversation.
func (e *Extractor) prompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "TASK: Update the welding equipment requirements from the user's message.\n\n")
	fmt.Fprintf(&b, "USER MESSAGE: %q\n\n", in.Message)
	fmt.Fprintf(&b, "CURRENT STATE: %s\n", in.State)
	if kind, ok := in.State.Kind(); ok {
		fmt.Fprintf(&b, "FOCUS: requirements for the %s component.\n", wireName(kind))
		fmt.Fprintf(&b, "Attributes: %s\n", strings.Join(kind.Vocabulary(), ", "))
	}

	snapshot, _ := json.MarshalIndent(in.Master, "", "  ")
	fmt.Fprintf(&b, "\nCURRENT REQUIREMENTS:\n%s\n", snapshot)

	e.writeNames(&b)
	e.writeLog(&b, in.Log)

	b.WriteString("\nRespond with the JSON object now.\n")
	return b.String()
}

// writeNames lists the known product names per kind, capped so prompts stay
// small the way the catalogue dictionary is capped.
func (e *Extractor) writeNames(b *strings.Builder) {
	var wrote bool
	for _, kind := range promptNameKinds {
		names := e.names.For(kind, maxPromptNames)
		if len(names) == 0 {
			continue
		}
		if !wrote {
			b.WriteString("\nKNOWN PRODUCT NAMES:\n")
			wrote = true
		}
		fmt.Fprintf(b, "%s:\n", wireName(kind))
		for _, name := range names {
			fmt.Fprintf(b, "  - %s\n", name)
		}
		if total := len(e.names[kind]); total > len(names) {
			fmt.Fprintf(b, "  ... and %d more\n", total-len(names))
		}
	}
}

// writeLog appends the most recent conversation entries, oldest first.
func (e *Extractor) writeLog(b *strings.Builder, log []configurator.LogEntry) {
	if len(log) > e.history {
		log = log[len(log)-e.history:]
	}
	if len(log) == 0 {
		return
	}
	b.WriteString("\nCONVERSATION:\n")
	for _, entry := range log {
		fmt.Fprintf(b, "%s: %s\n", entry.Role, entry.Text)
	}
}

// wireName returns the serialized name of a kind as used in prompts and
// extraction payloads.
func wireName(k configurator.Kind) string {
	for name, kind := range wireKinds {
		if kind == k {
			return name
		}
	}
	return string(k)
}
