// Package compose renders every user-facing message of the configurator.
// It holds no business logic: the orchestrator decides what happened and
// compose decides how to say it, in the session's language.
//
// Localization is table-driven. Requested language tags are matched against
// the twelve supported tags with golang.org/x/text/language; phrases missing
// from a language table fall back to English.
package compose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/catalog"
)

type (
	// Composer renders localized messages from a phrase catalog.
	Composer struct {
		catalog Catalog
	}

	// Options configures New.
	Options struct {
		// Overlay is merged over the built-in phrase catalog. Optional;
		// deployments use it to patch or extend translations without a
		// rebuild.
		Overlay Catalog
	}

	// SummaryEntry is one selected product in the finalization summary.
	SummaryEntry struct {
		GIN         string `json:"gin"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}

	// Summary is the structured finalization object. Only identifier, name
	// and description appear; accessories keep their selection order.
	Summary struct {
		PowerSource    *SummaryEntry  `json:"power_source,omitempty"`
		Feeder         *SummaryEntry  `json:"feeder,omitempty"`
		Cooler         *SummaryEntry  `json:"cooler,omitempty"`
		Interconnector *SummaryEntry  `json:"interconnector,omitempty"`
		Torch          *SummaryEntry  `json:"torch,omitempty"`
		Accessories    []SummaryEntry `json:"accessories,omitempty"`
	}
)

// New returns a Composer over the built-in catalog merged with the overlay.
func New(opts Options) *Composer {
	merged := builtinCatalog
	if len(opts.Overlay) > 0 {
		merged = make(Catalog, len(builtinCatalog))
		for code, phrases := range builtinCatalog {
			table := make(map[string]string, len(phrases))
			for key, value := range phrases {
				table[key] = value
			}
			merged[code] = table
		}
		for code, phrases := range opts.Overlay {
			if merged[code] == nil {
				merged[code] = make(map[string]string, len(phrases))
			}
			for key, value := range phrases {
				merged[code][key] = value
			}
		}
	}
	return &Composer{catalog: merged}
}

// kindEmoji decorates the per-kind prompts the way the original assistant
// did.
var kindEmoji = map[configurator.Kind]string{
	configurator.KindPowerSource:    "🔋",
	configurator.KindFeeder:         "🔌",
	configurator.KindCooler:         "❄️",
	configurator.KindInterconnector: "🔗",
	configurator.KindTorch:          "🔦",
	configurator.KindAccessory:      "🛠️",
}

// kindHeadline maps kinds to their prompt headline phrase.
var kindHeadline = map[configurator.Kind]string{
	configurator.KindPowerSource:    "Select a power source",
	configurator.KindFeeder:         "Select a feeder",
	configurator.KindCooler:         "Select a cooler",
	configurator.KindInterconnector: "Select an interconnector",
	configurator.KindTorch:          "Select a torch",
	configurator.KindAccessory:      "Select accessories",
}

// kindLabel maps kinds to their friendly display-name phrase.
var kindLabel = map[configurator.Kind]string{
	configurator.KindPowerSource:    "Power Source",
	configurator.KindFeeder:         "Wire Feeder",
	configurator.KindCooler:         "Cooling System",
	configurator.KindInterconnector: "Interconnector Cable",
	configurator.KindTorch:          "Welding Torch",
	configurator.KindAccessory:      "Accessory",
}

// PromptFor asks the user what they need for the kind: headline, attribute
// vocabulary, and the skip or done hint the state allows.
func (c *Composer) PromptFor(lang string, kind configurator.Kind) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s **%s.** ", kindEmoji[kind], c.tr(lang, kindHeadline[kind]))
	fmt.Fprintf(&b, c.tr(lang, "Tell me what you need: %s."), strings.Join(kind.Vocabulary(), ", "))
	b.WriteString(" " + c.tr(lang, "Naming a specific model also works."))
	switch kind {
	case configurator.KindPowerSource:
		// Mandatory; no skip hint.
	case configurator.KindAccessory:
		b.WriteString("\n" + c.tr(lang, "Or say 'done' when you have all the accessories you need."))
	default:
		b.WriteString("\n" + c.tr(lang, "Or say 'skip' if this component is not needed."))
	}
	return b.String()
}

// PresentOptions renders search results: a numbered list for two or more,
// a single confirmation ask for exactly one, guidance for none. The fallback
// flag surfaces that attribute filters were relaxed.
func (c *Composer) PresentOptions(lang string, kind configurator.Kind, products []configurator.Product, fallback bool) string {
	products = catalog.Cap(products)
	label := c.tr(lang, kindLabel[kind])

	if len(products) == 0 {
		var b strings.Builder
		fmt.Fprintf(&b, c.tr(lang, "⚠️ No %s options matched your requirements."), label)
		b.WriteString("\n" + c.tr(lang, "Try adjusting your requirements."))
		if kind != configurator.KindPowerSource {
			b.WriteString("\n" + c.tr(lang, "Or say 'skip' if this component is not needed."))
		}
		return b.String()
	}

	if len(products) == 1 {
		p := products[0]
		var b strings.Builder
		if fallback {
			b.WriteString(c.tr(lang, "No exact match for your requirements; here is everything compatible:"))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, c.tr(lang, "I found one match: **%[1]s** (GIN: %[2]s). Say 'yes' to select it."), p.Name, p.GIN)
		if kind != configurator.KindPowerSource {
			b.WriteString("\n" + c.tr(lang, "Or say 'skip' if this component is not needed."))
		}
		return b.String()
	}

	var b strings.Builder
	if fallback {
		b.WriteString(c.tr(lang, "No exact match for your requirements; here is everything compatible:"))
	} else {
		fmt.Fprintf(&b, c.tr(lang, "I found %[1]d compatible %[2]s options:"), len(products), label)
	}
	b.WriteString("\n\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. **%s** (GIN: %s)\n", i+1, p.Name, p.GIN)
		if p.Description != "" {
			fmt.Fprintf(&b, "   %s\n", p.Description)
		}
	}
	b.WriteString("\n" + c.tr(lang, "To select, reply with a number, a product name, or a GIN."))
	if kind != configurator.KindPowerSource {
		b.WriteString("\n" + c.tr(lang, "Or say 'skip' if this component is not needed."))
	}
	return b.String()
}

// Confirm acknowledges a committed selection.
func (c *Composer) Confirm(lang string, kind configurator.Kind, p configurator.Product) string {
	return fmt.Sprintf(c.tr(lang, "✅ Selected **%[1]s** (GIN: %[2]s) for %[3]s."), p.Name, p.GIN, c.tr(lang, kindLabel[kind]))
}

// SkipNotice acknowledges a skipped component.
func (c *Composer) SkipNotice(lang string, kind configurator.Kind) string {
	return fmt.Sprintf(c.tr(lang, "⏭️ Skipping %s selection."), c.tr(lang, kindLabel[kind]))
}

// RejectSkipOfPowerSource reminds the user that S1 is mandatory.
func (c *Composer) RejectSkipOfPowerSource(lang string) string {
	return c.tr(lang, "⚠️ A power source is mandatory and cannot be skipped. Tell me your welding requirements or name a specific model.")
}

// NotApplicableNotice summarizes the kinds the selected power source rules
// out. Emits nothing for an empty list.
func (c *Composer) NotApplicableNotice(lang string, kinds []configurator.Kind) string {
	if len(kinds) == 0 {
		return ""
	}
	labels := make([]string, len(kinds))
	for i, k := range kinds {
		labels[i] = c.tr(lang, kindLabel[k])
	}
	return fmt.Sprintf(c.tr(lang, "The selected power source does not use: %s."), strings.Join(labels, ", "))
}

// ThresholdNotMet explains why finalization was refused.
func (c *Composer) ThresholdNotMet(lang string, current, required int) string {
	return fmt.Sprintf(c.tr(lang, "⚠️ Only %[1]d of the required %[2]d components are selected. Add more before finalizing."), current, required)
}

// ExtractionFallback asks the user to restate after a failed extraction.
func (c *Composer) ExtractionFallback(lang string) string {
	return c.tr(lang, "I didn't catch that. Could you restate your requirements?")
}

// Unavailable reports a catalogue outage without leaking internals.
func (c *Composer) Unavailable(lang string) string {
	return c.tr(lang, "⚠️ The product catalogue is momentarily unavailable. Please try again.")
}

// Greeting opens a fresh session.
func (c *Composer) Greeting(lang string) string {
	return c.tr(lang, "👋 Welcome! Tell me about your welding needs and we'll assemble a complete setup, starting with the power source.")
}

// SessionExpired tells the user their previous session is gone.
func (c *Composer) SessionExpired(lang string) string {
	return c.tr(lang, "Your previous session expired, so we're starting fresh.") + "\n" + c.Greeting(lang)
}

// GenericError is the only message an integrity breach produces.
func (c *Composer) GenericError(lang string) string {
	return c.tr(lang, "⚠️ Something went wrong processing that turn. Nothing was changed; please try again.")
}

// FinalizationSummary reduces the cart to the structured summary object:
// identifier, name and description per selected entry, nothing else.
func FinalizationSummary(cart configurator.Cart) Summary {
	var sum Summary
	sum.PowerSource = summaryEntry(cart.PowerSource)
	sum.Feeder = summaryEntry(cart.Feeder)
	sum.Cooler = summaryEntry(cart.Cooler)
	sum.Interconnector = summaryEntry(cart.Interconnector)
	sum.Torch = summaryEntry(cart.Torch)
	for _, e := range cart.Accessories {
		if entry := summaryEntry(e); entry != nil {
			sum.Accessories = append(sum.Accessories, *entry)
		}
	}
	return sum
}

func summaryEntry(e configurator.CartEntry) *SummaryEntry {
	if e.Status != configurator.StatusSelected || e.Product == nil {
		return nil
	}
	return &SummaryEntry{GIN: e.Product.GIN, Name: e.Product.Name, Description: e.Product.Description}
}

// FinalizePrompt shows the pending configuration and asks for confirmation.
func (c *Composer) FinalizePrompt(lang string, cart configurator.Cart) string {
	return c.tr(lang, "📋 **Final configuration:**") + "\n\n" + summaryBlock(cart) + "\n\n" +
		c.tr(lang, "Say 'confirm' to complete it, or tell me what to change.")
}

// Completed announces the terminal state with the final summary.
func (c *Composer) Completed(lang string, cart configurator.Cart) string {
	return c.tr(lang, "✨ Configuration complete! Here is your final setup:") + "\n\n" + summaryBlock(cart)
}

func summaryBlock(cart configurator.Cart) string {
	body, _ := json.MarshalIndent(FinalizationSummary(cart), "", "  ")
	return "```json\n" + string(body) + "\n```"
}

// tr resolves the phrase for the matched language, falling back to the
// English key itself.
func (c *Composer) tr(lang, phrase string) string {
	code := resolve(lang)
	if code == "en" {
		return phrase
	}
	if localized, ok := c.catalog[code][phrase]; ok {
		return localized
	}
	return phrase
}
