package orchestrator

import (
	"strconv"
	"strings"

	"github.com/beedev/recommenderv2/configurator"
)

// intent is the keyword classification of a message, decided before the
// extractor is consulted. Only unambiguous whole-message keywords qualify;
// everything else is intentNone and goes to the model.
type intent int

const (
	intentNone intent = iota
	intentReset
	intentSkip
	intentDone
	intentConfirm
)

// keywordSets maps normalized whole messages to intents. Matching is exact
// over the lowercased, trimmed message so "skip the cooler please" still
// reaches the extractor with its context intact.
var keywordSets = map[intent][]string{
	intentReset:   {"reset", "start over"},
	intentSkip:    {"skip"},
	intentDone:    {"done", "finish", "finalize"},
	intentConfirm: {"yes", "ok", "okay", "sure", "looks good", "confirm"},
}

// intentOrder fixes classification precedence.
var intentOrder = []intent{intentReset, intentSkip, intentDone, intentConfirm}

// keywordIntent classifies a message by exact keyword, or intentNone.
func keywordIntent(message string) intent {
	m := strings.ToLower(strings.TrimSpace(message))
	m = strings.TrimRight(m, ".!")
	for _, it := range intentOrder {
		for _, kw := range keywordSets[it] {
			if m == kw {
				return it
			}
		}
	}
	return intentNone
}

// resolveSelection matches a message against the options presented last
// turn: a bare rank number ("2") or a GIN picks that option directly.
func resolveSelection(message string, pending []configurator.Product) (configurator.Product, bool) {
	if len(pending) == 0 {
		return configurator.Product{}, false
	}
	m := strings.TrimSpace(message)
	m = strings.TrimPrefix(m, "#")
	if n, err := strconv.Atoi(m); err == nil {
		if n >= 1 && n <= len(pending) {
			return pending[n-1], true
		}
		return configurator.Product{}, false
	}
	for _, p := range pending {
		if strings.EqualFold(m, p.GIN) {
			return p, true
		}
	}
	return configurator.Product{}, false
}
