package configurator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Canonical attribute forms. Extraction prompts instruct the model to emit
// these shapes; Normalize coerces near-misses and CheckCanonical re-checks
// every received value so a contract violation never reaches the master
// record.
var canonicalForms = map[string]*regexp.Regexp{
	"current":      regexp.MustCompile(`^\d+ A$`),
	"voltage":      regexp.MustCompile(`^\d+V$`),
	"phase":        regexp.MustCompile(`^(single-phase|3-phase)$`),
	"process":      regexp.MustCompile(`^[A-Za-z][A-Za-z -]* \([A-Z]+\)$`),
	"cooling_type": regexp.MustCompile(`^(water|air|none)$`),
	"wire_size":    regexp.MustCompile(`^0\.\d{3} inch$`),
	"cable_length": regexp.MustCompile(`^\d+ ft$`),
	"portability":  regexp.MustCompile(`^(portable|stationary)$`),
	"material":     regexp.MustCompile(`^[a-z][a-z0-9 /-]*$`),
}

// processNames maps lowercase process tokens to their canonical rendering.
// Order matters: earlier tokens win when a message matches several.
var processNames = []struct{ token, name string }{
	{"flux-cored", "Flux-Cored (FCAW)"},
	{"flux cored", "Flux-Cored (FCAW)"},
	{"fcaw", "Flux-Cored (FCAW)"},
	{"mig", "MIG (GMAW)"},
	{"gmaw", "MIG (GMAW)"},
	{"tig", "TIG (GTAW)"},
	{"gtaw", "TIG (GTAW)"},
	{"stick", "Stick (SMAW)"},
	{"smaw", "Stick (SMAW)"},
	{"mma", "Stick (SMAW)"},
	{"saw", "Submerged Arc (SAW)"},
}

var (
	digits    = regexp.MustCompile(`\d+`)
	decimal   = regexp.MustCompile(`\d*\.?\d+`)
	unitAfter = regexp.MustCompile(`(\d*\.?\d+)\s*([a-zA-Z'"]+)?`)
)

// Normalize coerces a raw extracted value into the canonical form for the
// attribute. Attributes without a canonical rule are lowercased and trimmed.
// Returns an error when the raw value cannot be coerced.
func Normalize(attr, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty value for %q", attr)
	}
	switch attr {
	case "current":
		n, err := leadingInt(raw)
		if err != nil {
			return "", fmt.Errorf("current %q: %w", raw, err)
		}
		return fmt.Sprintf("%d A", n), nil
	case "voltage":
		n, err := leadingInt(raw)
		if err != nil {
			return "", fmt.Errorf("voltage %q: %w", raw, err)
		}
		return fmt.Sprintf("%dV", n), nil
	case "phase":
		return normalizePhase(raw)
	case "process":
		return normalizeProcess(raw)
	case "cooling_type":
		return normalizeCooling(raw)
	case "wire_size":
		return normalizeWireSize(raw)
	case "cable_length":
		return normalizeCableLength(raw)
	case "portability":
		return normalizePortability(raw)
	case "material":
		v := strings.ToLower(raw)
		if !canonicalForms["material"].MatchString(v) {
			return "", fmt.Errorf("material %q is not a plain token", raw)
		}
		return v, nil
	default:
		return strings.ToLower(raw), nil
	}
}

// CheckCanonical validates that value already has the canonical form for the
// attribute. Attributes without a canonical rule only need to be non-empty.
func CheckCanonical(attr, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("empty value for %q", attr)
	}
	re, ok := canonicalForms[attr]
	if !ok {
		return nil
	}
	if !re.MatchString(value) {
		return fmt.Errorf("%q is not canonical for %q", value, attr)
	}
	return nil
}

// CanonicalAttributes returns the attribute names bound to a canonical form.
func CanonicalAttributes() []string {
	out := make([]string, 0, len(canonicalForms))
	for attr := range canonicalForms {
		out = append(out, attr)
	}
	return out
}

func leadingInt(raw string) (int, error) {
	m := digits.FindString(raw)
	if m == "" {
		return 0, fmt.Errorf("no numeric component")
	}
	return strconv.Atoi(m)
}

func normalizePhase(raw string) (string, error) {
	v := strings.ToLower(raw)
	switch {
	case strings.Contains(v, "single") || strings.HasPrefix(v, "1"):
		return "single-phase", nil
	case strings.Contains(v, "three") || strings.Contains(v, "3"):
		return "3-phase", nil
	}
	return "", fmt.Errorf("phase %q not recognized", raw)
}

func normalizeProcess(raw string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, p := range processNames {
		if v == p.token {
			return p.name, nil
		}
	}
	// Already canonical, e.g. "MIG (GMAW)".
	if canonicalForms["process"].MatchString(raw) {
		return raw, nil
	}
	// Tolerate qualified tokens such as "mig welding" or "pulsed tig".
	for _, p := range processNames {
		if strings.Contains(v, p.token) {
			return p.name, nil
		}
	}
	return "", fmt.Errorf("process %q not recognized", raw)
}

func normalizeCooling(raw string) (string, error) {
	v := strings.ToLower(raw)
	switch {
	case strings.Contains(v, "water") || strings.Contains(v, "liquid"):
		return "water", nil
	case strings.Contains(v, "air") || strings.Contains(v, "gas"):
		return "air", nil
	case strings.Contains(v, "none") || strings.Contains(v, "self"):
		return "none", nil
	}
	return "", fmt.Errorf("cooling type %q not recognized", raw)
}

func normalizeWireSize(raw string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.ReplaceAll(v, ",", ".")
	m := decimal.FindString(v)
	if m == "" {
		return "", fmt.Errorf("wire size %q has no numeric component", raw)
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return "", fmt.Errorf("wire size %q: %w", raw, err)
	}
	if strings.Contains(v, "mm") {
		f /= 25.4
	}
	// The canonical form carries three decimals below one inch, so anything
	// rounding to 1.000 is out of range too.
	if f <= 0 || f >= 0.9995 {
		return "", fmt.Errorf("wire size %q out of range", raw)
	}
	return fmt.Sprintf("%.3f inch", f), nil
}

func normalizeCableLength(raw string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	m := unitAfter.FindStringSubmatch(v)
	if m == nil {
		return "", fmt.Errorf("cable length %q has no numeric component", raw)
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", fmt.Errorf("cable length %q: %w", raw, err)
	}
	unit := m[2]
	switch {
	case strings.HasPrefix(unit, "m"):
		f *= 3.28084
	case unit == "" || strings.HasPrefix(unit, "f") || unit == "'":
		// Already feet.
	default:
		return "", fmt.Errorf("cable length unit %q not recognized", unit)
	}
	n := int(math.Round(f))
	if n <= 0 {
		return "", fmt.Errorf("cable length %q out of range", raw)
	}
	return fmt.Sprintf("%d ft", n), nil
}

func normalizePortability(raw string) (string, error) {
	v := strings.ToLower(raw)
	switch {
	case strings.Contains(v, "portab") || strings.Contains(v, "mobile"):
		return "portable", nil
	case strings.Contains(v, "station") || strings.Contains(v, "fixed"):
		return "stationary", nil
	}
	return "", fmt.Errorf("portability %q not recognized", raw)
}
