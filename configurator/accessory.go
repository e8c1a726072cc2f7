package configurator

import "strings"

// accessoryTerms maps user vocabulary to the catalogue category it names.
// Terms are matched as substrings of the normalized accessory_type value, in
// AccessoryCategories order, so a value naming two categories resolves to the
// earlier one deterministically.
var accessoryTerms = map[AccessoryCategory][]string{
	CategoryPowerSourceAccessory: {"trolley", "cart", "wheel", "undercarriage", "counterbalance", "lifting", "handle"},
	CategoryFeederAccessory:      {"spool", "reel", "liner", "guide tube", "strain relief"},
	CategoryConnectivity:         {"connectivity", "bluetooth", "wifi", "wireless", "network", "digital"},
	CategoryRemote:               {"remote", "pendant", "foot control", "foot pedal"},
}

// ClassifyAccessory resolves the accessory category an S6 search should
// constrain to, from the accessory_type values accumulated in the bag. An
// empty return means no term matched and the search spans every category.
func ClassifyAccessory(bag ParameterBag) AccessoryCategory {
	raw, ok := bag.Get("accessory_type")
	if !ok {
		return ""
	}
	for _, value := range strings.Split(raw, ";") {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		for _, cat := range AccessoryCategories() {
			for _, term := range accessoryTerms[cat] {
				if strings.Contains(value, term) {
					return cat
				}
			}
		}
	}
	return ""
}
