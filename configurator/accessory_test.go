package configurator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyAccessory(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want AccessoryCategory
	}{
		{"trolley", "trolley", CategoryPowerSourceAccessory},
		{"cart with case variance", "Transport Cart", CategoryPowerSourceAccessory},
		{"spool holder", "spool holder", CategoryFeederAccessory},
		{"liner", "teflon liner", CategoryFeederAccessory},
		{"bluetooth", "bluetooth adapter", CategoryConnectivity},
		{"remote", "remote control", CategoryRemote},
		{"foot pedal", "a foot pedal", CategoryRemote},
		{"unmatched term", "water hose", ""},
		{"second value matches", "water hose; remote control", CategoryRemote},
		{"blank values skipped", " ; ;trolley", CategoryPowerSourceAccessory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var bag ParameterBag
			bag.Set("accessory_type", tc.raw)
			require.Equal(t, tc.want, ClassifyAccessory(bag))
		})
	}
}

func TestClassifyAccessoryWithoutType(t *testing.T) {
	require.Equal(t, AccessoryCategory(""), ClassifyAccessory(ParameterBag{}))

	var bag ParameterBag
	bag.Set("cable_length", "10 ft")
	require.Equal(t, AccessoryCategory(""), ClassifyAccessory(bag))
}

// A value naming terms from two categories resolves to the one earlier in
// AccessoryCategories order, so repeat searches stay on the same category.
func TestClassifyAccessoryPrecedence(t *testing.T) {
	var bag ParameterBag
	bag.Set("accessory_type", "wireless remote")
	require.Equal(t, CategoryConnectivity, ClassifyAccessory(bag))

	bag.Set("accessory_type", "remote trolley")
	require.Equal(t, CategoryPowerSourceAccessory, ClassifyAccessory(bag))
}
