package configurator

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindsOrderAndValidity(t *testing.T) {
	kinds := Kinds()
	require.Equal(t, []Kind{
		KindPowerSource, KindFeeder, KindCooler,
		KindInterconnector, KindTorch, KindAccessory,
	}, kinds)

	for _, k := range kinds {
		require.True(t, k.Valid(), "kind %s", k)
	}
	require.False(t, Kind("Gearbox").Valid())
	require.False(t, Kind("").Valid())

	// Kinds hands out a copy, never the backing order.
	kinds[0] = "mutated"
	require.Equal(t, KindPowerSource, Kinds()[0])
}

func TestMultiValued(t *testing.T) {
	require.True(t, KindAccessory.MultiValued())
	for _, k := range Kinds() {
		if k == KindAccessory {
			continue
		}
		require.False(t, k.MultiValued(), "kind %s", k)
	}
}

func TestVocabularyAndAccepts(t *testing.T) {
	for _, k := range Kinds() {
		vocab := k.Vocabulary()
		require.NotEmpty(t, vocab, "kind %s", k)
		require.True(t, sort.StringsAreSorted(vocab), "kind %s", k)
		for _, attr := range vocab {
			require.True(t, k.Accepts(attr), "kind %s attr %s", k, attr)
		}
	}

	require.True(t, KindPowerSource.Accepts("current"))
	require.False(t, KindCooler.Accepts("wire_size"))
	require.False(t, KindPowerSource.Accepts("accessory_type"))
	require.Nil(t, Kind("Gearbox").Vocabulary())

	// Vocabulary hands out a copy.
	vocab := KindTorch.Vocabulary()
	vocab[0] = "mutated"
	require.NotEqual(t, "mutated", KindTorch.Vocabulary()[0])
}

func TestAccessoryCategories(t *testing.T) {
	cats := AccessoryCategories()
	require.Equal(t, []AccessoryCategory{
		CategoryPowerSourceAccessory, CategoryFeederAccessory,
		CategoryConnectivity, CategoryRemote, CategoryGeneral,
	}, cats)

	for _, c := range cats {
		require.True(t, c.Valid(), "category %s", c)
	}
	require.False(t, AccessoryCategory("Bogus").Valid())
	require.False(t, AccessoryCategory("").Valid())
}
