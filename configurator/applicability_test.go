package configurator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultApplicabilityIsAllYes(t *testing.T) {
	app := DefaultApplicability()
	for _, k := range Kinds() {
		require.True(t, app.Applicable(k), "kind %s", k)
	}
	require.Empty(t, app.NotApplicableKinds())
}

func TestPowerSourceAlwaysApplicable(t *testing.T) {
	app := Applicability{
		Feeder:         FlagNo,
		Cooler:         FlagNo,
		Interconnector: FlagNo,
		Torch:          FlagNo,
		Accessories:    FlagNo,
	}
	require.True(t, app.Applicable(KindPowerSource))
	require.Equal(t,
		[]Kind{KindFeeder, KindCooler, KindInterconnector, KindTorch, KindAccessory},
		app.NotApplicableKinds())
}

func TestNormalizeFillsUnsetFlags(t *testing.T) {
	sparse := Applicability{Cooler: FlagNo}
	row := sparse.normalize()
	require.Equal(t, FlagYes, row.Feeder)
	require.Equal(t, FlagNo, row.Cooler)
	require.Equal(t, FlagYes, row.Torch)
}

func TestTableLookupFallsBackToDefault(t *testing.T) {
	table := NewApplicabilityTable(map[string]Applicability{
		"0446200880": {Cooler: FlagNo, Interconnector: FlagNo},
	}, DefaultApplicability())

	row := table.Lookup("0446200880")
	require.False(t, row.Applicable(KindCooler))
	require.False(t, row.Applicable(KindInterconnector))
	require.True(t, row.Applicable(KindFeeder))

	row = table.Lookup("unknown-gin")
	require.Empty(t, row.NotApplicableKinds())

	var nilTable *ApplicabilityTable
	require.Empty(t, nilTable.Lookup("anything").NotApplicableKinds())
}

func TestLoadApplicabilityTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "applicability.yaml")
	doc := `version: "1"
default_policy:
  feeder: Y
  cooler: Y
  interconnector: Y
  torch: Y
  accessories: Y
power_sources:
  "0445250880":
    feeder: N
    cooler: N
    interconnector: N
  "0446200880":
    cooler: N
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	table, err := LoadApplicabilityTable(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Size())

	row := table.Lookup("0445250880")
	require.Equal(t, []Kind{KindFeeder, KindCooler, KindInterconnector}, row.NotApplicableKinds())

	// Sparse rows read as Y for the flags the file leaves out.
	row = table.Lookup("0446200880")
	require.Equal(t, []Kind{KindCooler}, row.NotApplicableKinds())
}

func TestLoadApplicabilityTableErrors(t *testing.T) {
	_, err := LoadApplicabilityTable(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("power_sources: [broken"), 0o600))
	_, err = LoadApplicabilityTable(path)
	require.Error(t, err)
}
