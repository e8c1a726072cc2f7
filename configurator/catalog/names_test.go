package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beedev/recommenderv2/configurator"
)

func TestLoadNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product_names.yaml")
	doc := `version: "1"
power_sources:
  - Warrior 500i
  - Aristo 500ix
  - Renegade ES 300i
feeders:
  - RobustFeed U6
coolers:
  - COOL 2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	names, err := LoadNames(path)
	require.NoError(t, err)

	require.Equal(t,
		[]string{"Aristo 500ix", "Renegade ES 300i", "Warrior 500i"},
		names.For(configurator.KindPowerSource, 0))
	require.Equal(t, []string{"Aristo 500ix"}, names.For(configurator.KindPowerSource, 1))
	require.Empty(t, names.For(configurator.KindTorch, 10))

	require.Equal(t, []string{"Warrior 500i"}, names.Resolve(configurator.KindPowerSource, "the warrior500i please"))
	require.Empty(t, names.Resolve(configurator.KindPowerSource, "pico 160"))
}

func TestLoadNamesMissingFile(t *testing.T) {
	_, err := LoadNames(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
