package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/compat"
)

// fakeRepo scripts Search and FindAllCompatible outcomes.
type fakeRepo struct {
	searchOut []configurator.Product
	searchErr error
	compatOut []configurator.Product
	compatErr error
	calls     []string
}

func (f *fakeRepo) LookupByName(ctx context.Context, kind configurator.Kind, raw string) ([]configurator.Product, error) {
	f.calls = append(f.calls, "lookup")
	return nil, nil
}

func (f *fakeRepo) Search(ctx context.Context, q Query) ([]configurator.Product, error) {
	f.calls = append(f.calls, "search")
	return f.searchOut, f.searchErr
}

func (f *fakeRepo) FindAllCompatible(ctx context.Context, kind configurator.Kind, p compat.Predicate) ([]configurator.Product, error) {
	f.calls = append(f.calls, "compatible")
	return f.compatOut, f.compatErr
}

func bagWith(attrs map[string]string) configurator.ParameterBag {
	var bag configurator.ParameterBag
	for k, v := range attrs {
		bag.Set(k, v)
	}
	return bag
}

func TestFindOptionsNoFallbackOnHits(t *testing.T) {
	repo := &fakeRepo{searchOut: []configurator.Product{{GIN: "1", Name: "Aristo 500ix", Kind: configurator.KindPowerSource}}}
	q := Query{Kind: configurator.KindPowerSource, Bag: bagWith(map[string]string{"current": "500 A"})}

	res, err := FindOptions(context.Background(), repo, q)
	require.NoError(t, err)
	require.False(t, res.Fallback)
	require.Len(t, res.Products, 1)
	require.Equal(t, []string{"search"}, repo.calls)
}

func TestFindOptionsFallsBackWhenFiltersMissEverything(t *testing.T) {
	repo := &fakeRepo{compatOut: []configurator.Product{{GIN: "2", Name: "RobustFeed U6", Kind: configurator.KindFeeder}}}
	q := Query{Kind: configurator.KindFeeder, Bag: bagWith(map[string]string{"wire_size": "0.045 inch"})}

	res, err := FindOptions(context.Background(), repo, q)
	require.NoError(t, err)
	require.True(t, res.Fallback)
	require.Len(t, res.Products, 1)
	require.Equal(t, []string{"search", "compatible"}, repo.calls)
}

func TestFindOptionsEmptyBagNeverFallsBack(t *testing.T) {
	repo := &fakeRepo{}
	res, err := FindOptions(context.Background(), repo, Query{Kind: configurator.KindTorch})
	require.NoError(t, err)
	require.False(t, res.Fallback)
	require.Empty(t, res.Products)
	require.Equal(t, []string{"search"}, repo.calls)
}

func TestFindOptionsPropagatesErrors(t *testing.T) {
	boom := errors.New("socket closed")
	repo := &fakeRepo{searchErr: boom}
	_, err := FindOptions(context.Background(), repo, Query{Kind: configurator.KindTorch})
	require.ErrorIs(t, err, boom)

	repo = &fakeRepo{compatErr: boom}
	q := Query{Kind: configurator.KindTorch, Bag: bagWith(map[string]string{"current": "300 A"})}
	_, err = FindOptions(context.Background(), repo, q)
	require.ErrorIs(t, err, boom)
}

func TestFoldNameAndNameMatch(t *testing.T) {
	require.Equal(t, "warrior400i", FoldName("  Warrior 400i "))
	require.True(t, NameMatch("warrior400i", "Warrior 400i CC/CV"))
	require.True(t, NameMatch("the Renegade ES 300i please", "Renegade ES 300i"))
	require.False(t, NameMatch("", "Warrior 400i"))
	require.False(t, NameMatch("aristo", ""))
}

func TestExpandTermMeasurements(t *testing.T) {
	require.Equal(t, []string{" 5m", " 5.0m"}, ExpandTerm("5m"))
	require.Equal(t, []string{" 5m", " 5.0m"}, ExpandTerm("5.0M"))
	require.Equal(t, []string{" 4.5m"}, ExpandTerm("4.5m"), "non-integral keeps its own form")
	require.Equal(t, []string{"0.035 inch"}, ExpandTerm("0.035 inch"))
	require.Equal(t, []string{"mig (gmaw)"}, ExpandTerm("MIG (GMAW)"))
}

func TestTermsGroupsPerAttribute(t *testing.T) {
	bag := bagWith(map[string]string{
		"current":      "300 A",
		"cable_length": "5m; 10m",
	})
	groups := Terms(bag)
	require.Len(t, groups, 2)
	// Attribute-name order: cable_length before current.
	require.Equal(t, []string{" 5m", " 5.0m", " 10m", " 10.0m"}, groups[0])
	require.Equal(t, []string{"300 a"}, groups[1])

	require.Empty(t, Terms(configurator.ParameterBag{}))
}

func TestSortAndCap(t *testing.T) {
	products := []configurator.Product{
		{GIN: "3", Name: "Warrior 500i"},
		{GIN: "1", Name: "Aristo 500ix"},
		{GIN: "2", Name: "Aristo 500ix"},
		{GIN: "4", Name: "Renegade ES 300i"},
		{GIN: "5", Name: "Fabricator EM 215i"},
		{GIN: "6", Name: "Rogue ES 180i"},
	}
	SortProducts(products)
	require.Equal(t, "Aristo 500ix", products[0].Name)
	require.Equal(t, "1", products[0].GIN)
	require.Equal(t, "2", products[1].GIN)

	capped := Cap(products)
	require.Len(t, capped, MaxResults)
}
