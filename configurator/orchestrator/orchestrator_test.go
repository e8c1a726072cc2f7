package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/catalog"
	"github.com/beedev/recommenderv2/configurator/compat"
	"github.com/beedev/recommenderv2/configurator/compose"
	"github.com/beedev/recommenderv2/configurator/events"
	"github.com/beedev/recommenderv2/configurator/extract"
	"github.com/beedev/recommenderv2/configurator/orchestrator"
	"github.com/beedev/recommenderv2/configurator/store"
	archinmem "github.com/beedev/recommenderv2/features/archive/mongo/clients/mongo/inmem"
	catinmem "github.com/beedev/recommenderv2/features/catalog/neo4j/clients/neo4j/inmem"
	sessinmem "github.com/beedev/recommenderv2/features/session/redis/clients/redis/inmem"
)

const (
	aristoGIN      = "0446200880"
	warriorGIN     = "0445100880"
	renegadeGIN    = "0445250880"
	retiredGIN     = "0440000000"
	feederGIN      = "F001"
	benchFeederGIN = "F002"
	coolerGIN      = "C001"
	interGIN       = "I001"
	torchGIN       = "T001"
	waterTorchGIN  = "T002"
	remoteGIN      = "A001"
	trolleyGIN     = "A002"
)

// fixtureProducts is a small but realistic slice of the welding catalogue:
// three power sources (one retired), two feeders, a cooler, an
// interconnection set, two torches and two accessories.
func fixtureProducts() []configurator.Product {
	return []configurator.Product{
		{GIN: aristoGIN, Name: "Aristo 500ix", Kind: configurator.KindPowerSource,
			Description: "Heavy industrial pulse power source for demanding work.",
			Attributes:  map[string]string{"process": "MIG (GMAW)", "current": "500 A", "phase": "3-phase"}, Available: true},
		{GIN: warriorGIN, Name: "Warrior 400i", Kind: configurator.KindPowerSource,
			Description: "Multi-process workhorse.",
			Attributes:  map[string]string{"process": "MIG (GMAW)", "current": "400 A"}, Available: true},
		{GIN: renegadeGIN, Name: "Renegade ES 300i", Kind: configurator.KindPowerSource,
			Description: "Compact integrated unit for site work.",
			Attributes:  map[string]string{"process": "MIG (GMAW)", "current": "300 A", "portability": "portable"}, Available: true},
		{GIN: retiredGIN, Name: "Origo Mig 320", Kind: configurator.KindPowerSource,
			Description: "Retired model.",
			Attributes:  map[string]string{"process": "MIG (GMAW)", "current": "500 A"}, Available: false},
		{GIN: feederGIN, Name: "RobustFeed AP", Kind: configurator.KindFeeder,
			Description: "Rugged feeder for harsh environments.",
			Attributes:  map[string]string{"portability": "portable", "wire_size": "0.035 inch", "process": "MIG (GMAW)"}, Available: true},
		{GIN: benchFeederGIN, Name: "RobustFeed U6", Kind: configurator.KindFeeder,
			Description: "Bench feeder.",
			Attributes:  map[string]string{"portability": "stationary", "process": "MIG (GMAW)"}, Available: true},
		{GIN: coolerGIN, Name: "Cool 2", Kind: configurator.KindCooler,
			Description: "Compact cooling unit.",
			Attributes:  map[string]string{"application": "industrial"}, Available: true},
		{GIN: interGIN, Name: "Connection Set 10ft", Kind: configurator.KindInterconnector,
			Description: "Interconnection cable set.",
			Attributes:  map[string]string{"cable_length": "10 ft"}, Available: true},
		{GIN: torchGIN, Name: "PSF 305", Kind: configurator.KindTorch,
			Description: "General purpose welding torch.",
			Attributes:  map[string]string{"cooling_type": "air", "process": "MIG (GMAW)"}, Available: true},
		{GIN: waterTorchGIN, Name: "PSF 410w", Kind: configurator.KindTorch,
			Description: "High duty cycle torch.",
			Attributes:  map[string]string{"cooling_type": "water", "process": "MIG (GMAW)"}, Available: true},
		{GIN: remoteGIN, Name: "Remote AT1", Kind: configurator.KindAccessory, Category: configurator.CategoryRemote,
			Description: "Wired remote control.",
			Attributes:  map[string]string{"accessory_type": "remote control"}, Available: true},
		{GIN: trolleyGIN, Name: "Trolley 4W", Kind: configurator.KindAccessory, Category: configurator.CategoryPowerSourceAccessory,
			Description: "Four wheel trolley.",
			Attributes:  map[string]string{"accessory_type": "trolley"}, Available: true},
	}
}

func connectFixture(repo *catinmem.Repository) {
	repo.Connect(aristoGIN, feederGIN, benchFeederGIN, coolerGIN, interGIN, remoteGIN, trolleyGIN)
	repo.Connect(feederGIN, coolerGIN, interGIN, torchGIN, remoteGIN)
	repo.Connect(coolerGIN, interGIN, torchGIN)
	repo.Connect(renegadeGIN, torchGIN, remoteGIN, trolleyGIN)
}

type countingRepo struct {
	*catinmem.Repository
	lookups     int
	searches    int
	compatScans int
}

func (c *countingRepo) LookupByName(ctx context.Context, kind configurator.Kind, raw string) ([]configurator.Product, error) {
	c.lookups++
	return c.Repository.LookupByName(ctx, kind, raw)
}

func (c *countingRepo) Search(ctx context.Context, q catalog.Query) ([]configurator.Product, error) {
	c.searches++
	return c.Repository.Search(ctx, q)
}

func (c *countingRepo) FindAllCompatible(ctx context.Context, kind configurator.Kind, pred compat.Predicate) ([]configurator.Product, error) {
	c.compatScans++
	return c.Repository.FindAllCompatible(ctx, kind, pred)
}

type scriptedExtractor struct {
	outcomes map[string]extract.Outcome
	err      error
}

func (s *scriptedExtractor) Extract(ctx context.Context, in extract.Input) (extract.Outcome, error) {
	if s.err != nil {
		return extract.Outcome{}, s.err
	}
	return s.outcomes[in.Message], nil
}

type capturingEvents struct {
	mu  sync.Mutex
	got []events.Event
}

func (c *capturingEvents) Publish(ctx context.Context, ev events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, ev)
	return nil
}

func (c *capturingEvents) Close(ctx context.Context) error { return nil }

func (c *capturingEvents) types() []events.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Type, len(c.got))
	for i, ev := range c.got {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	t      *testing.T
	repo   *countingRepo
	cache  *sessinmem.Cache
	locker *sessinmem.Locker
	arch   *archinmem.Archive
	bus    *capturingEvents
	llm    *scriptedExtractor
	comp   *compose.Composer
	st     *store.Store
	orch   *orchestrator.Orchestrator
}

func newFixture(t *testing.T, mutate ...func(*orchestrator.Options)) *fixture {
	t.Helper()

	repo := &countingRepo{Repository: catinmem.New()}
	repo.Add(fixtureProducts()...)
	connectFixture(repo.Repository)

	cache := sessinmem.NewCache(time.Hour)
	locker := sessinmem.NewLocker()
	arch := archinmem.New()
	st, err := store.New(store.Options{Cache: cache, Archive: arch})
	require.NoError(t, err, "store must construct")

	bus := &capturingEvents{}
	llm := &scriptedExtractor{outcomes: make(map[string]extract.Outcome)}
	comp := compose.New(compose.Options{})
	table := configurator.NewApplicabilityTable(map[string]configurator.Applicability{
		renegadeGIN: {
			Feeder:         configurator.FlagNo,
			Cooler:         configurator.FlagNo,
			Interconnector: configurator.FlagNo,
			Torch:          configurator.FlagYes,
			Accessories:    configurator.FlagYes,
		},
	}, configurator.DefaultApplicability())

	seq := 0
	opts := orchestrator.Options{
		Store:         st,
		Locker:        locker,
		Repository:    repo,
		Extractor:     llm,
		Composer:      comp,
		Events:        bus,
		Applicability: table,
		Now:           func() time.Time { return time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("session-%d", seq)
		},
	}
	for _, m := range mutate {
		m(&opts)
	}
	orch, err := orchestrator.New(opts)
	require.NoError(t, err, "orchestrator must construct")

	return &fixture{t: t, repo: repo, cache: cache, locker: locker, arch: arch, bus: bus, llm: llm, comp: comp, st: st, orch: orch}
}

func (f *fixture) script(message string, out extract.Outcome) {
	f.llm.outcomes[message] = out
}

func (f *fixture) handle(req orchestrator.Request) *orchestrator.Response {
	f.t.Helper()
	resp, err := f.orch.Handle(context.Background(), req)
	require.NoError(f.t, err, "turn %q must not error", req.Message)
	return resp
}

func (f *fixture) say(sessionID, message string) *orchestrator.Response {
	return f.handle(orchestrator.Request{SessionID: sessionID, Message: message})
}

func (f *fixture) session(id string) *configurator.Session {
	f.t.Helper()
	sess, err := f.st.Get(context.Background(), id)
	require.NoError(f.t, err, "session %s must be in the cache", id)
	return sess
}

func (f *fixture) archived() int {
	f.t.Helper()
	stats, err := f.arch.Stats(context.Background())
	require.NoError(f.t, err)
	return int(stats.Total)
}

func updatesOutcome(kind configurator.Kind, conf float64, attrs map[string]string) extract.Outcome {
	return extract.Outcome{
		Updates:    map[configurator.Kind]map[string]string{kind: attrs},
		Confidence: map[configurator.Kind]float64{kind: conf},
	}
}

func mentionOutcome(kind configurator.Kind, name string, conf float64) extract.Outcome {
	return extract.Outcome{
		DirectMentions: map[configurator.Kind]string{kind: name},
		Confidence:     map[configurator.Kind]float64{kind: conf},
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	valid := func() orchestrator.Options {
		cache := sessinmem.NewCache(0)
		st, err := store.New(store.Options{Cache: cache})
		require.NoError(t, err)
		return orchestrator.Options{
			Store:      st,
			Locker:     sessinmem.NewLocker(),
			Repository: catinmem.New(),
			Extractor:  &scriptedExtractor{},
			Composer:   compose.New(compose.Options{}),
		}
	}

	cases := []struct {
		name    string
		mutate  func(*orchestrator.Options)
		wantErr string
	}{
		{"missing store", func(o *orchestrator.Options) { o.Store = nil }, "store is required"},
		{"missing locker", func(o *orchestrator.Options) { o.Locker = nil }, "locker is required"},
		{"missing repository", func(o *orchestrator.Options) { o.Repository = nil }, "repository is required"},
		{"missing extractor", func(o *orchestrator.Options) { o.Extractor = nil }, "extractor is required"},
		{"missing composer", func(o *orchestrator.Options) { o.Composer = nil }, "composer is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := valid()
			tc.mutate(&opts)
			_, err := orchestrator.New(opts)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}

	_, err := orchestrator.New(valid())
	require.NoError(t, err, "full wiring must construct")
}

func TestFullConfigurationPath(t *testing.T) {
	f := newFixture(t)
	f.script("I need 500 amps for MIG welding",
		updatesOutcome(configurator.KindPowerSource, 0.9, map[string]string{"current": "500 A", "process": "MIG (GMAW)"}))
	f.script("portable, 0.035 wire",
		updatesOutcome(configurator.KindFeeder, 0.85, map[string]string{"portability": "portable", "wire_size": "0.035 inch", "process": "MIG (GMAW)"}))
	f.script("an industrial cooler",
		updatesOutcome(configurator.KindCooler, 0.8, map[string]string{"application": "industrial"}))
	f.script("10 ft interconnection",
		updatesOutcome(configurator.KindInterconnector, 0.8, map[string]string{"cable_length": "10 ft"}))
	f.script("air cooled torch",
		updatesOutcome(configurator.KindTorch, 0.8, map[string]string{"cooling_type": "air"}))

	resp := f.say("", "I need 500 amps for MIG welding")
	id := resp.SessionID
	require.Equal(t, configurator.StatePowerSource, resp.State, "state holds at S1 until an explicit selection")
	require.Len(t, resp.Options, 1, "only the 500 A unit matches; the retired one is filtered")
	require.Equal(t, aristoGIN, resp.Options[0].GIN)

	sess := f.session(id)
	require.Equal(t, "500 A", sess.Master.Bag(configurator.KindPowerSource).Attributes["current"])
	require.Equal(t, "MIG (GMAW)", sess.Master.Bag(configurator.KindPowerSource).Attributes["process"])

	resp = f.say(id, "yes")
	require.Equal(t, configurator.StateFeeder, resp.State)
	require.Equal(t, configurator.StatusSelected, resp.Cart.PowerSource.Status)
	require.Equal(t, aristoGIN, resp.Cart.PowerSource.Product.GIN)
	require.Empty(t, resp.Options, "a commit clears the presented options")

	resp = f.say(id, "portable, 0.035 wire")
	require.Len(t, resp.Options, 1)
	require.Equal(t, feederGIN, resp.Options[0].GIN)
	resp = f.say(id, "yes")
	require.Equal(t, configurator.StateCooler, resp.State)

	resp = f.say(id, "an industrial cooler")
	require.Len(t, resp.Options, 1)
	require.Equal(t, coolerGIN, resp.Options[0].GIN)
	resp = f.say(id, "yes")
	require.Equal(t, configurator.StateInterconnector, resp.State)

	resp = f.say(id, "10 ft interconnection")
	require.Len(t, resp.Options, 1)
	resp = f.say(id, "yes")
	require.Equal(t, configurator.StateTorch, resp.State)

	resp = f.say(id, "air cooled torch")
	require.Len(t, resp.Options, 1)
	require.Equal(t, torchGIN, resp.Options[0].GIN)
	resp = f.say(id, "yes")
	require.Equal(t, configurator.StateAccessories, resp.State)

	resp = f.say(id, "done")
	require.Equal(t, configurator.StateFinalize, resp.State)
	require.False(t, resp.Completed)

	resp = f.say(id, "confirm")
	require.True(t, resp.Completed)
	require.Equal(t, configurator.StateFinalize, resp.State)
	cart := resp.Cart
	require.Equal(t, 5, cart.RealComponents())
	require.Equal(t, f.comp.Completed("", resp.Cart), resp.Message)

	require.Equal(t, 1, f.archived(), "completion archives exactly one record")
	stats, err := f.arch.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Finalized)

	require.Contains(t, f.bus.types(), events.TypeCreated)
	require.Contains(t, f.bus.types(), events.TypeCompleted)
}

func TestApplicabilityShortensPath(t *testing.T) {
	f := newFixture(t)
	f.script("I want the Renegade ES 300i", mentionOutcome(configurator.KindPowerSource, "Renegade ES 300i", 0.95))
	f.script("the PSF 305 torch", mentionOutcome(configurator.KindTorch, "PSF 305", 0.9))

	resp := f.say("", "I want the Renegade ES 300i")
	id := resp.SessionID
	require.Equal(t, configurator.StateTorch, resp.State, "inapplicable states are skipped after the S1 commit")
	require.Equal(t, renegadeGIN, resp.Cart.PowerSource.Product.GIN)
	require.Equal(t, configurator.StatusNotApplicable, resp.Cart.Feeder.Status)
	require.Equal(t, configurator.StatusNotApplicable, resp.Cart.Cooler.Status)
	require.Equal(t, configurator.StatusNotApplicable, resp.Cart.Interconnector.Status)
	require.Contains(t, resp.Message, f.comp.NotApplicableNotice("", []configurator.Kind{
		configurator.KindFeeder, configurator.KindCooler, configurator.KindInterconnector,
	}))

	sess := f.session(id)
	require.Equal(t, []configurator.State{
		configurator.StatePowerSource,
		configurator.StateTorch,
		configurator.StateAccessories,
		configurator.StateFinalize,
	}, configurator.ActiveStates(sess.Applicability))

	resp = f.say(id, "the PSF 305 torch")
	require.Equal(t, configurator.StateAccessories, resp.State)
	require.Equal(t, torchGIN, resp.Cart.Torch.Product.GIN)
}

func TestMasterOverrideThenReplaceCascades(t *testing.T) {
	f := newFixture(t)
	f.script("I need 500 amps for MIG welding",
		updatesOutcome(configurator.KindPowerSource, 0.9, map[string]string{"current": "500 A", "process": "MIG (GMAW)"}))
	f.script("a portable feeder",
		updatesOutcome(configurator.KindFeeder, 0.8, map[string]string{"portability": "portable"}))
	f.script("actually make it 300 amps",
		updatesOutcome(configurator.KindPowerSource, 0.85, map[string]string{"current": "300 A"}))

	resp := f.say("", "I need 500 amps for MIG welding")
	id := resp.SessionID
	f.say(id, "yes")
	resp = f.say(id, "a portable feeder")
	require.Equal(t, configurator.StateFeeder, resp.State)
	require.Len(t, resp.Options, 1)

	resp = f.say(id, "actually make it 300 amps")
	require.Equal(t, configurator.StateFeeder, resp.State, "a master-level override does not move the state")
	require.Equal(t, aristoGIN, resp.Cart.PowerSource.Product.GIN, "no cascade before an actual product replacement")
	require.Equal(t, "300 A", resp.Master.Bag(configurator.KindPowerSource).Attributes["current"], "latest value wins")
	require.Equal(t, "MIG (GMAW)", resp.Master.Bag(configurator.KindPowerSource).Attributes["process"], "untouched fields survive")
	require.Equal(t, "portable", resp.Master.Bag(configurator.KindFeeder).Attributes["portability"])
	require.Len(t, resp.Options, 1, "the power source search re-runs against the revised bag")
	require.Equal(t, renegadeGIN, resp.Options[0].GIN)

	resp = f.say(id, "yes")
	require.Equal(t, renegadeGIN, resp.Cart.PowerSource.Product.GIN)
	require.Equal(t, configurator.StateTorch, resp.State, "the replacement re-derives the active path")
	require.Equal(t, configurator.StatusNotApplicable, resp.Cart.Feeder.Status)
	require.Empty(t, resp.Master.Bag(configurator.KindFeeder).Attributes, "the cascade zeroes downstream bags")
}

func TestSkipAtPowerSourceRejected(t *testing.T) {
	f := newFixture(t)
	resp := f.say("", "skip")
	require.Equal(t, configurator.StatePowerSource, resp.State)
	require.Equal(t, f.comp.RejectSkipOfPowerSource(""), resp.Message)
	require.Equal(t, configurator.StatusUnset, resp.Cart.PowerSource.Status)

	sess := f.session(resp.SessionID)
	require.Len(t, sess.Log, 2, "the rejected turn is still logged")
}

func TestSkipAdvancesOptionalStates(t *testing.T) {
	f := newFixture(t)
	f.script("I need 500 amps for MIG welding",
		updatesOutcome(configurator.KindPowerSource, 0.9, map[string]string{"current": "500 A", "process": "MIG (GMAW)"}))

	resp := f.say("", "I need 500 amps for MIG welding")
	id := resp.SessionID
	f.say(id, "yes")

	resp = f.say(id, "skip")
	require.Equal(t, configurator.StateCooler, resp.State)
	require.Equal(t, configurator.StatusSkipped, resp.Cart.Feeder.Status)
	require.Contains(t, resp.Message, f.comp.SkipNotice("", configurator.KindFeeder))
	require.Contains(t, resp.Message, f.comp.PromptFor("", configurator.KindCooler))
}

func TestThresholdBlocksFinalize(t *testing.T) {
	f := newFixture(t, func(o *orchestrator.Options) { o.MinRealComponents = 3 })
	f.script("I need 500 amps for MIG welding",
		updatesOutcome(configurator.KindPowerSource, 0.9, map[string]string{"current": "500 A", "process": "MIG (GMAW)"}))

	resp := f.say("", "I need 500 amps for MIG welding")
	id := resp.SessionID
	f.say(id, "yes")
	resp = f.say(id, "done")
	require.Equal(t, configurator.StateFinalize, resp.State)

	resp = f.say(id, "confirm")
	require.False(t, resp.Completed)
	require.Contains(t, resp.Message, f.comp.ThresholdNotMet("", 1, 3))
	require.Equal(t, configurator.StateFeeder, resp.State, "a refused finalization bounces to the first open slot")
	require.Equal(t, 0, f.archived(), "nothing is archived on refusal")
}

func TestArchiveOutageDoesNotBlockCompletion(t *testing.T) {
	f := newFixture(t)
	f.script("I want the Renegade ES 300i", mentionOutcome(configurator.KindPowerSource, "Renegade ES 300i", 0.95))

	resp := f.say("", "I want the Renegade ES 300i")
	id := resp.SessionID
	f.say(id, "done")

	f.arch.SetError(errors.New("archive down"))
	resp = f.say(id, "confirm")
	require.True(t, resp.Completed, "an archive outage never blocks completion")
	require.Contains(t, f.bus.types(), events.TypeCompleted)

	sess := f.session(id)
	require.True(t, sess.Completed, "the completed session is still persisted")
}

func TestExpiredSessionStartsFresh(t *testing.T) {
	f := newFixture(t)
	resp := f.say("ghost", "hello again")
	require.Equal(t, "ghost", resp.SessionID, "the client keeps its session handle")
	require.Equal(t, f.comp.SessionExpired(""), resp.Message)
	require.Equal(t, configurator.StatePowerSource, resp.State)
	require.Equal(t, configurator.NewMasterRecord(), resp.Master, "no prior state is carried over")

	sess := f.session("ghost")
	require.Empty(t, sess.Log)
	require.Contains(t, f.bus.types(), events.TypeCreated)
}

func TestConfirmTwiceDoesNotDoubleCommit(t *testing.T) {
	f := newFixture(t)
	f.script("I need 500 amps for MIG welding",
		updatesOutcome(configurator.KindPowerSource, 0.9, map[string]string{"current": "500 A", "process": "MIG (GMAW)"}))

	resp := f.say("", "I need 500 amps for MIG welding")
	id := resp.SessionID
	first := f.say(id, "yes")
	require.Equal(t, configurator.StateFeeder, first.State)

	second := f.say(id, "yes")
	require.Equal(t, first.State, second.State)
	require.Equal(t, first.Cart, second.Cart, "replaying a confirmation must not change the cart")
	require.Equal(t, f.comp.PromptFor("", configurator.KindFeeder), second.Message)
}

func TestResetIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.script("I need 500 amps for MIG welding",
		updatesOutcome(configurator.KindPowerSource, 0.9, map[string]string{"current": "500 A", "process": "MIG (GMAW)"}))

	resp := f.say("", "I need 500 amps for MIG welding")
	id := resp.SessionID
	f.say(id, "yes")

	r1 := f.handle(orchestrator.Request{SessionID: id, Reset: true})
	require.Equal(t, f.comp.Greeting(""), r1.Message)
	s1 := f.session(id)
	require.Empty(t, s1.Log)
	require.Equal(t, configurator.StatePowerSource, s1.CurrentState)
	require.Equal(t, configurator.NewMasterRecord(), s1.Master)

	r2 := f.say(id, "reset")
	require.Equal(t, r1.Message, r2.Message)
	s2 := f.session(id)
	require.Equal(t, s1, s2, "two resets in a row leave the same fresh state")

	var resets int
	for _, typ := range f.bus.types() {
		if typ == events.TypeReset {
			resets++
		}
	}
	require.Equal(t, 2, resets)
}

func TestNoSearchWithoutSignal(t *testing.T) {
	f := newFixture(t)
	f.script("hello there", extract.Outcome{})

	resp := f.say("", "hello there")
	require.Equal(t, f.comp.PromptFor("", configurator.KindPowerSource), resp.Message)
	require.Zero(t, f.repo.searches, "no attribute search without a bag field or mention")
	require.Zero(t, f.repo.lookups)
	require.Zero(t, f.repo.compatScans)
}

func TestFallbackWhenFiltersMatchNothing(t *testing.T) {
	f := newFixture(t)
	f.script("I need 900 amps", updatesOutcome(configurator.KindPowerSource, 0.8, map[string]string{"current": "900 A"}))

	resp := f.say("", "I need 900 amps")
	require.Len(t, resp.Options, 3, "the fallback lists every available compatible unit")
	require.Contains(t, resp.Message, "No exact match")
	require.Equal(t, 1, f.repo.searches)
	require.Equal(t, 1, f.repo.compatScans, "the compatibility-only rerun fires exactly once")
}

func TestRankAndGINSelection(t *testing.T) {
	f := newFixture(t)
	f.script("MIG welding", updatesOutcome(configurator.KindPowerSource, 0.7, map[string]string{"process": "MIG (GMAW)"}))

	resp := f.say("", "MIG welding")
	id := resp.SessionID
	require.Len(t, resp.Options, 3)
	require.Equal(t, "Aristo 500ix", resp.Options[0].Name, "options are name-ordered")

	resp = f.say(id, "2")
	require.Equal(t, renegadeGIN, resp.Cart.PowerSource.Product.GIN, "a bare rank selects that option")

	f2 := newFixture(t)
	f2.script("MIG welding", updatesOutcome(configurator.KindPowerSource, 0.7, map[string]string{"process": "MIG (GMAW)"}))
	resp = f2.say("", "MIG welding")
	resp = f2.say(resp.SessionID, warriorGIN)
	require.Equal(t, warriorGIN, resp.Cart.PowerSource.Product.GIN, "a GIN selects that option")
	require.Equal(t, configurator.StateFeeder, resp.State)
}

func TestAccessoryCategoryRouting(t *testing.T) {
	f := newFixture(t)
	f.script("I want the Renegade ES 300i", mentionOutcome(configurator.KindPowerSource, "Renegade ES 300i", 0.95))
	f.script("the PSF 305 torch", mentionOutcome(configurator.KindTorch, "PSF 305", 0.9))
	f.script("add a remote control", updatesOutcome(configurator.KindAccessory, 0.7, map[string]string{"accessory_type": "remote control"}))

	resp := f.say("", "I want the Renegade ES 300i")
	id := resp.SessionID
	f.say(id, "the PSF 305 torch")

	resp = f.say(id, "add a remote control")
	require.Equal(t, configurator.StateAccessories, resp.State)
	require.Len(t, resp.Options, 1, "the category narrows out the compatible trolley")
	require.Equal(t, remoteGIN, resp.Options[0].GIN)

	resp = f.say(id, "yes")
	require.Equal(t, configurator.StateAccessories, resp.State, "accessories are multi-valued; the state stays put")
	require.Len(t, resp.Cart.Accessories, 1)

	resp = f.say(id, "done")
	require.Equal(t, configurator.StateFinalize, resp.State)
	resp = f.say(id, "confirm")
	require.True(t, resp.Completed, "power source, torch and accessory meet the default threshold")
}

func TestRepositoryOutagePersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.script("I need 500 amps for MIG welding",
		updatesOutcome(configurator.KindPowerSource, 0.9, map[string]string{"current": "500 A", "process": "MIG (GMAW)"}))

	resp := f.say("", "I need 500 amps for MIG welding")
	id := resp.SessionID
	before := f.session(id)

	f.repo.SetError(fmt.Errorf("%w: connection refused", configurator.ErrRepository))
	resp = f.say(id, "I need 500 amps for MIG welding")
	require.Equal(t, f.comp.Unavailable(""), resp.Message)
	require.Equal(t, before.CurrentState, resp.State)

	after := f.session(id)
	require.Equal(t, before, after, "a failed turn persists nothing, not even the log")
}

func TestExtractionFailurePersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.script("I need 500 amps for MIG welding",
		updatesOutcome(configurator.KindPowerSource, 0.9, map[string]string{"current": "500 A", "process": "MIG (GMAW)"}))

	resp := f.say("", "I need 500 amps for MIG welding")
	id := resp.SessionID
	before := f.session(id)

	f.llm.err = fmt.Errorf("%w: model timeout", configurator.ErrExtraction)
	resp = f.say(id, "something new")
	require.Equal(t, f.comp.ExtractionFallback(""), resp.Message)

	after := f.session(id)
	require.Equal(t, before, after)
}

func TestClarificationPersistsLogOnly(t *testing.T) {
	f := newFixture(t)
	f.script("help", extract.Outcome{
		NeedsClarification:    true,
		ClarificationQuestion: "What welding process will you use?",
	})

	resp := f.say("", "help")
	require.Equal(t, "What welding process will you use?", resp.Message)

	sess := f.session(resp.SessionID)
	require.Len(t, sess.Log, 2, "the exchange is logged")
	require.Equal(t, configurator.StatePowerSource, sess.CurrentState)
	require.Equal(t, configurator.NewMasterRecord(), sess.Master, "no other mutation happens")
}

func TestConcurrentTurnRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.locker.Acquire(context.Background(), "busy-session")
	require.NoError(t, err)

	_, err = f.orch.Handle(context.Background(), orchestrator.Request{SessionID: "busy-session", Message: "hi"})
	require.ErrorIs(t, err, store.ErrSessionBusy)
}

func TestStateSnapshot(t *testing.T) {
	f := newFixture(t)
	f.script("MIG welding", updatesOutcome(configurator.KindPowerSource, 0.7, map[string]string{"process": "MIG (GMAW)"}))

	resp := f.say("", "MIG welding")
	snap, err := f.orch.State(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Equal(t, resp.State, snap.State)
	require.Equal(t, resp.Options, snap.Options)
	require.Empty(t, snap.Message, "snapshots carry no prompt")

	_, err = f.orch.State(context.Background(), "missing")
	require.ErrorIs(t, err, configurator.ErrSessionExpired)
}

func TestLanguageFollowsRequest(t *testing.T) {
	f := newFixture(t)
	resp := f.handle(orchestrator.Request{Language: "es"})
	require.Equal(t, f.comp.Greeting("es"), resp.Message)

	sess := f.session(resp.SessionID)
	require.Equal(t, "es", sess.Language)

	resp = f.say(resp.SessionID, "skip")
	require.Equal(t, f.comp.RejectSkipOfPowerSource("es"), resp.Message, "the session language sticks across turns")
}
