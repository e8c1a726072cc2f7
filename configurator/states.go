package configurator

type (
	// State is one of the seven configurator steps. Serialized names are
	// stable: they appear in persisted sessions and on the wire.
	State string
)

const (
	// StatePowerSource is S1, the mandatory entry state.
	StatePowerSource State = "power_source_selection"
	// StateFeeder is S2.
	StateFeeder State = "feeder_selection"
	// StateCooler is S3.
	StateCooler State = "cooler_selection"
	// StateInterconnector is S4.
	StateInterconnector State = "interconnector_selection"
	// StateTorch is S5.
	StateTorch State = "torch_selection"
	// StateAccessories is S6; exited only on an explicit done signal.
	StateAccessories State = "accessories_selection"
	// StateFinalize is S7; terminal on explicit confirmation with the
	// component threshold met.
	StateFinalize State = "finalize"
)

// stateOrder fixes the S1..S7 progression.
var stateOrder = []State{
	StatePowerSource,
	StateFeeder,
	StateCooler,
	StateInterconnector,
	StateTorch,
	StateAccessories,
	StateFinalize,
}

// stateKinds maps selection states to the kind they select.
var stateKinds = map[State]Kind{
	StatePowerSource:    KindPowerSource,
	StateFeeder:         KindFeeder,
	StateCooler:         KindCooler,
	StateInterconnector: KindInterconnector,
	StateTorch:          KindTorch,
	StateAccessories:    KindAccessory,
}

// States returns the full S1..S7 progression in order.
func States() []State {
	out := make([]State, len(stateOrder))
	copy(out, stateOrder)
	return out
}

// Valid reports whether s is one of the seven states.
func (s State) Valid() bool {
	_, ok := stateKinds[s]
	return ok || s == StateFinalize
}

// Kind returns the component kind a selection state works on. The finalize
// state selects nothing.
func (s State) Kind() (Kind, bool) {
	k, ok := stateKinds[s]
	return k, ok
}

// StateFor returns the selection state for a component kind.
func StateFor(k Kind) (State, bool) {
	for s, sk := range stateKinds {
		if sk == k {
			return s, true
		}
	}
	return "", false
}

// index returns the position of s in the S1..S7 order, or -1.
func (s State) index() int {
	for i, st := range stateOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Before reports whether s precedes other in the S1..S7 order.
func (s State) Before(other State) bool {
	return s.index() >= 0 && other.index() >= 0 && s.index() < other.index()
}

// ActiveStates derives the ordered active path for a session. Before a power
// source is selected (app == nil) every state is active. Afterwards the path
// keeps S1 and S7 and the states whose kinds the applicability row marks Y.
func ActiveStates(app *Applicability) []State {
	if app == nil {
		return States()
	}
	out := []State{StatePowerSource}
	for _, s := range stateOrder[1 : len(stateOrder)-1] {
		k, _ := s.Kind()
		if app.Applicable(k) {
			out = append(out, s)
		}
	}
	return append(out, StateFinalize)
}

// NextActive returns the next active state strictly after current. The
// finalize state is its own successor.
func NextActive(current State, app *Applicability) State {
	active := ActiveStates(app)
	idx := current.index()
	for _, s := range active {
		if s.index() > idx {
			return s
		}
	}
	return StateFinalize
}

// IsActive reports whether s is on the active path.
func IsActive(s State, app *Applicability) bool {
	for _, st := range ActiveStates(app) {
		if st == s {
			return true
		}
	}
	return false
}

// DownstreamStates returns the active states strictly after s, in order. The
// downstream-clear cascade resets the cart entries and master bags of these
// states.
func DownstreamStates(s State, app *Applicability) []State {
	var out []State
	for _, st := range ActiveStates(app) {
		if st.index() > s.index() && st != StateFinalize {
			out = append(out, st)
		}
	}
	return out
}
