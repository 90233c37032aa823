package customization

import (
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// ChangeKind classifies a store mutation.
type ChangeKind string

const (
	ChangeSelected   ChangeKind = "selected"
	ChangeDeselected ChangeKind = "deselected"
	ChangeLogo       ChangeKind = "logo"
	ChangeSize       ChangeKind = "size"
	ChangeRotation   ChangeKind = "rotation"
	ChangeRepaired   ChangeKind = "repaired"
	ChangeAssigned   ChangeKind = "assigned"
)

// Change describes one applied mutation.
type Change struct {
	Kind     ChangeKind
	Location LocationID
	Revision uint64
}

// ChangeListener is called synchronously after every mutation.
type ChangeListener func(Change)

// Store holds the selection set and the placement state of every selected
// location for one product template.
//
// Invariants maintained by every method:
//   - each selected location has exactly one state, Configured or NeedsLogo;
//   - a Configured state always references a logo present in the registry;
//   - sizes and rotations are within their clamped ranges.
//
// Store is not safe for concurrent use.
type Store struct {
	template  ProductTemplate
	registry  *LogoRegistry
	selection []LocationID
	states    map[LocationID]PlacementState
	revision  uint64
	listeners map[int]ChangeListener
	nextSub   int
}

// NewStore returns an empty store bound to template and registry.  The store
// subscribes to the registry so that logo removal repairs placements and logo
// addition completes deferred assignments.
func NewStore(template ProductTemplate, registry *LogoRegistry) *Store {
	s := &Store{
		template:  template.clone(),
		registry:  registry,
		states:    make(map[LocationID]PlacementState),
		listeners: make(map[int]ChangeListener),
	}
	registry.Subscribe(s)
	return s
}

// Template returns the template the store was built for.
func (s *Store) Template() ProductTemplate { return s.template.clone() }

// Revision increases by one on every applied mutation.
func (s *Store) Revision() uint64 { return s.revision }

// OnChange registers l and returns a function that unregisters it.
func (s *Store) OnChange(l ChangeListener) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	return func() { delete(s.listeners, id) }
}

// ToggleLocation selects id if it is not selected and deselects it otherwise.
// It reports whether the location is selected afterwards.
func (s *Store) ToggleLocation(id LocationID) (bool, error) {
	loc, err := s.location(id)
	if err != nil {
		return false, err
	}
	if s.IsSelected(id) {
		s.deselect(id)
		s.emit(ChangeDeselected, id)
		return false, nil
	}
	s.selectWithDefaults(loc)
	s.emit(ChangeSelected, id)
	return true, nil
}

// SetLogo assigns logo to id.  A logo absent from the registry leaves the
// store untouched.  An unselected location is selected first.
func (s *Store) SetLogo(id LocationID, logo LogoID) error {
	loc, err := s.location(id)
	if err != nil {
		return err
	}
	if !s.registry.Contains(logo) {
		return nil
	}
	cur := s.ensureSelected(loc)
	s.states[id] = Configured{Config: PlacementConfig{
		LogoID:          logo,
		SizePercent:     cur.Size(),
		RotationDegrees: cur.Rotation(),
	}}
	s.emit(ChangeLogo, id)
	return nil
}

// SetSize sets the size of id, clamped to [MinSizePercent, MaxSizePercent].
// A NaN size resets to the location default.
func (s *Store) SetSize(id LocationID, sizePercent float64) error {
	loc, err := s.location(id)
	if err != nil {
		return err
	}
	cur := s.ensureSelected(loc)
	size := ClampSize(sizePercent, loc.DefaultSizePercent())
	s.states[id] = MatchState(cur,
		func(c Configured) PlacementState {
			c.Config.SizePercent = size
			return c
		},
		func(n NeedsLogo) PlacementState {
			n.SizePercent = size
			return n
		})
	s.emit(ChangeSize, id)
	return nil
}

// SetRotation sets the rotation of id, clamped to [-180, 180] degrees.
func (s *Store) SetRotation(id LocationID, degrees float64) error {
	loc, err := s.location(id)
	if err != nil {
		return err
	}
	cur := s.ensureSelected(loc)
	rot := ClampRotation(degrees)
	s.states[id] = MatchState(cur,
		func(c Configured) PlacementState {
			c.Config.RotationDegrees = rot
			return c
		},
		func(n NeedsLogo) PlacementState {
			n.RotationDegrees = rot
			return n
		})
	s.emit(ChangeRotation, id)
	return nil
}

// IsSelected reports whether id is in the selection set.
func (s *Store) IsSelected(id LocationID) bool {
	_, ok := s.states[id]
	return ok
}

// Selection returns the selected location ids in insertion order.
func (s *Store) Selection() []LocationID {
	out := make([]LocationID, len(s.selection))
	copy(out, s.selection)
	return out
}

// State returns the state of a selected location.
func (s *Store) State(id LocationID) (PlacementState, bool) {
	st, ok := s.states[id]
	return st, ok
}

// Placements returns every selected location with its state, in selection
// order.
func (s *Store) Placements() []Placement {
	out := make([]Placement, 0, len(s.selection))
	for _, id := range s.selection {
		loc, _ := s.template.Location(id)
		out = append(out, Placement{Location: loc, State: s.states[id]})
	}
	return out
}

// LogoAdded completes deferred assignments: every NeedsLogo placement receives
// the registry's first logo.
func (s *Store) LogoAdded(LogoAsset) {
	first, ok := s.registry.First()
	if !ok {
		return
	}
	for _, id := range s.selection {
		if n, waiting := s.states[id].(NeedsLogo); waiting {
			s.states[id] = Configured{Config: PlacementConfig{
				LogoID:          first.ID,
				SizePercent:     n.SizePercent,
				RotationDegrees: n.RotationDegrees,
			}}
			s.emit(ChangeAssigned, id)
		}
	}
}

// LogoRemoved repairs every placement that referenced the removed logo: it is
// reassigned to the registry's first remaining logo, or flagged NeedsLogo when
// none remain.
func (s *Store) LogoRemoved(removed LogoAsset) {
	first, hasFirst := s.registry.First()
	for _, id := range s.selection {
		c, ok := s.states[id].(Configured)
		if !ok || c.Config.LogoID != removed.ID {
			continue
		}
		if hasFirst {
			c.Config.LogoID = first.ID
			s.states[id] = c
		} else {
			s.states[id] = NeedsLogo{
				SizePercent:     c.Config.SizePercent,
				RotationDegrees: c.Config.RotationDegrees,
			}
		}
		s.emit(ChangeRepaired, id)
	}
}

// restore appends a placement while rebuilding a persisted design.  The state
// is normalised: values are clamped, and a missing or dangling logo is
// replaced by the registry's first logo when there is one.
func (s *Store) restore(id LocationID, state PlacementState) error {
	loc, err := s.location(id)
	if err != nil {
		return err
	}
	if s.IsSelected(id) {
		return apperrors.New(apperrors.ErrCodeSnapshotInvalid, "location listed twice").
			WithDetail("location=" + string(id))
	}
	size := ClampSize(state.Size(), loc.DefaultSizePercent())
	rot := ClampRotation(state.Rotation())
	logo, hasLogo := LogoOf(state)
	if !hasLogo || !s.registry.Contains(logo) {
		hasLogo = false
		if first, ok := s.registry.First(); ok {
			logo, hasLogo = first.ID, true
		}
	}
	s.selection = append(s.selection, id)
	if hasLogo {
		s.states[id] = Configured{Config: PlacementConfig{LogoID: logo, SizePercent: size, RotationDegrees: rot}}
	} else {
		s.states[id] = NeedsLogo{SizePercent: size, RotationDegrees: rot}
	}
	s.revision++
	return nil
}

func (s *Store) location(id LocationID) (PlacementLocation, error) {
	loc, ok := s.template.Location(id)
	if !ok {
		return PlacementLocation{}, apperrors.New(apperrors.ErrCodeLocationUnknown, "unknown placement location").
			WithDetail("product=" + string(s.template.Type) + " location=" + string(id))
	}
	return loc, nil
}

func (s *Store) defaultState(loc PlacementLocation) PlacementState {
	size := loc.DefaultSizePercent()
	if first, ok := s.registry.First(); ok {
		return Configured{Config: PlacementConfig{
			LogoID:          first.ID,
			SizePercent:     size,
			RotationDegrees: DefaultRotationDegrees,
		}}
	}
	return NeedsLogo{SizePercent: size, RotationDegrees: DefaultRotationDegrees}
}

func (s *Store) selectWithDefaults(loc PlacementLocation) PlacementState {
	st := s.defaultState(loc)
	s.selection = append(s.selection, loc.ID)
	s.states[loc.ID] = st
	return st
}

func (s *Store) ensureSelected(loc PlacementLocation) PlacementState {
	if st, ok := s.states[loc.ID]; ok {
		return st
	}
	st := s.selectWithDefaults(loc)
	s.emit(ChangeSelected, loc.ID)
	return st
}

func (s *Store) deselect(id LocationID) {
	delete(s.states, id)
	for i, sel := range s.selection {
		if sel == id {
			s.selection = append(s.selection[:i], s.selection[i+1:]...)
			return
		}
	}
}

func (s *Store) emit(kind ChangeKind, id LocationID) {
	s.revision++
	ch := Change{Kind: kind, Location: id, Revision: s.revision}
	for _, l := range s.listeners {
		l(ch)
	}
}

//Personal.AI order the ending
