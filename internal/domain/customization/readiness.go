package customization

import "fmt"

// Readiness is the completeness of a design.  States are ordered; each one
// implies the conditions of the ones before it.
type Readiness int

const (
	// ReadinessEmpty means no location is selected.
	ReadinessEmpty Readiness = iota
	// ReadinessLocationsOnly means at least one selected location lacks a logo.
	ReadinessLocationsOnly
	// ReadinessLogosAssigned means every selected location has a logo.
	ReadinessLogosAssigned
	// ReadinessReady means logos are assigned and terms are accepted.  Quote
	// and sample requests are only allowed here.
	ReadinessReady
)

var readinessNames = [...]string{"EMPTY", "LOCATIONS_ONLY", "LOGOS_ASSIGNED", "READY"}

func (r Readiness) String() string {
	if r < ReadinessEmpty || r > ReadinessReady {
		return fmt.Sprintf("Readiness(%d)", int(r))
	}
	return readinessNames[r]
}

// MarshalText encodes the readiness by name.
func (r Readiness) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText decodes a readiness name.
func (r *Readiness) UnmarshalText(b []byte) error {
	for i, n := range readinessNames {
		if n == string(b) {
			*r = Readiness(i)
			return nil
		}
	}
	return fmt.Errorf("customization: unknown readiness %q", string(b))
}

// IsReady reports whether r is ReadinessReady.
func (r Readiness) IsReady() bool { return r == ReadinessReady }

// ComputeReadiness derives the readiness of a set of placements.  It depends
// only on its arguments.
func ComputeReadiness(placements []Placement, termsAccepted bool) Readiness {
	if len(placements) == 0 {
		return ReadinessEmpty
	}
	for _, p := range placements {
		if !p.IsConfigured() {
			return ReadinessLocationsOnly
		}
	}
	if !termsAccepted {
		return ReadinessLogosAssigned
	}
	return ReadinessReady
}

//Personal.AI order the ending
