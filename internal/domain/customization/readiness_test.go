package customization

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeReadiness(t *testing.T) {
	configured := Placement{State: Configured{Config: PlacementConfig{LogoID: "L1", SizePercent: 35}}}
	waiting := Placement{State: NeedsLogo{SizePercent: 35}}

	cases := []struct {
		name  string
		ps    []Placement
		terms bool
		want  Readiness
	}{
		{"nothing selected", nil, false, ReadinessEmpty},
		{"nothing selected with terms", nil, true, ReadinessEmpty},
		{"one waiting", []Placement{waiting}, true, ReadinessLocationsOnly},
		{"mixed", []Placement{configured, waiting}, true, ReadinessLocationsOnly},
		{"all configured", []Placement{configured, configured}, false, ReadinessLogosAssigned},
		{"all configured with terms", []Placement{configured}, true, ReadinessReady},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeReadiness(tc.ps, tc.terms)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want == ReadinessReady, got.IsReady())
		})
	}
}

func TestReadiness_Text(t *testing.T) {
	for _, r := range []Readiness{ReadinessEmpty, ReadinessLocationsOnly, ReadinessLogosAssigned, ReadinessReady} {
		b, err := json.Marshal(r)
		require.NoError(t, err)
		var back Readiness
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, r, back)
	}
	assert.Equal(t, `"LOGOS_ASSIGNED"`, mustJSON(t, ReadinessLogosAssigned))
	assert.Equal(t, "Readiness(9)", Readiness(9).String())

	var r Readiness
	assert.Error(t, r.UnmarshalText([]byte("DONE")))
}

func TestReadiness_Ordering(t *testing.T) {
	assert.Less(t, int(ReadinessEmpty), int(ReadinessLocationsOnly))
	assert.Less(t, int(ReadinessLocationsOnly), int(ReadinessLogosAssigned))
	assert.Less(t, int(ReadinessLogosAssigned), int(ReadinessReady))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

//Personal.AI order the ending
