package customization

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seqIDs() IDGenerator {
	n := 0
	return func() LogoID {
		n++
		return LogoID(fmt.Sprintf("L%d", n))
	}
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestStore(t *testing.T, pt ProductType) (*Store, *LogoRegistry) {
	t.Helper()
	tmpl, err := DefaultCatalog().Template(pt)
	require.NoError(t, err)
	reg := NewLogoRegistry(WithIDGenerator(seqIDs()))
	return NewStore(tmpl, reg), reg
}

func newTestDesign(t *testing.T, pt ProductType) *Design {
	t.Helper()
	d, err := NewDesign(DefaultCatalog(), pt, "#1a1a1a",
		WithDesignID("design-1"),
		WithClock(fixedClock),
		WithLogoIDGenerator(seqIDs()),
	)
	require.NoError(t, err)
	return d
}

//Personal.AI order the ending
