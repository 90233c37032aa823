package customization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

type recordingObserver struct {
	added   []LogoID
	removed []LogoID
}

func (o *recordingObserver) LogoAdded(a LogoAsset)   { o.added = append(o.added, a.ID) }
func (o *recordingObserver) LogoRemoved(a LogoAsset) { o.removed = append(o.removed, a.ID) }

func TestLogoRegistry_AddAssignsFreshIDs(t *testing.T) {
	r := NewLogoRegistry(WithIDGenerator(seqIDs()))

	id1 := r.Add("  Acme  ", "s3://logos/acme.png")
	id2 := r.Add("Globex", "s3://logos/globex.png")

	assert.Equal(t, LogoID("L1"), id1)
	assert.Equal(t, LogoID("L2"), id2)
	assert.Equal(t, 2, r.Len())

	a, ok := r.Get(id1)
	require.True(t, ok)
	assert.Equal(t, "Acme", a.Name)
	assert.Equal(t, ImageRef("s3://logos/acme.png"), a.ImageRef)
}

func TestLogoRegistry_AddSkipsCollidingIDs(t *testing.T) {
	ids := []LogoID{"dup", "dup", "", "fresh"}
	i := 0
	r := NewLogoRegistry(WithIDGenerator(func() LogoID {
		id := ids[i]
		i++
		return id
	}))

	assert.Equal(t, LogoID("dup"), r.Add("a", "ref-a"))
	assert.Equal(t, LogoID("fresh"), r.Add("b", "ref-b"))

	a, _ := r.Get("dup")
	assert.Equal(t, "a", a.Name, "existing entry must not be overwritten")
}

func TestLogoRegistry_DefaultGeneratorIsUnique(t *testing.T) {
	r := NewLogoRegistry()
	seen := make(map[LogoID]bool)
	for i := 0; i < 200; i++ {
		id := r.Add("logo", "ref")
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestLogoRegistry_RenameAndRemoveUnknownAreNoOps(t *testing.T) {
	r := NewLogoRegistry(WithIDGenerator(seqIDs()))
	obs := &recordingObserver{}
	r.Subscribe(obs)
	r.Add("Acme", "ref")

	assert.False(t, r.Rename("missing", "x"))
	assert.False(t, r.Remove("missing"))
	assert.Empty(t, obs.removed)
	assert.Equal(t, 1, r.Len())
}

func TestLogoRegistry_RenameKeepsIdentity(t *testing.T) {
	r := NewLogoRegistry(WithIDGenerator(seqIDs()))
	id := r.Add("Acme", "ref")

	require.True(t, r.Rename(id, "Acme Corp"))
	a, _ := r.Get(id)
	assert.Equal(t, "Acme Corp", a.Name)
	assert.Equal(t, ImageRef("ref"), a.ImageRef)
}

func TestLogoRegistry_RemoveNotifiesAndKeepsOrder(t *testing.T) {
	r := NewLogoRegistry(WithIDGenerator(seqIDs()))
	obs := &recordingObserver{}
	r.Subscribe(obs)
	r.Add("a", "ra")
	r.Add("b", "rb")
	r.Add("c", "rc")

	require.True(t, r.Remove("L1"))

	assert.Equal(t, []LogoID{"L1", "L2", "L3"}, obs.added)
	assert.Equal(t, []LogoID{"L1"}, obs.removed)
	first, ok := r.First()
	require.True(t, ok)
	assert.Equal(t, LogoID("L2"), first.ID)
	assert.Equal(t, []LogoID{"L2", "L3"}, []LogoID{r.List()[0].ID, r.List()[1].ID})
}

func TestLogoRegistry_ListIsACopy(t *testing.T) {
	r := NewLogoRegistry(WithIDGenerator(seqIDs()))
	r.Add("a", "ra")

	l := r.List()
	l[0].Name = "mutated"

	a, _ := r.Get("L1")
	assert.Equal(t, "a", a.Name)
}

func TestLogoRegistry_Restore(t *testing.T) {
	r := NewLogoRegistry()
	obs := &recordingObserver{}
	r.Subscribe(obs)

	require.NoError(t, r.Restore(LogoAsset{ID: "keep", Name: "Keep", ImageRef: "ref"}))
	assert.Empty(t, obs.added, "restore must not notify")

	err := r.Restore(LogoAsset{ID: "keep"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLogoDuplicate))

	err = r.Restore(LogoAsset{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestLogoRegistry_FirstOnEmpty(t *testing.T) {
	_, ok := NewLogoRegistry().First()
	assert.False(t, ok)
}

//Personal.AI order the ending
