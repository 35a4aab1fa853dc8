package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_SetOrderIndependent(t *testing.T) {
	a := Default()
	a.JournalKeys = []string{"A", "B"}
	a.Keywords = []string{"lidar", "biomass"}

	b := Default()
	b.JournalKeys = []string{"B", "A"}
	b.Keywords = []string{"biomass", "lidar"}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_KeywordCaseFolded(t *testing.T) {
	a := Default()
	a.Keywords = []string{"LIDAR"}

	b := Default()
	b.Keywords = []string{"lidar"}

	// The matcher is case-insensitive, so casing cannot change the view.
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_DuplicatesIgnored(t *testing.T) {
	a := Default()
	a.JournalKeys = []string{"A", "A", "B"}

	b := Default()
	b.JournalKeys = []string{"A", "B"}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_SemanticChangesChangeHash(t *testing.T) {
	base := Default()

	changed := []Config{}

	c := base
	c.StateFilter = FilterSaved
	changed = append(changed, c)

	c = base
	c.SortKey = SortJournalName
	changed = append(changed, c)

	c = base
	c.Keywords = []string{"lidar"}
	changed = append(changed, c)

	c = base
	c.DateRange = RangeMonth
	changed = append(changed, c)

	c = base
	c.SearchScope = ScopeTitleOnly
	changed = append(changed, c)

	baseFP := Fingerprint(base)
	seen := map[string]bool{baseFP: true}
	for i, cfg := range changed {
		fp := Fingerprint(cfg)
		assert.False(t, seen[fp], "config %d collided with a previous fingerprint", i)
		seen[fp] = true
	}
}

func TestFingerprint_CustomBoundsOnlyMatterForCustomRange(t *testing.T) {
	a := Default()
	a.DateRange = RangeWeek
	a.CustomFrom = "2024-01-01"

	b := Default()
	b.DateRange = RangeWeek

	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	a.DateRange = RangeCustom
	b.DateRange = RangeCustom
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_Deterministic(t *testing.T) {
	cfg := Default()
	cfg.JournalKeys = []string{"1111-1111", "2222-2222"}
	cfg.Keywords = []string{"forest"}

	first := Fingerprint(cfg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Fingerprint(cfg))
	}
	assert.Len(t, first, 16)
}
