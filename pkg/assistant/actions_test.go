package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = []Kind{
	KindUpdateVision,
	KindUpdateMission,
	KindAddCoreValue,
	KindAddStrategicObjective,
	KindAddStrategicPillar,
	KindCreateObjective,
	KindAddSwotItem,
	KindUpdateObjective,
	KindDeleteObjective,
	KindCreateKeyResult,
	KindUpdateKeyResult,
	KindUpdateSwotItem,
	KindDeleteSwotItem,
	KindUpdateCanvasBlock,
}

// Every action kind has exactly one safety tier; the table is total.
func TestClassifyTotality(t *testing.T) {
	tables := DefaultTables()

	assert.Len(t, tables.Kinds(), len(allKinds))
	for _, kind := range allKinds {
		tier, err := tables.Classify(kind)
		require.NoError(t, err, "kind %s must have a tier", kind)
		assert.Contains(t, []SafetyTier{TierLow, TierMedium, TierHigh}, tier)
	}
}

func TestClassifyTiers(t *testing.T) {
	tables := DefaultTables()

	expected := map[Kind]SafetyTier{
		KindUpdateVision:    TierHigh,
		KindUpdateMission:   TierHigh,
		KindDeleteObjective: TierHigh,
		KindCreateObjective: TierMedium,
		KindAddSwotItem:     TierLow,
		KindCreateKeyResult: TierLow,
	}
	for kind, tier := range expected {
		got, err := tables.Classify(kind)
		require.NoError(t, err)
		assert.Equal(t, tier, got, "kind %s", kind)
	}
}

func TestClassifyUnknownKind(t *testing.T) {
	tables := DefaultTables()

	_, err := tables.Classify(Kind("drop_all_tables"))
	assert.Error(t, err)
}

// Every parseable kind must be classifiable; a pattern without a tier would
// let an intent reach the executor unclassified.
func TestEveryPatternKindHasTier(t *testing.T) {
	tables := DefaultTables()

	for _, p := range tables.patterns {
		_, err := tables.Classify(p.kind)
		assert.NoError(t, err, "pattern kind %s has no safety tier", p.kind)
	}
}
