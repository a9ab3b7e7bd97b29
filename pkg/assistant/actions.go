package assistant

import (
	"regexp"

	"github.com/pkg/errors"
)

// Kind identifies one of the structured actions the assistant may request.
type Kind string

const (
	KindUpdateVision          Kind = "update_vision"
	KindUpdateMission         Kind = "update_mission"
	KindAddCoreValue          Kind = "add_core_value"
	KindAddStrategicObjective Kind = "add_strategic_objective"
	KindAddStrategicPillar    Kind = "add_strategic_pillar"
	KindCreateObjective       Kind = "create_objective"
	KindAddSwotItem           Kind = "add_swot_item"

	// Reserved kinds: tiered but not yet parseable or executable.
	KindUpdateObjective   Kind = "update_objective"
	KindDeleteObjective   Kind = "delete_objective"
	KindCreateKeyResult   Kind = "create_key_result"
	KindUpdateKeyResult   Kind = "update_key_result"
	KindUpdateSwotItem    Kind = "update_swot_item"
	KindDeleteSwotItem    Kind = "delete_swot_item"
	KindUpdateCanvasBlock Kind = "update_canvas_block"
)

// SafetyTier controls whether an action executes immediately or is held for
// operator confirmation first.
type SafetyTier string

const (
	TierLow    SafetyTier = "low"
	TierMedium SafetyTier = "medium"
	TierHigh   SafetyTier = "high"
)

// Params is the parameter bag extracted for an action. Which fields are set
// depends on the kind.
type Params struct {
	Content     string `json:"content,omitempty"`
	Title       string `json:"title,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	ImpactLevel string `json:"impact_level,omitempty"`
	Timeframe   string `json:"timeframe,omitempty"`
}

// Intent is a parsed, typed request to mutate planning data, derived from
// assistant-generated text. It is held in memory while pending confirmation
// and consumed exactly once by the executor.
type Intent struct {
	Kind   Kind   `json:"kind"`
	Params Params `json:"params"`
}

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// Tables holds the ordered pattern table and the safety tier map. They are
// built once at startup and passed into the parser, classifier and executor
// so tests can inject alternates.
type Tables struct {
	patterns []pattern
	safety   map[Kind]SafetyTier
}

// DefaultTables returns the built-in pattern and safety tables. Pattern
// order is a contract: the parser returns the first match in this order, so
// reordering entries changes behavior.
func DefaultTables() *Tables {
	return &Tables{
		patterns: []pattern{
			{KindUpdateVision, regexp.MustCompile(`(?i)(?:update|change|modify|set)\s+(?:the\s+)?vision\s+to:?\s*"([^"]+)"`)},
			{KindUpdateMission, regexp.MustCompile(`(?i)(?:update|change|modify|set)\s+(?:the\s+)?mission\s+to:?\s*"([^"]+)"`)},
			{KindAddCoreValue, regexp.MustCompile(`(?i)add\s+a\s+core\s+value:?\s*"([^"]+)"\s*-\s*"([^"]+)"`)},
			{KindAddStrategicObjective, regexp.MustCompile(`(?i)add\s+a\s+strategic\s+objective:?\s*"([^"]+)"\s*-\s*"([^"]+)"`)},
			{KindAddStrategicPillar, regexp.MustCompile(`(?i)add\s+a\s+strategic\s+pillar:?\s*"([^"]+)"\s*-\s*"([^"]+)"`)},
			{KindCreateObjective, regexp.MustCompile(`(?i)(?:create|add|new)\s+(?:a\s+)?objective:?\s*"([^"]+)"`)},
			{KindAddSwotItem, regexp.MustCompile(`(?i)add\s+to\s+(strength|weakness|opportunity|threat):?\s*"([^"]+)"`)},
		},
		safety: map[Kind]SafetyTier{
			KindUpdateVision:          TierHigh,
			KindUpdateMission:         TierHigh,
			KindAddCoreValue:          TierMedium,
			KindAddStrategicObjective: TierMedium,
			KindAddStrategicPillar:    TierMedium,
			KindCreateObjective:       TierMedium,
			KindAddSwotItem:           TierLow,
			KindUpdateObjective:       TierMedium,
			KindDeleteObjective:       TierHigh,
			KindCreateKeyResult:       TierLow,
			KindUpdateKeyResult:       TierLow,
			KindUpdateSwotItem:        TierMedium,
			KindDeleteSwotItem:        TierMedium,
			KindUpdateCanvasBlock:     TierMedium,
		},
	}
}

// Kinds returns every kind present in the safety table.
func (t *Tables) Kinds() []Kind {
	kinds := make([]Kind, 0, len(t.safety))
	for k := range t.safety {
		kinds = append(kinds, k)
	}
	return kinds
}

// Classify maps an action kind to its safety tier. A missing kind is a
// programming error (a parser/classifier table mismatch), not a runtime
// condition; the executor refuses to run such an intent.
func (t *Tables) Classify(kind Kind) (SafetyTier, error) {
	tier, ok := t.safety[kind]
	if !ok {
		return "", errors.Errorf("action kind %q has no safety tier", kind)
	}
	return tier, nil
}
