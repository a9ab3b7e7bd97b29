package assistant

import "strings"

// Parse scans the model's reply against the ordered pattern table and
// returns the intent for the first pattern that matches, or nil when nothing
// matches. First match wins, in table order; multiple patterns can plausibly
// match overlapping text and the ordering is what makes the result
// deterministic. A nil result is the normal plain-reply path, not an error.
func (t *Tables) Parse(reply string) *Intent {
	for _, p := range t.patterns {
		match := p.re.FindStringSubmatch(reply)
		if match == nil {
			continue
		}
		return &Intent{
			Kind:   p.kind,
			Params: extractParams(p.kind, match),
		}
	}
	return nil
}

// extractParams maps quoted groups positionally to named fields, per kind.
func extractParams(kind Kind, match []string) Params {
	switch kind {
	case KindUpdateVision, KindUpdateMission:
		return Params{Content: match[1]}
	case KindAddCoreValue, KindAddStrategicObjective:
		return Params{Title: match[1], Description: match[2]}
	case KindAddStrategicPillar:
		return Params{Name: match[1], Description: match[2]}
	case KindCreateObjective:
		return Params{Title: match[1]}
	case KindAddSwotItem:
		return Params{
			Category: strings.ToLower(match[1]),
			Content:  match[2],
		}
	default:
		return Params{}
	}
}
