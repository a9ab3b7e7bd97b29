package assistant

import (
	"encoding/json"
	"fmt"
)

// Confirmation is the human-readable summary of a pending action shown to
// the operator before they approve or reject it.
type Confirmation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Warning     string `json:"warning,omitempty"`
}

// Present formats an action intent for the confirmation dialog. Unknown
// kinds fall back to a generic summary with the raw parameters.
func Present(kind Kind, params Params) Confirmation {
	switch kind {
	case KindUpdateVision:
		return Confirmation{
			Title:       "Update Vision Statement",
			Description: "The AI wants to update your vision to:",
			Content:     params.Content,
			Warning:     "This will create a new version of your vision statement.",
		}
	case KindUpdateMission:
		return Confirmation{
			Title:       "Update Mission Statement",
			Description: "The AI wants to update your mission to:",
			Content:     params.Content,
			Warning:     "This will create a new version of your mission statement.",
		}
	case KindCreateObjective:
		return Confirmation{
			Title:       "Create New Objective",
			Description: "The AI wants to create a new objective:",
			Content:     params.Title,
		}
	case KindAddCoreValue:
		return Confirmation{
			Title:       "Add Core Value",
			Description: "The AI wants to add a core value:",
			Content:     fmt.Sprintf("%s - %s", params.Title, params.Description),
		}
	case KindAddStrategicObjective:
		return Confirmation{
			Title:       "Add Strategic Objective",
			Description: "The AI wants to add a strategic objective:",
			Content:     fmt.Sprintf("%s - %s", params.Title, params.Description),
		}
	case KindAddStrategicPillar:
		return Confirmation{
			Title:       "Add Strategic Pillar",
			Description: "The AI wants to add a strategic pillar:",
			Content:     fmt.Sprintf("%s - %s", params.Name, params.Description),
		}
	case KindAddSwotItem:
		return Confirmation{
			Title:       "Add SWOT Item",
			Description: fmt.Sprintf("The AI wants to add a %s:", params.Category),
			Content:     params.Content,
		}
	default:
		raw, err := json.Marshal(params)
		if err != nil {
			raw = []byte("{}")
		}
		return Confirmation{
			Title:       "AI Action",
			Description: "The AI wants to perform an action",
			Content:     string(raw),
		}
	}
}
