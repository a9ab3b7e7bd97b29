package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/stratboard/stratboard/pkg/apis/cache"
	"github.com/stratboard/stratboard/pkg/db/models"
)

// Screen identities, matching the dashboard routes.
const (
	PageVisionMission       = "/vision-mission"
	PageOKR                 = "/okr"
	PageSwot                = "/swot"
	PageCanvas              = "/canvas"
	PageStrategicFoundation = "/strategic-foundation"
)

const (
	contextCacheTTL = 2 * time.Minute
	maxOKRContext   = 5
)

// PageContext is the screen-specific slice of planning data folded into the
// system prompt. Only the fields for the current page are populated.
type PageContext struct {
	CurrentPage string `json:"current_page"`

	Vision  string `json:"vision,omitempty"`
	Mission string `json:"mission,omitempty"`

	Objectives []models.Objective   `json:"objectives,omitempty"`
	Swot       []models.SwotItem    `json:"swot,omitempty"`
	Canvas     []models.CanvasBlock `json:"canvas,omitempty"`
}

// Assembler fetches the minimal slice of planning data relevant to a screen.
// Query failures degrade to partial or empty context; a conversation never
// fails because enrichment failed.
type Assembler struct {
	store Store
	cache cache.Cache
}

func NewAssembler(store Store, cacheClient cache.Cache) *Assembler {
	return &Assembler{store: store, cache: cacheClient}
}

// ContextCacheKey is the cache key for a screen's assembled context; it is
// what mutation invalidation deletes.
func ContextCacheKey(page string) string {
	return "context" + page
}

// Assemble returns the context payload for the given screen. Unknown screens
// yield an empty payload.
func (a *Assembler) Assemble(ctx context.Context, page string) PageContext {
	if cached, ok := a.fromCache(page); ok {
		return cached
	}

	payload := PageContext{CurrentPage: page}
	switch page {
	case PageVisionMission:
		payload.Vision = "No vision set yet"
		payload.Mission = "No mission set yet"
		rows, err := a.store.CurrentVisionMission(ctx)
		if err != nil {
			log.WithError(err).Warn("could not load vision/mission for context")
			break
		}
		for _, row := range rows {
			switch row.Type {
			case models.VisionMissionTypeVision:
				payload.Vision = row.Content
			case models.VisionMissionTypeMission:
				payload.Mission = row.Content
			}
		}
	case PageOKR:
		rows, err := a.store.ActiveObjectives(ctx, maxOKRContext)
		if err != nil {
			log.WithError(err).Warn("could not load objectives for context")
			break
		}
		payload.Objectives = rows
	case PageSwot:
		rows, err := a.store.SwotItems(ctx)
		if err != nil {
			log.WithError(err).Warn("could not load SWOT items for context")
			break
		}
		payload.Swot = rows
	case PageCanvas:
		rows, err := a.store.CanvasBlocks(ctx)
		if err != nil {
			log.WithError(err).Warn("could not load canvas blocks for context")
			break
		}
		payload.Canvas = rows
	}

	a.toCache(page, payload)
	return payload
}

func (a *Assembler) fromCache(page string) (PageContext, bool) {
	if a.cache == nil {
		return PageContext{}, false
	}
	raw, err := a.cache.Get(ContextCacheKey(page))
	if err != nil || len(raw) == 0 {
		return PageContext{}, false
	}
	var payload PageContext
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.WithError(err).WithField("page", page).Warn("discarding bad cached context")
		return PageContext{}, false
	}
	return payload, true
}

func (a *Assembler) toCache(page string, payload PageContext) {
	if a.cache == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := a.cache.Set(ContextCacheKey(page), raw, contextCacheTTL); err != nil {
		log.WithError(err).WithField("page", page).Warn("could not cache context")
	}
}

// SystemPrompt folds the page context into the instructions sent to the
// completion endpoint, including the exact action phrasings the intent
// parser recognizes. The phrasings here and the pattern table must stay in
// sync.
func SystemPrompt(payload PageContext, companyName, assistantName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a helpful business planning assistant for %s. You help users with their vision, mission, OKRs, SWOT analysis, and business model canvas.",
		assistantName, companyName)

	switch payload.CurrentPage {
	case PageVisionMission:
		b.WriteString("\n\nCurrent Vision & Mission data:")
		fmt.Fprintf(&b, "\nVision: %q", payload.Vision)
		fmt.Fprintf(&b, "\nMission: %q", payload.Mission)
	case PageOKR:
		if len(payload.Objectives) > 0 {
			b.WriteString("\n\nCurrent OKRs:")
			for i, obj := range payload.Objectives {
				fmt.Fprintf(&b, "\n%d. %s (%d%% complete)", i+1, obj.Title, obj.Progress)
				for _, kr := range obj.KeyResults {
					fmt.Fprintf(&b, "\n   - %s: %g/%g %s", kr.Title, kr.CurrentValue, kr.TargetValue, kr.Unit)
				}
			}
		}
	case PageSwot:
		if len(payload.Swot) > 0 {
			b.WriteString("\n\nCurrent SWOT Analysis:")
			byCategory := map[string][]string{}
			for _, item := range payload.Swot {
				byCategory[item.Category] = append(byCategory[item.Category], item.Content)
			}
			for _, category := range []string{
				models.SwotCategoryStrength,
				models.SwotCategoryWeakness,
				models.SwotCategoryOpportunity,
				models.SwotCategoryThreat,
			} {
				if items := byCategory[category]; len(items) > 0 {
					fmt.Fprintf(&b, "\n%ss: %s", capitalize(category), strings.Join(items, ", "))
				}
			}
		}
	case PageCanvas:
		if len(payload.Canvas) > 0 {
			b.WriteString("\n\nBusiness Model Canvas data is available.")
		}
	}

	b.WriteString("\n\nBe concise, practical, and supportive. When asked about the current data, provide specific insights and suggestions based on what you can see.")

	b.WriteString(`

IMPORTANT: You have the ability to modify database content when the user asks. When you want to perform an action, include it in your response using these EXACT formats:

- To update vision: "I'll update the vision to: "[new vision text]""
- To update mission: "I'll update the mission to: "[new mission text]""
- To add core value: "I'll add a core value: "[value title]" - "[description]""
- To add strategic objective: "I'll add a strategic objective: "[objective title]" - "[description]""
- To add strategic pillar: "I'll add a strategic pillar: "[pillar name]" - "[description]""
- To create quarterly objective: "I'll create a objective: "[objective title]""
- To add SWOT item: "I'll add to [strength/weakness/opportunity/threat]: "[item text]""

Always explain what you're doing and why. Ask for confirmation for major changes.`)

	return b.String()
}
