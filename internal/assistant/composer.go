package assistant

import (
	"fmt"
	"math/rand"
	"strings"

	"chat-assistant/internal/domain/model"
)

const maxSuggestions = 3

// Picker chooses one of n candidate templates and returns its index.
type Picker func(n int) int

// FirstPicker always picks the first template.
func FirstPicker(int) int { return 0 }

// RandomPicker picks uniformly at random.
func RandomPicker(n int) int { return rand.Intn(n) }

type Composer struct {
	pick    Picker
	catalog *Catalog
}

type ComposerOption func(*Composer)

// WithCatalog replaces the built-in replies. A nil catalog is ignored.
func WithCatalog(cat *Catalog) ComposerOption {
	return func(c *Composer) {
		if cat != nil {
			c.catalog = cat
		}
	}
}

// NewComposer returns a composer using pick for multi-template buckets; nil
// means random selection.
func NewComposer(pick Picker, opts ...ComposerOption) *Composer {
	if pick == nil {
		pick = RandomPicker
	}
	c := &Composer{pick: pick, catalog: DefaultCatalog()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose builds the reply body, suggestions, actions and confidence for one
// analyzed message.
func (c *Composer) Compose(a model.AnalyzedMessage, nc model.NormalizedContext, history []model.Message) model.Composition {
	body, templateID := c.selectTemplate(a.Category, a.Intent)
	body = personalize(body, nc, history)
	body += enrich(a.Entities)
	body = adjustTone(body, a)

	return model.Composition{
		Content:     body,
		TemplateID:  templateID,
		Suggestions: c.suggestionsFor(a.Category),
		Actions:     actionsFor(a),
		Confidence:  Confidence(a),
	}
}

func (c *Composer) selectTemplate(category, intent string) (string, string) {
	templates := c.catalog.Templates
	byIntent, ok := templates[category]
	if !ok {
		category = model.CategoryGeneral
		byIntent = templates[category]
	}
	bucket, ok := byIntent[intent]
	if !ok || len(bucket) == 0 {
		intent = "default"
		bucket = byIntent[intent]
	}
	if len(bucket) == 0 {
		category, intent = model.CategoryGeneral, "default"
		bucket = templates[category][intent]
	}
	idx := 0
	if len(bucket) > 1 {
		idx = c.pick(len(bucket))
		if idx < 0 || idx >= len(bucket) {
			idx = 0
		}
	}
	return bucket[idx], fmt.Sprintf("%s.%s.%d", category, intent, idx)
}

func personalize(body string, nc model.NormalizedContext, history []model.Message) string {
	section := nc.CurrentSection
	if section == "" || section == model.UnknownSection {
		section = defaultSectionName
	}
	level := nc.UserLevel
	if level == "" {
		level = defaultUserLevel
	}
	r := strings.NewReplacer(
		"{section}", section,
		"{userLevel}", level,
		"{previousTopic}", previousTopic(history),
	)
	return r.Replace(body)
}

func previousTopic(history []model.Message) string {
	last, ok := model.LastUserMessage(history)
	if !ok {
		return defaultPreviousTopic
	}
	if topic, ok := firstMatch(previousTopicTable, strings.ToLower(last.Content)); ok {
		return topic
	}
	return defaultPreviousTopic
}

func enrich(e model.Entities) string {
	var sb strings.Builder
	if len(e.Games) > 0 {
		sb.WriteString(gameInfoBlock(e.Games[0]))
	}
	if len(e.Amounts) > 0 {
		sb.WriteString(amountSuggestion(e.Amounts[0]))
	}
	return sb.String()
}

// adjustTone leaves the urgency prefix ahead of the sentiment prefix.
func adjustTone(body string, a model.AnalyzedMessage) string {
	switch a.Sentiment {
	case model.SentimentNegative:
		body = negativePrefix + body
	case model.SentimentPositive:
		body = positivePrefix + body
	}
	if a.Urgency == model.UrgencyHigh {
		body = urgencyPrefix + body
	}
	return body
}

func (c *Composer) suggestionsFor(category string) []string {
	list, ok := c.catalog.Suggestions[category]
	if !ok {
		list = c.catalog.Suggestions[model.CategoryGeneral]
	}
	if len(list) > maxSuggestions {
		list = list[:maxSuggestions]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

func actionsFor(a model.AnalyzedMessage) []model.Action {
	actions := []model.Action{}
	seen := map[string]bool{}
	add := func(t navTarget) {
		if seen[t.Section] {
			return
		}
		seen[t.Section] = true
		actions = append(actions, model.Action{
			ID:     "navigate_" + t.Section,
			Label:  t.Label,
			Action: "navigate",
			Data:   map[string]string{"section": t.Section},
		})
	}
	if t, ok := navigableCategories[a.Category]; ok {
		add(t)
	}
	for _, f := range a.Entities.Features {
		if t, ok := navigableFeatures[f]; ok {
			add(t)
		}
	}
	if len(a.Entities.Games) > 0 {
		add(navigableCategories["games"])
	}
	return actions
}

// Confidence scores how much signal the analysis found, clamped to [0.1, 1].
func Confidence(a model.AnalyzedMessage) float64 {
	conf := 0.5
	if a.Category != model.CategoryGeneral {
		conf += 0.2
	}
	if a.Intent != model.IntentGeneral {
		conf += 0.15
	}
	conf += clamp(float64(a.Entities.Count())*0.05, 0, 0.2)
	if a.Urgency == model.UrgencyHigh {
		conf -= 0.1
	}
	if a.Sentiment == model.SentimentNegative {
		conf -= 0.05
	}
	return clamp(conf, 0.1, 1.0)
}
