package assistant

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"chat-assistant/internal/domain/model"
)

const (
	recentActionsKept = 5
	patternMinActions = 3
	repeatThreshold   = 3
	activityWindow    = 5 * time.Minute
	highActivityCount = 10
	mediumActivityCnt = 5
	maxKeywords       = 10
	relevanceDivisor  = 5.0
	defaultConfidence = 0.3
	baseConfidence    = 0.5
	minKeywordLength  = 3
	exploringMinPages = 3
	exploringDistinct = 2
)

// DefaultContext is returned whenever the raw context cannot be used.
func DefaultContext(now time.Time) model.NormalizedContext {
	return model.NormalizedContext{
		CurrentPage:    model.DefaultPage,
		CurrentSection: model.UnknownSection,
		UserActivity: model.UserActivity{
			RecentActions: []model.UserAction{},
			Patterns:      []string{},
			ActivityLevel: model.ActivityLow,
		},
		VisibleContent: model.VisibleContent{
			Keywords:    []string{},
			Topics:      []string{},
			ContentType: "general",
		},
		PageContext:    pageContexts[model.DefaultPage],
		InferredIntent: model.DefaultIntent,
		Confidence:     defaultConfidence,
		Timestamp:      now,
	}
}

// NormalizeJSON decodes a raw client context and normalizes it. Empty, null or
// non-object payloads yield the default context.
func NormalizeJSON(data []byte, now time.Time) model.NormalizedContext {
	if len(data) == 0 {
		return DefaultContext(now)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return DefaultContext(now)
	}
	return Normalize(raw, now)
}

// Normalize turns a freeform client context into its canonical shape. It never
// fails; a panic while reading the input degrades to DefaultContext.
func Normalize(raw map[string]any, now time.Time) (nc model.NormalizedContext) {
	if raw == nil {
		return DefaultContext(now)
	}
	defer func() {
		if r := recover(); r != nil {
			nc = DefaultContext(now)
		}
	}()

	pageContent := asObject(raw["pageContent"])
	page, pageKnown := normalizePage(asString(raw["currentPage"]))
	sectionRaw := asString(pageContent["currentSection"])
	if sectionRaw == "" {
		sectionRaw = asString(raw["currentSection"])
	}
	section, sectionKnown := normalizeSection(sectionRaw)

	actions := parseActions(raw)
	activity := summarizeActivity(actions, now)
	visible := summarizeVisibleContent(visibleTexts(raw, pageContent))
	relevant := parseRelevantData(asObject(raw["relevantData"]))

	nc = model.NormalizedContext{
		CurrentPage:    page,
		CurrentSection: section,
		UserActivity:   activity,
		VisibleContent: visible,
		RelevantData:   relevant,
		SessionInfo:    parseSessionInfo(asObject(raw["sessionInfo"])),
		PageContext:    pageContexts[page],
		UserLevel:      strings.TrimSpace(asString(raw["userLevel"])),
		Timestamp:      now,
	}

	conf := baseConfidence
	if pageKnown {
		conf += 0.2
	}
	if sectionKnown {
		conf += 0.15
	}
	if len(actions) > 0 {
		conf += 0.1
	}
	if len(visible.Keywords) > 0 {
		conf += 0.1
	}
	if relevant.Any() {
		conf += 0.05
	}
	nc.Confidence = clamp(conf, 0, 1)
	nc.InferredIntent = inferIntent(nc)
	return nc
}

func normalizePage(p string) (string, bool) {
	key := strings.ToLower(strings.Trim(strings.TrimSpace(p), "/"))
	if page, ok := pageAliases[key]; ok {
		return page, key != ""
	}
	return model.DefaultPage, false
}

func normalizeSection(s string) (string, bool) {
	key := strings.ToLower(strings.Trim(strings.TrimSpace(s), "/#"))
	if _, ok := knownSections[key]; ok {
		return key, true
	}
	return model.UnknownSection, false
}

func parseActions(raw map[string]any) []model.UserAction {
	list := asSlice(raw["userActions"])
	if list == nil {
		list = asSlice(raw["recentActions"])
	}
	out := make([]model.UserAction, 0, len(list))
	for _, item := range list {
		obj := asObject(item)
		name := strings.TrimSpace(asString(obj["action"]))
		if name == "" {
			name = strings.TrimSpace(asString(obj["type"]))
		}
		if name == "" {
			continue
		}
		out = append(out, model.UserAction{
			Action:    name,
			Page:      strings.TrimSpace(asString(obj["page"])),
			Section:   strings.TrimSpace(asString(obj["section"])),
			Timestamp: asTime(obj["timestamp"]),
		})
	}
	return out
}

func summarizeActivity(actions []model.UserAction, now time.Time) model.UserActivity {
	recent := actions
	if len(recent) > recentActionsKept {
		recent = recent[len(recent)-recentActionsKept:]
	}
	kept := make([]model.UserAction, len(recent))
	copy(kept, recent)

	return model.UserActivity{
		RecentActions: kept,
		Patterns:      detectPatterns(actions),
		ActivityLevel: activityLevel(actions, now),
	}
}

func detectPatterns(actions []model.UserAction) []string {
	patterns := []string{}
	if len(actions) < patternMinActions {
		return patterns
	}

	counts := map[string]int{}
	order := []string{}
	pagesSeen := map[string]struct{}{}
	withPage := 0
	for _, a := range actions {
		if counts[a.Action] == 0 {
			order = append(order, a.Action)
		}
		counts[a.Action]++
		if a.Page != "" {
			withPage++
			pagesSeen[a.Page] = struct{}{}
		}
	}
	for _, name := range order {
		if counts[name] >= repeatThreshold {
			patterns = append(patterns, "repeated_"+name)
		}
	}
	if withPage >= exploringMinPages && len(pagesSeen) > exploringDistinct {
		patterns = append(patterns, "exploring_platform")
	}
	return patterns
}

func activityLevel(actions []model.UserAction, now time.Time) model.ActivityLevel {
	recent := 0
	for _, a := range actions {
		if a.Timestamp.IsZero() {
			continue
		}
		// future timestamps are clock skew, not activity
		if d := now.Sub(a.Timestamp); d >= 0 && d <= activityWindow {
			recent++
		}
	}
	switch {
	case recent >= highActivityCount:
		return model.ActivityHigh
	case recent >= mediumActivityCnt:
		return model.ActivityMedium
	default:
		return model.ActivityLow
	}
}

func visibleTexts(raw, pageContent map[string]any) []string {
	var texts []string
	texts = append(texts, asStrings(raw["visibleContent"])...)
	texts = append(texts, asStrings(pageContent["visibleText"])...)
	texts = append(texts, asStrings(pageContent["headings"])...)
	return texts
}

func summarizeVisibleContent(texts []string) model.VisibleContent {
	joined := strings.ToLower(strings.Join(texts, " "))
	keywords := extractKeywords(joined)

	relevant := 0
	for _, kw := range keywords {
		if _, ok := relevanceVocabulary[kw]; ok {
			relevant++
		}
	}

	contentType := "general"
	if name, ok := firstMatch(contentTypeRules, joined); ok {
		contentType = name
	}

	return model.VisibleContent{
		Keywords:       keywords,
		Topics:         topicsFor(keywords),
		ContentType:    contentType,
		RelevanceScore: clamp(float64(relevant)/relevanceDivisor, 0, 1),
	}
}

func extractKeywords(lower string) []string {
	freq := map[string]int{}
	order := []string{}
	for _, w := range words(lower) {
		if len(w) < minKeywordLength || !isASCIIAlnum(w) {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}
	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

func topicsFor(keywords []string) []string {
	topics := []string{}
	for _, group := range topicGroups {
	groupLoop:
		for _, kw := range keywords {
			for _, term := range group.Keywords {
				if strings.Contains(kw, term) {
					topics = append(topics, group.Name)
					break groupLoop
				}
			}
		}
	}
	return topics
}

func parseRelevantData(obj map[string]any) model.RelevantData {
	var rd model.RelevantData
	if g := asObject(obj["games"]); g != nil {
		rd.Games = &model.GamesData{
			HasData:      true,
			TotalGames:   asInt(g["totalGames"]),
			ActiveGames:  asInt(g["activeGames"]),
			PopularGames: asStrings(g["popularGames"]),
			TotalVolume:  asFloat(g["totalVolume"]),
		}
	}
	if s := asObject(obj["staking"]); s != nil {
		rd.Staking = &model.StakingData{
			HasData:     true,
			TotalStaked: asFloat(s["totalStaked"]),
			APY:         asFloat(s["apy"]),
			UserStaked:  asFloat(s["userStaked"]),
			Pools:       asStrings(s["pools"]),
		}
	}
	if m := asObject(obj["marketplace"]); m != nil {
		rd.Marketplace = &model.MarketplaceData{
			HasData:       true,
			TotalListings: asInt(m["totalListings"]),
			FloorPrice:    asFloat(m["floorPrice"]),
			Categories:    asStrings(m["categories"]),
		}
	}
	if t := asObject(obj["tournaments"]); t != nil {
		rd.Tournaments = &model.TournamentsData{
			HasData:           true,
			ActiveTournaments: asInt(t["activeTournaments"]),
			TotalPrizePool:    asFloat(t["totalPrizePool"]),
			Upcoming:          asStrings(t["upcoming"]),
		}
	}
	return rd
}

func parseSessionInfo(obj map[string]any) model.SessionInfo {
	return model.SessionInfo{
		SessionID:       asString(obj["sessionId"]),
		IsAuthenticated: asBool(obj["isAuthenticated"]),
		VisitCount:      asInt(obj["visitCount"]),
		Referrer:        asString(obj["referrer"]),
	}
}

func inferIntent(nc model.NormalizedContext) string {
	if intent, ok := pageIntents[nc.CurrentPage]; ok {
		return intent
	}
	if intent, ok := sectionIntents[nc.CurrentSection]; ok {
		return intent
	}
	for _, p := range nc.UserActivity.Patterns {
		if p == "exploring_platform" {
			return "platform_exploration"
		}
	}
	if nc.UserActivity.ActivityLevel == model.ActivityHigh {
		return "active_engagement"
	}
	for _, rule := range topicIntents {
		for _, t := range nc.VisibleContent.Topics {
			if t == rule.Topic {
				return rule.Intent
			}
		}
	}
	return model.DefaultIntent
}

// ---- loose JSON coercion ----

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func asStrings(v any) []string {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return []string{}
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return 0
}

func asInt(v any) int {
	f := asFloat(v)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asTime accepts epoch milliseconds or an RFC3339 string.
func asTime(v any) time.Time {
	switch t := v.(type) {
	case float64:
		if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}
		}
		return time.UnixMilli(int64(t))
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
		if ms, err := strconv.ParseInt(t, 10, 64); err == nil && ms > 0 {
			return time.UnixMilli(ms)
		}
	}
	return time.Time{}
}

func isASCIIAlnum(w string) bool {
	for i := 0; i < len(w); i++ {
		c := w[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
