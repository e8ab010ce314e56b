// Package assistant holds the message-understanding core: the keyword
// classifier, the client context normalizer and the response composer.
// Everything here is synchronous and free of I/O.
package assistant

import (
	"strings"
	"unicode"

	"chat-assistant/internal/domain/model"
)

// Classify analyzes a chat message. pageHint is the caller's current page and
// may be empty. Classify is a pure function of its inputs.
func Classify(text, pageHint string) model.AnalyzedMessage {
	lower := strings.ToLower(strings.TrimSpace(text))
	return model.AnalyzedMessage{
		Intent:         DetectIntent(lower),
		Entities:       ExtractEntities(lower),
		Sentiment:      AnalyzeSentiment(lower),
		Category:       DetectCategory(lower, pageHint),
		Urgency:        DetectUrgency(lower),
		OriginalText:   text,
		NormalizedText: lower,
	}
}

// DetectIntent returns the first intent whose keywords occur in the lowered
// message, or IntentGeneral.
func DetectIntent(lower string) string {
	if name, ok := firstMatch(intentTable, lower); ok {
		return name
	}
	return model.IntentGeneral
}

// DetectCategory prefers the page hint over the message keywords.
func DetectCategory(lower, pageHint string) string {
	if page := strings.ToLower(strings.TrimSpace(pageHint)); page != "" {
		if name, ok := firstMatch(pageCategoryTable, page); ok {
			return name
		}
	}
	if name, ok := firstMatch(categoryTable, lower); ok {
		return name
	}
	return model.CategoryGeneral
}

// ExtractEntities collects game, amount, timeframe, feature and currency
// mentions in order of appearance. Lists are never nil.
func ExtractEntities(lower string) model.Entities {
	return model.Entities{
		Games:      findAll(gameEntityRe.FindAllString(lower, -1)),
		Amounts:    findAll(amountEntityRe.FindAllString(lower, -1)),
		Timeframes: findAll(timeframeRe.FindAllString(lower, -1)),
		Features:   findAll(featureEntityRe.FindAllString(lower, -1)),
		Currencies: findAll(currencyEntityRe.FindAllString(lower, -1)),
	}
}

// AnalyzeSentiment nets positive against negative words. Neutral words carry no weight.
func AnalyzeSentiment(lower string) model.Sentiment {
	score := 0
	for _, w := range words(lower) {
		if _, ok := positiveWords[w]; ok {
			score++
		} else if _, ok := negativeWords[w]; ok {
			score--
		}
	}
	switch {
	case score > 0:
		return model.SentimentPositive
	case score < 0:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// DetectUrgency is high on an urgent keyword, an exclamation mark or more
// than one question mark.
func DetectUrgency(lower string) model.Urgency {
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return model.UrgencyHigh
		}
	}
	if strings.Count(lower, "?") > 1 || strings.Contains(lower, "!") {
		return model.UrgencyHigh
	}
	return model.UrgencyNormal
}

func firstMatch(table []keywordSet, lower string) (string, bool) {
	for _, set := range table {
		for _, kw := range set.Keywords {
			if strings.Contains(lower, kw) {
				return set.Name, true
			}
		}
	}
	return "", false
}

// findAll keeps JSON output stable: no matches encodes as [] rather than null.
func findAll(matches []string) []string {
	if matches == nil {
		return []string{}
	}
	return matches
}

func words(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
