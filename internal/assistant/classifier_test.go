package assistant

import (
	"testing"

	"chat-assistant/internal/domain/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_StakingQuestion(t *testing.T) {
	a := Classify("How do I stake my tokens for rewards?", "")

	assert.Equal(t, "question", a.Intent)
	assert.Equal(t, "defi", a.Category)
	assert.Equal(t, model.UrgencyNormal, a.Urgency)
	assert.Equal(t, model.SentimentNeutral, a.Sentiment)
	assert.Equal(t, []string{"stake", "rewards"}, a.Entities.Features)
	assert.Equal(t, []string{"tokens"}, a.Entities.Currencies)
	assert.Equal(t, "how do i stake my tokens for rewards?", a.NormalizedText)
}

func TestClassify_FrustratedComplaint(t *testing.T) {
	a := Classify("This is broken!! I'm so frustrated", "")

	assert.Equal(t, model.UrgencyHigh, a.Urgency)
	assert.Equal(t, model.SentimentNegative, a.Sentiment)
	assert.Equal(t, "complaint", a.Intent)
	assert.Equal(t, "technical", a.Category)
}

func TestDetectIntent_PriorityOrder(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"what is this", "question"},
		// "how" wins over "please" because question is checked first
		{"please tell me how", "question"},
		{"please send me the docs", "request"},
		{"the page keeps giving an error", "complaint"},
		{"you guys are awesome", "compliment"},
		{"take me to the lobby", "navigation"},
		{"i'd like a walkthrough", "tutorial"},
		{"compare flexible and locked pools", "comparison"},
		{"i'd like your advice", "recommendation"},
		{"hello there friend", "general"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectIntent(tc.text))
		})
	}
}

func TestDetectCategory_PageOverride(t *testing.T) {
	assert.Equal(t, "games", DetectCategory("how do i stake", "/games/poker"))
	assert.Equal(t, "defi", DetectCategory("show me something", "/Staking"))
	assert.Equal(t, "marketplace", DetectCategory("hi", "marketplace"))
	// unknown page falls back to message keywords
	assert.Equal(t, "defi", DetectCategory("what is the apy", "/about"))
	assert.Equal(t, model.CategoryGeneral, DetectCategory("hello", ""))
}

func TestExtractEntities(t *testing.T) {
	got := ExtractEntities("can i bet $1,250.50 on poker today and 300 usdt on dice tomorrow? poker again")

	want := model.Entities{
		Games:      []string{"poker", "dice", "poker"},
		Amounts:    []string{"$1,250.50", "300"},
		Timeframes: []string{"today", "tomorrow"},
		Features:   []string{},
		Currencies: []string{"usdt"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entities mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractEntities_CurrencyIsWordBounded(t *testing.T) {
	got := ExtractEntities("help me solve this")
	assert.Empty(t, got.Currencies)
	assert.Equal(t, 0, got.Count())
}

func TestAnalyzeSentiment(t *testing.T) {
	assert.Equal(t, model.SentimentPositive, AnalyzeSentiment("this is great, thanks"))
	assert.Equal(t, model.SentimentNegative, AnalyzeSentiment("terrible and slow"))
	assert.Equal(t, model.SentimentNeutral, AnalyzeSentiment("great but terrible"))
}

func TestAnalyzeSentiment_NeutralWordsAreInert(t *testing.T) {
	_, listed := neutralWords["okay"]
	require.True(t, listed)

	assert.Equal(t, model.SentimentNeutral, AnalyzeSentiment("okay fine maybe"))
	assert.Equal(t, model.SentimentPositive, AnalyzeSentiment("okay okay okay great"))
}

func TestDetectUrgency(t *testing.T) {
	assert.Equal(t, model.UrgencyNormal, DetectUrgency("one question?"))
	assert.Equal(t, model.UrgencyHigh, DetectUrgency("why? how?"))
	assert.Equal(t, model.UrgencyHigh, DetectUrgency("wow!"))
	assert.Equal(t, model.UrgencyHigh, DetectUrgency("my account was hacked"))
	assert.Equal(t, model.UrgencyNormal, DetectUrgency("just browsing"))
}

func TestClassify_Deterministic(t *testing.T) {
	inputs := []string{
		"How do I stake my tokens for rewards?",
		"I want to play blackjack with $50 this week!!",
		"",
		"NFT marketplace fees vs other platforms?",
	}
	for _, in := range inputs {
		first := Classify(in, "/games")
		for i := 0; i < 5; i++ {
			if diff := cmp.Diff(first, Classify(in, "/games")); diff != "" {
				t.Fatalf("classification of %q changed between calls:\n%s", in, diff)
			}
		}
	}
}
