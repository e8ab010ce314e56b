package model

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

const (
	IntentGeneral   = "general"
	CategoryGeneral = "general"
)

// Entities holds every recognized substring, per kind, in textual order.
type Entities struct {
	Games      []string `json:"games"`
	Amounts    []string `json:"amounts"`
	Timeframes []string `json:"timeframes"`
	Features   []string `json:"features"`
	Currencies []string `json:"currencies"`
}

func (e Entities) Count() int {
	return len(e.Games) + len(e.Amounts) + len(e.Timeframes) + len(e.Features) + len(e.Currencies)
}

// AnalyzedMessage is the transient classification of one chat message.
type AnalyzedMessage struct {
	Intent         string    `json:"intent"`
	Entities       Entities  `json:"entities"`
	Sentiment      Sentiment `json:"sentiment"`
	Category       string    `json:"category"`
	Urgency        Urgency   `json:"urgency"`
	OriginalText   string    `json:"originalText"`
	NormalizedText string    `json:"normalizedText"`
}
