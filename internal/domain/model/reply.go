package model

// Action is a client-side affordance suggested alongside a reply.
type Action struct {
	ID     string            `json:"id"`
	Label  string            `json:"label"`
	Action string            `json:"action"`
	Data   map[string]string `json:"data"`
}

// Composition is what the response composer produces for one message.
type Composition struct {
	Content     string
	TemplateID  string
	Suggestions []string
	Actions     []Action
	Confidence  float64
}

type ReplyMetadata struct {
	Intent    string    `json:"intent"`
	Entities  Entities  `json:"entities"`
	Sentiment Sentiment `json:"sentiment"`
}

// ChatReply is the structured answer handed back to the transport.
type ChatReply struct {
	Content        string        `json:"content"`
	Confidence     float64       `json:"confidence"`
	Context        string        `json:"context"`
	Suggestions    []string      `json:"suggestions"`
	Actions        []Action      `json:"actions"`
	ProcessingTime int64         `json:"processingTime"`
	Metadata       ReplyMetadata `json:"metadata"`
	SessionID      string        `json:"sessionId"`
	TemplateID     string        `json:"templateId,omitempty"`
}
