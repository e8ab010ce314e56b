package assistant

// previousTopicTable names the subject of the last user message.
var previousTopicTable = []keywordSet{
	{"gaming", []string{"game", "play", "poker", "dice", "slot", "bet"}},
	{"staking", []string{"stake", "staking", "yield", "apy", "pool"}},
	{"the marketplace", []string{"market", "buy", "sell", "nft"}},
	{"tournaments", []string{"tournament", "leaderboard", "prize"}},
	{"wallet setup", []string{"wallet", "connect"}},
	{"governance", []string{"vote", "proposal", "governance"}},
}

type navTarget struct {
	Section string
	Label   string
}

var navigableCategories = map[string]navTarget{
	"games":       {"games", "Go to Games"},
	"defi":        {"staking", "Go to Staking"},
	"marketplace": {"marketplace", "Go to Marketplace"},
}

var navigableFeatures = map[string]navTarget{
	"stake":       {"staking", "Go to Staking"},
	"staking":     {"staking", "Go to Staking"},
	"pool":        {"staking", "Go to Staking"},
	"marketplace": {"marketplace", "Go to Marketplace"},
	"nft":         {"marketplace", "Go to Marketplace"},
}

const (
	urgencyPrefix  = "I understand this is urgent, so let's get it sorted quickly. "
	negativePrefix = "I'm sorry you're running into trouble. "
	positivePrefix = "Great to hear! "

	// ApologyContent is the fixed reply when the pipeline fails.
	ApologyContent = "I'm sorry, I ran into a problem while processing your message. Please try again in a moment."

	defaultPreviousTopic = "general platform features"
	defaultUserLevel     = "explorer"
	defaultSectionName   = "the platform"
)
