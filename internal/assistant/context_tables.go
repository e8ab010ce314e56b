package assistant

import "chat-assistant/internal/domain/model"

// Closed allow-lists. Anything else falls back to the defaults.
var pageAliases = map[string]string{
	"":           "home",
	"home":       "home",
	"index":      "home",
	"about":      "about",
	"creator":    "creator",
	"creators":   "creator",
	"governance": "governance",
	"dao":        "governance",
	"referral":   "referral",
	"referrals":  "referral",
	"landing":    "landing",
}

var knownSections = wordSet(
	"games", "staking", "marketplace", "tournaments", "leaderboard", "rewards", "profile",
	"wallet", "governance", "referral", "overview", "hero", "features", "faq", "roadmap",
	"tokenomics", "team", "community",
)

var pageContexts = map[string]model.PageContext{
	"home": {
		Title:       "Home",
		Description: "Platform overview with games, staking and the marketplace.",
		Features:    []string{"games", "staking", "marketplace", "tournaments"},
	},
	"about": {
		Title:       "About",
		Description: "Team, mission and roadmap of the platform.",
		Features:    []string{"roadmap", "team", "tokenomics"},
	},
	"creator": {
		Title:       "Creator Hub",
		Description: "Tools for creators to publish games and earn revenue share.",
		Features:    []string{"game publishing", "revenue share", "analytics"},
	},
	"governance": {
		Title:       "Governance",
		Description: "Create and vote on proposals that steer the platform.",
		Features:    []string{"proposals", "voting", "delegation"},
	},
	"referral": {
		Title:       "Referral Program",
		Description: "Invite friends and earn a share of their activity.",
		Features:    []string{"referral links", "commission tracking", "tiers"},
	},
	"landing": {
		Title:       "Welcome",
		Description: "Introduction to the platform for new visitors.",
		Features:    []string{"sign up", "wallet connect", "getting started"},
	},
}

var stopWords = wordSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her", "was",
	"one", "our", "out", "his", "has", "have", "this", "that", "with", "from", "they", "will",
	"your", "what", "when", "where", "which", "who", "how", "there", "their", "them", "then",
	"than", "into", "more", "some", "such", "only", "also", "just", "been", "were", "would",
	"could", "should", "about", "over", "each", "here", "its", "may", "now", "get", "got",
)

// topicGroups is evaluated in declaration order; a keyword may join several topics.
var topicGroups = []keywordSet{
	{"gaming", []string{"game", "play", "casino", "poker", "slot", "dice", "bet", "jackpot", "win"}},
	{"earning", []string{"earn", "reward", "income", "profit", "bonus", "cashback", "referral"}},
	{"defi", []string{"stak", "yield", "liquidity", "apy", "swap", "farm", "pool", "token", "vault"}},
	{"nft", []string{"nft", "collectible", "mint", "artwork", "avatar"}},
	{"security", []string{"secur", "wallet", "password", "audit", "safe", "protect", "2fa"}},
	{"tournament", []string{"tournament", "leaderboard", "prize", "competition", "bracket"}},
	{"marketplace", []string{"market", "buy", "sell", "listing", "trade", "auction", "price"}},
}

// contentTypeRules run over the joined raw text, first match wins.
var contentTypeRules = []keywordSet{
	{"gaming", []string{"game", "play", "casino", "bet"}},
	{"defi", []string{"stake", "staking", "yield", "liquidity", "apy"}},
	{"marketplace", []string{"marketplace", "buy", "sell", "listing", "nft"}},
	{"tournament", []string{"tournament", "leaderboard", "prize"}},
}

var relevanceVocabulary = wordSet(
	"game", "games", "play", "stake", "staking", "reward", "rewards", "token", "tokens", "nft",
	"marketplace", "tournament", "tournaments", "yield", "apy", "pool", "wallet", "earn",
	"prize", "leaderboard", "governance", "referral", "swap", "liquidity",
)

var sectionIntents = map[string]string{
	"games":       "game_exploration",
	"staking":     "staking_inquiry",
	"marketplace": "marketplace_browsing",
	"tournaments": "tournament_participation",
	"leaderboard": "tournament_participation",
	"wallet":      "wallet_management",
	"rewards":     "earning_rewards",
	"tokenomics":  "token_research",
}

var pageIntents = map[string]string{
	"governance": "governance_participation",
	"referral":   "referral_program",
	"creator":    "creator_tools",
	"landing":    "platform_onboarding",
	"about":      "learn_about_platform",
}

var topicIntents = []struct{ Topic, Intent string }{
	{"defi", "defi_interest"},
	{"gaming", "gaming_interest"},
	{"tournament", "competition_interest"},
	{"nft", "nft_interest"},
	{"marketplace", "trading_interest"},
	{"earning", "earning_interest"},
	{"security", "security_concern"},
}
