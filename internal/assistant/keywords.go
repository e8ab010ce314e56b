package assistant

import "regexp"

// keywordSet is one entry of an ordered first-match table.
type keywordSet struct {
	Name     string
	Keywords []string
}

// Order matters: the first set with a matching substring wins.
var intentTable = []keywordSet{
	{"question", []string{"what", "how", "why", "when", "where", "who", "which", "can i", "is there", "does"}},
	{"request", []string{"please", "can you", "could you", "i want", "i need", "help me", "would like", "give me"}},
	{"complaint", []string{"broken", "not working", "doesn't work", "bug", "error", "issue", "problem", "frustrated", "annoying", "terrible"}},
	{"compliment", []string{"great", "awesome", "love", "amazing", "thank", "excellent", "nice work"}},
	{"navigation", []string{"go to", "take me", "navigate", "open", "show me", "find"}},
	{"tutorial", []string{"tutorial", "guide", "teach", "learn", "explain", "walkthrough", "step by step"}},
	{"comparison", []string{"compare", "versus", " vs ", "difference", "better than"}},
	{"recommendation", []string{"recommend", "suggest", "should i", "best", "advice"}},
}

var categoryTable = []keywordSet{
	{"games", []string{"game", "play", "poker", "blackjack", "roulette", "slots", "dice", "casino", "bet", "jackpot"}},
	{"defi", []string{"stake", "staking", "yield", "liquidity", "apy", "reward", "swap", "farm", "pool", "token"}},
	{"marketplace", []string{"marketplace", "buy", "sell", "listing", "nft", "collectible", "auction"}},
	{"tournaments", []string{"tournament", "leaderboard", "competition", "prize", "bracket"}},
	{"governance", []string{"governance", "proposal", "vote", "voting", "dao"}},
	{"referral", []string{"referral", "refer", "invite", "affiliate"}},
	{"account", []string{"account", "profile", "wallet", "login", "password", "sign up", "register"}},
	{"technical", []string{"bug", "error", "crash", "loading", "slow", "not working", "broken"}},
}

// pageCategoryTable overrides the message category when the caller's page
// contains the given substring.
var pageCategoryTable = []keywordSet{
	{"games", []string{"game", "casino"}},
	{"defi", []string{"stak", "defi", "pool", "farm"}},
	{"marketplace", []string{"market", "shop"}},
	{"tournaments", []string{"tournament", "leaderboard"}},
	{"governance", []string{"governance", "dao"}},
	{"referral", []string{"referral"}},
	{"account", []string{"profile", "account", "wallet"}},
}

var positiveWords = wordSet(
	"good", "great", "awesome", "amazing", "love", "excellent", "happy", "thanks", "thank",
	"fantastic", "nice", "cool", "perfect", "wonderful", "fun", "easy", "helpful", "best", "enjoy",
)

var negativeWords = wordSet(
	"bad", "terrible", "awful", "hate", "broken", "frustrated", "frustrating", "annoying", "angry",
	"disappointed", "worst", "slow", "confusing", "scam", "lost", "problem", "bug", "stuck",
	"fail", "failed", "useless", "wrong", "error",
)

// neutralWords is declared alongside the scored sets but never consulted.
var neutralWords = wordSet(
	"okay", "ok", "fine", "normal", "average", "maybe", "alright",
)

var urgentKeywords = []string{
	"urgent", "asap", "emergency", "immediately", "right away", "stolen", "hacked",
	"lost my", "can't access", "cannot access", "locked out",
}

var (
	gameEntityRe     = regexp.MustCompile(`poker|blackjack|roulette|slots|dice|crash|plinko|mines|baccarat|lottery|coinflip`)
	amountEntityRe   = regexp.MustCompile(`\$?\d+(?:,\d{3})*(?:\.\d{2})?`)
	timeframeRe      = regexp.MustCompile(`today|tomorrow|yesterday|tonight|daily|weekly|monthly|yearly|hours?|days?|weeks?|months?|years?`)
	featureEntityRe  = regexp.MustCompile(`staking|stake|swap|marketplace|tournament|leaderboard|referral|governance|wallet|nft|rewards?|pool|farm|vault|profile`)
	currencyEntityRe = regexp.MustCompile(`\b(?:usdt|usdc|eth|btc|bnb|sol|matic|dai|tokens?)\b`)
)

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
