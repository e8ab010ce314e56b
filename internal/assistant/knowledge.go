package assistant

import "fmt"

type gameInfo struct {
	Name        string
	Description string
	MinBet      string
	MaxBet      string
	HouseEdge   string
}

var gameKnowledge = map[string]gameInfo{
	"poker": {
		Name:        "Poker",
		Description: "Texas Hold'em against other players with on-chain settlement.",
		MinBet:      "$1",
		MaxBet:      "$5,000",
		HouseEdge:   "2.5% rake",
	},
	"blackjack": {
		Name:        "Blackjack",
		Description: "Classic 21 against the dealer with standard Vegas rules.",
		MinBet:      "$1",
		MaxBet:      "$2,500",
		HouseEdge:   "0.5%",
	},
	"roulette": {
		Name:        "Roulette",
		Description: "European single-zero wheel.",
		MinBet:      "$0.50",
		MaxBet:      "$1,000",
		HouseEdge:   "2.7%",
	},
	"dice": {
		Name:        "Dice",
		Description: "Pick a target and roll over or under it; you choose the odds.",
		MinBet:      "$0.10",
		MaxBet:      "$10,000",
		HouseEdge:   "1%",
	},
	"slots": {
		Name:        "Slots",
		Description: "Five-reel video slots with progressive jackpots.",
		MinBet:      "$0.20",
		MaxBet:      "$500",
		HouseEdge:   "3-5%",
	},
	"crash": {
		Name:        "Crash",
		Description: "Cash out before the multiplier crashes.",
		MinBet:      "$0.10",
		MaxBet:      "$5,000",
		HouseEdge:   "1%",
	},
}

func gameInfoBlock(entity string) string {
	info, ok := gameKnowledge[entity]
	if !ok {
		return fmt.Sprintf("\n\nI don't have detailed information about %s yet, but you can find it in the games section.", entity)
	}
	return fmt.Sprintf("\n\n**%s**: %s\n• Bets: %s to %s\n• House edge: %s",
		info.Name, info.Description, info.MinBet, info.MaxBet, info.HouseEdge)
}

func amountSuggestion(amount string) string {
	return fmt.Sprintf("\n\nWith an amount like %s, consider starting with a smaller portion and spreading the rest across options so a single loss doesn't hurt.", amount)
}
