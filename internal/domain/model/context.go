package model

import "time"

type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

const (
	DefaultPage    = "home"
	UnknownSection = "unknown"
	DefaultIntent  = "general_help"
)

// UserAction is one client-reported interaction, kept verbatim.
type UserAction struct {
	Action    string    `json:"action"`
	Page      string    `json:"page,omitempty"`
	Section   string    `json:"section,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type UserActivity struct {
	RecentActions []UserAction  `json:"recentActions"`
	Patterns      []string      `json:"patterns"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
}

type VisibleContent struct {
	Keywords       []string `json:"keywords"`
	Topics         []string `json:"topics"`
	ContentType    string   `json:"contentType"`
	RelevanceScore float64  `json:"relevanceScore"`
}

type GamesData struct {
	HasData      bool     `json:"hasData"`
	TotalGames   int      `json:"totalGames"`
	ActiveGames  int      `json:"activeGames"`
	PopularGames []string `json:"popularGames"`
	TotalVolume  float64  `json:"totalVolume"`
}

type StakingData struct {
	HasData     bool     `json:"hasData"`
	TotalStaked float64  `json:"totalStaked"`
	APY         float64  `json:"apy"`
	UserStaked  float64  `json:"userStaked"`
	Pools       []string `json:"pools"`
}

type MarketplaceData struct {
	HasData       bool     `json:"hasData"`
	TotalListings int      `json:"totalListings"`
	FloorPrice    float64  `json:"floorPrice"`
	Categories    []string `json:"categories"`
}

type TournamentsData struct {
	HasData           bool     `json:"hasData"`
	ActiveTournaments int      `json:"activeTournaments"`
	TotalPrizePool    float64  `json:"totalPrizePool"`
	Upcoming          []string `json:"upcoming"`
}

// RelevantData carries optional per-feature stat blocks; nil means absent.
type RelevantData struct {
	Games       *GamesData       `json:"games"`
	Staking     *StakingData     `json:"staking"`
	Marketplace *MarketplaceData `json:"marketplace"`
	Tournaments *TournamentsData `json:"tournaments"`
}

func (r RelevantData) Any() bool {
	return r.Games != nil || r.Staking != nil || r.Marketplace != nil || r.Tournaments != nil
}

type SessionInfo struct {
	SessionID       string `json:"sessionId,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	VisitCount      int    `json:"visitCount"`
	Referrer        string `json:"referrer,omitempty"`
}

// PageContext is the static description of a known page.
type PageContext struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

type NormalizedContext struct {
	CurrentPage    string         `json:"currentPage"`
	CurrentSection string         `json:"currentSection"`
	UserActivity   UserActivity   `json:"userActivity"`
	VisibleContent VisibleContent `json:"visibleContent"`
	RelevantData   RelevantData   `json:"relevantData"`
	SessionInfo    SessionInfo    `json:"sessionInfo"`
	PageContext    PageContext    `json:"pageContext"`
	UserLevel      string         `json:"userLevel,omitempty"`
	InferredIntent string         `json:"inferredIntent"`
	Confidence     float64        `json:"confidence"`
	Timestamp      time.Time      `json:"timestamp"`
}
