package domain

import (
	"time"
)

// LeagueTier is the division label assigned by rank banding.
type LeagueTier string

const (
	TierBronze   LeagueTier = "BRONZE"
	TierSilver   LeagueTier = "SILVER"
	TierGold     LeagueTier = "GOLD"
	TierPlatinum LeagueTier = "PLATINUM"
)

// RankingEntry is one participant in a weekly league snapshot.
type RankingEntry struct {
	Rank          int        `json:"rank"`
	UserID        string     `json:"userId"`
	DisplayName   string     `json:"displayName"`
	WeeklyXp      int        `json:"weeklyXp"`
	Tier          LeagueTier `json:"tier"`
	IsCurrentUser bool       `json:"isCurrentUser"`
}

// LeagueInfo is the requesting user's view of the current week's league.
type LeagueInfo struct {
	LeagueID          string     `json:"leagueId"`
	Tier              LeagueTier `json:"tier"`
	WeeklyXp          int        `json:"weeklyXp"`
	Rank              *int       `json:"rank"`
	StartDate         time.Time  `json:"startDate"`
	EndDate           time.Time  `json:"endDate"`
	TotalParticipants int        `json:"totalParticipants"`
}

// LeagueResult is a finished week's outcome, kept as history when the
// week key rolls over.
type LeagueResult struct {
	LeagueID          string     `json:"leagueId"`
	Tier              LeagueTier `json:"tier"`
	FinalRank         int        `json:"finalRank"`
	WeeklyXp          int        `json:"weeklyXp"`
	TotalParticipants int        `json:"totalParticipants"`
	Promoted          bool       `json:"promoted"`
}
