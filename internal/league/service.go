package league

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/hanatore/api/internal/domain"
	"github.com/hanatore/api/internal/store"
)

// participantNames seeds the synthetic weekly pool. One slot is
// reserved for the requesting user.
var participantNames = []string{
	"話し上手さん", "プレゼンマスター", "ビジネス達人", "説明の鬼",
	"論理的思考", "コミュ力UP", "PREP使い", "瞬発力トレーナー",
	"毎日継続", "ストリーク維持", "努力の人", "成長中",
	"デモユーザー", "がんばり屋", "もくもく", "朝活派",
	"スキマ時間", "通勤トレ", "ランチ練習", "寝る前5分",
}

const (
	// userSlot is the pool index the requesting user occupies.
	userSlot = 12
	// jitterBound bounds the random XP offset per synthetic participant.
	jitterBound = 30
	// promotionRank is the worst rank still inside the promotion zone.
	promotionRank = 3
)

type snapshot struct {
	weekKey string
	entries []domain.RankingEntry
}

// Service maintains per-user weekly ranking snapshots. A snapshot is
// regenerated when the week key rolls over; the finished week's outcome
// is archived to the store at that point.
type Service struct {
	repo store.Repository
	now  func() time.Time

	mu    sync.Mutex
	rng   *rand.Rand
	pools map[string]*snapshot
}

// NewService creates a ranking service. now and rng may be nil, in
// which case the wall clock and an unseeded source are used; tests pass
// a fixed clock and a seeded source for reproducible rankings.
func NewService(repo store.Repository, now func() time.Time, rng *rand.Rand) *Service {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		repo:  repo,
		now:   now,
		rng:   rng,
		pools: make(map[string]*snapshot),
	}
}

// CurrentInfo returns the user's view of the current week: tier, weekly
// XP, rank and the week's bounds. Rank is nil when the user is somehow
// absent from the pool.
func (s *Service) CurrentInfo(ctx context.Context, userID string) (domain.LeagueInfo, error) {
	now := s.now()
	entries, err := s.ranking(ctx, userID, now)
	if err != nil {
		return domain.LeagueInfo{}, err
	}

	start, end := WeekBounds(now)
	info := domain.LeagueInfo{
		LeagueID:          WeekKey(now),
		Tier:              domain.TierBronze,
		StartDate:         start,
		EndDate:           end,
		TotalParticipants: len(entries),
	}
	for _, e := range entries {
		if e.IsCurrentUser {
			rank := e.Rank
			info.Tier = e.Tier
			info.WeeklyXp = e.WeeklyXp
			info.Rank = &rank
			break
		}
	}
	return info, nil
}

// RankingPage is the ranking listing response. CurrentUser is set only
// when the user's entry did not make the top-N cut.
type RankingPage struct {
	LeagueID          string                `json:"leagueId"`
	Ranking           []domain.RankingEntry `json:"ranking"`
	CurrentUser       *domain.RankingEntry  `json:"currentUser"`
	TotalParticipants int                   `json:"totalParticipants"`
}

// Ranking returns the top-N entries of the current week's pool.
func (s *Service) Ranking(ctx context.Context, userID string, limit int) (*RankingPage, error) {
	now := s.now()
	entries, err := s.ranking(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	top := entries[:limit]

	var current *domain.RankingEntry
	inTop := false
	for i := range top {
		if top[i].IsCurrentUser {
			inTop = true
			break
		}
	}
	if !inTop {
		for i := range entries {
			if entries[i].IsCurrentUser {
				e := entries[i]
				current = &e
				break
			}
		}
	}

	return &RankingPage{
		LeagueID:          WeekKey(now),
		Ranking:           top,
		CurrentUser:       current,
		TotalParticipants: len(entries),
	}, nil
}

// History returns past league outcomes, most recent first.
func (s *Service) History(ctx context.Context, userID string) ([]*domain.LeagueResult, error) {
	results, err := s.repo.ListLeagueResults(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list league results: %w", err)
	}
	return results, nil
}

// ranking returns a copy of the user's current ranking entries,
// regenerating the snapshot when the week key has rolled over and
// folding in the user's live weekly XP.
func (s *Service) ranking(ctx context.Context, userID string, now time.Time) ([]domain.RankingEntry, error) {
	start, end := WeekBounds(now)
	weeklyXp, err := s.repo.SumWeeklyXp(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate weekly xp: %w", err)
	}

	displayName := ""
	if user, err := s.repo.GetUser(ctx, userID); err != nil {
		slog.Warn("failed to load user for ranking", "userId", userID, "error", err)
	} else if user != nil {
		displayName = user.DisplayName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := WeekKey(now)
	snap := s.pools[userID]
	if snap == nil || snap.weekKey != key {
		if snap != nil {
			s.archive(ctx, userID, snap)
		}
		snap = &snapshot{weekKey: key, entries: s.generatePool(userID, displayName)}
		s.pools[userID] = snap
	}

	for i := range snap.entries {
		if snap.entries[i].IsCurrentUser {
			snap.entries[i].WeeklyXp = weeklyXp
			break
		}
	}
	rerank(snap.entries)

	entries := make([]domain.RankingEntry, len(snap.entries))
	copy(entries, snap.entries)
	return entries, nil
}

// generatePool builds the synthetic participant pool with the user at
// the reserved slot. Caller holds s.mu (the random source is shared).
func (s *Service) generatePool(userID, displayName string) []domain.RankingEntry {
	entries := make([]domain.RankingEntry, 0, len(participantNames))
	for i, name := range participantNames {
		e := domain.RankingEntry{
			Rank:        i + 1,
			UserID:      fmt.Sprintf("user-%d", i+1),
			DisplayName: name,
			WeeklyXp:    maxInt(0, 1000-i*45+s.rng.Intn(jitterBound)),
			Tier:        tierForSlot(i),
		}
		if i == userSlot {
			e.UserID = userID
			e.WeeklyXp = 0
			e.IsCurrentUser = true
			if displayName != "" {
				e.DisplayName = displayName
			}
		}
		entries = append(entries, e)
	}
	rerank(entries)
	return entries
}

// archive records the finished week's outcome for the user. Failures
// are logged and swallowed so a rollover never blocks a read.
func (s *Service) archive(ctx context.Context, userID string, snap *snapshot) {
	for _, e := range snap.entries {
		if !e.IsCurrentUser {
			continue
		}
		result := &domain.LeagueResult{
			LeagueID:          snap.weekKey,
			Tier:              e.Tier,
			FinalRank:         e.Rank,
			WeeklyXp:          e.WeeklyXp,
			TotalParticipants: len(snap.entries),
			Promoted:          e.Rank <= promotionRank,
		}
		if err := s.repo.InsertLeagueResult(ctx, userID, result); err != nil {
			slog.Warn("failed to archive league result",
				"userId", userID, "leagueId", snap.weekKey, "error", err)
		}
		return
	}
}

// rerank sorts by XP descending and reassigns 1-based ranks. The sort
// is stable so ties keep insertion order.
func rerank(entries []domain.RankingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WeeklyXp > entries[j].WeeklyXp
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func tierForSlot(i int) domain.LeagueTier {
	switch {
	case i < 3:
		return domain.TierGold
	case i < 10:
		return domain.TierSilver
	default:
		return domain.TierBronze
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
