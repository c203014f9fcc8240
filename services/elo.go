package services

import (
	"math"
	"sort"

	"ranked-tournaments/config"
	"ranked-tournaments/models"
)

// PlacementResult is the outcome of one player in a resolved tournament.
type PlacementResult struct {
	PlayerName        string  `json:"player_name"`
	Score             int64   `json:"score"`
	Placement         int     `json:"placement"`
	EloBefore         int     `json:"elo_before"`
	EloAfter          int     `json:"elo_after"`
	EloChange         int     `json:"elo_change"`
	ExpectedScore     float64 `json:"expected_score"`
	ActualScore       float64 `json:"actual_score"`
	ScoreDeviation    float64 `json:"score_deviation"`
	PerformanceFactor float64 `json:"performance_factor"`
}

// ExpectedScore is the classic logistic expectation of a player rated
// playerElo against an opponent rated fieldElo.
func ExpectedScore(playerElo, fieldElo float64) float64 {
	return 1 / (1 + math.Pow(10, (fieldElo-playerElo)/400))
}

func sortByScore(entries []models.QueueEntry) []models.QueueEntry {
	sorted := make([]models.QueueEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

// ComputePlacements ranks entries by score (ties keep input order) and
// computes each player's rating change against the field average.
// ratings maps player name to current elo; missing players start at
// cfg.DefaultElo.
func ComputePlacements(entries []models.QueueEntry, ratings map[string]int, cfg config.Ranked) []PlacementResult {
	sorted := sortByScore(entries)
	n := len(sorted)
	results := make([]PlacementResult, n)

	eloOf := func(name string) int {
		if elo, ok := ratings[name]; ok {
			return elo
		}
		return cfg.DefaultElo
	}

	if n < 2 {
		for i, e := range sorted {
			elo := eloOf(e.PlayerName)
			results[i] = PlacementResult{
				PlayerName:        e.PlayerName,
				Score:             e.Score,
				Placement:         1,
				EloBefore:         elo,
				EloAfter:          elo,
				ActualScore:       1,
				ExpectedScore:     0.5,
				PerformanceFactor: 1,
			}
		}
		return results
	}

	var eloSum, scoreSum float64
	maxScore, minScore := sorted[0].Score, sorted[0].Score
	for _, e := range sorted {
		eloSum += float64(eloOf(e.PlayerName))
		scoreSum += float64(e.Score)
		maxScore = max(maxScore, e.Score)
		minScore = min(minScore, e.Score)
	}
	avgElo := eloSum / float64(n)
	avgScore := scoreSum / float64(n)
	scoreRange := float64(maxScore - minScore)
	if scoreRange == 0 {
		scoreRange = 1
	}

	for i, e := range sorted {
		before := eloOf(e.PlayerName)
		expected := ExpectedScore(float64(before), avgElo)
		actual := float64(n-i-1) / float64(n-1)
		deviation := (float64(e.Score) - avgScore) / scoreRange
		performance := 1 + 0.5*deviation
		change := int(math.Round(cfg.KFactor * (actual - expected) * performance))

		results[i] = PlacementResult{
			PlayerName:        e.PlayerName,
			Score:             e.Score,
			Placement:         i + 1,
			EloBefore:         before,
			EloAfter:          before + change,
			EloChange:         change,
			ExpectedScore:     expected,
			ActualScore:       actual,
			ScoreDeviation:    deviation,
			PerformanceFactor: performance,
		}
	}
	return results
}
