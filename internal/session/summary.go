package session

import (
	"fmt"
	"math"
	"sort"

	"jobmate/interview/internal/models"
)

const curatedListSize = 3

// Summary computes the end-of-session summary from the full response set.
// It is derived on demand and never persisted.
func (m *Manager) Summary(session *models.InterviewSession) (*models.SessionSummary, error) {
	responses, err := m.Responses.GetBySessionID(session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	return BuildSummary(session, responses), nil
}

// BuildSummary aggregates scores and curates the advice lists over whatever
// questions were actually answered, which may be fewer than planned when a
// session is force-completed.
func BuildSummary(session *models.InterviewSession, responses []models.InterviewResponse) *models.SessionSummary {
	summary := &models.SessionSummary{
		SessionID:         session.ID,
		AnsweredQuestions: len(responses),
		TotalQuestions:    session.TotalQuestions,
	}

	if len(responses) == 0 {
		summary.NextSteps = []string{"Start another practice session to get scored feedback."}
		return summary
	}

	var overall, communication, technical, completeness, duration float64
	strengthCounts := map[string]int{}
	weaknessCounts := map[string]int{}
	suggestionSet := map[string]bool{}
	var suggestions []string

	for _, r := range responses {
		overall += float64(r.OverallScore)
		communication += float64(r.CommunicationScore)
		technical += float64(r.TechnicalScore)
		completeness += float64(r.CompletenessScore)
		duration += float64(r.DurationSeconds)

		for _, s := range r.Strengths {
			strengthCounts[s]++
		}
		for _, w := range r.Weaknesses {
			weaknessCounts[w]++
		}
		for _, s := range r.Suggestions {
			if !suggestionSet[s] {
				suggestionSet[s] = true
				suggestions = append(suggestions, s)
			}
		}
	}

	n := float64(len(responses))
	summary.OverallScore = round1(overall / n)
	summary.CommunicationAverage = round1(communication / n)
	summary.TechnicalAverage = round1(technical / n)
	summary.CompletenessAverage = round1(completeness / n)
	summary.AverageDurationSeconds = round1(duration / n)

	summary.TopStrengths = topByCount(strengthCounts, curatedListSize)
	summary.ImprovementAreas = topByCount(weaknessCounts, curatedListSize)
	if len(suggestions) > curatedListSize {
		suggestions = suggestions[:curatedListSize]
	}
	summary.ResourceSuggestions = suggestions
	summary.NextSteps = nextSteps(summary)

	return summary
}

func nextSteps(s *models.SessionSummary) []string {
	steps := []string{}
	if s.AnsweredQuestions < s.TotalQuestions {
		steps = append(steps, "Finish a full-length session to practice pacing.")
	}
	if s.OverallScore >= 8 {
		steps = append(steps, "Try a harder difficulty for your next session.")
	} else {
		steps = append(steps, "Repeat this difficulty and focus on the improvement areas above.")
	}
	steps = append(steps, "Review your answers against the suggested resources.")
	return steps
}

// topByCount returns the n most frequent entries, most frequent first, ties
// broken alphabetically for stable output.
func topByCount(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
