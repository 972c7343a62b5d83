package evaluator

import (
	"math"
	"strings"

	"progress-service/internal/models"
)

// Result is the outcome of scoring one submitted answer.
type Result struct {
	IsCorrect          bool   `json:"is_correct"`
	IsPartiallyCorrect bool   `json:"is_partially_correct"`
	PointsEarned       int    `json:"points_earned"`
	Feedback           string `json:"feedback,omitempty"`
}

// Evaluate scores a submitted answer against a question definition. It is
// deterministic and does no I/O. Partial-credit branches only apply when the
// question enables them; otherwise any non-exact answer scores zero.
func Evaluate(q *models.Question, a *models.Answer) Result {
	var r Result
	switch q.Kind {
	case models.QuestionMultipleChoice, models.QuestionTrueFalse:
		r = evaluateSingleChoice(q, a)
	case models.QuestionMultipleAnswer:
		r = evaluateMultipleAnswer(q, a)
	case models.QuestionText, models.QuestionFillBlank:
		r = evaluateText(q, a)
	case models.QuestionMatching:
		r = evaluateMatching(q, a)
	case models.QuestionOrdering:
		r = evaluateOrdering(q, a)
	default:
		// unknown kind earns nothing
	}
	if !r.IsCorrect && q.Explanation != "" {
		r.Feedback = q.Explanation
	}
	return r
}

// MaxScore sums the points of a question list.
func MaxScore(questions []models.Question) int {
	total := 0
	for i := range questions {
		total += questions[i].Points
	}
	return total
}

func evaluateSingleChoice(q *models.Question, a *models.Answer) Result {
	correct := q.CorrectOptionIDs()
	if len(correct) != 1 || len(a.SelectedOptionIDs) != 1 {
		return Result{}
	}
	if a.SelectedOptionIDs[0] != correct[0] {
		return Result{}
	}
	return Result{IsCorrect: true, PointsEarned: q.Points}
}

func evaluateMultipleAnswer(q *models.Question, a *models.Answer) Result {
	correct := toSet(q.CorrectOptionIDs())
	selected := toSet(a.SelectedOptionIDs)
	if len(correct) == 0 {
		return Result{}
	}

	hits := 0
	for id := range selected {
		if correct[id] {
			hits++
		}
	}
	wrong := len(selected) - hits

	if hits == len(correct) && wrong == 0 && len(selected) == len(correct) {
		return Result{IsCorrect: true, PointsEarned: q.Points}
	}
	if !q.PartialCredit || hits == 0 {
		return Result{}
	}
	points := roundRatio(hits-wrong, len(correct), q.Points)
	if points <= 0 {
		return Result{}
	}
	return Result{IsPartiallyCorrect: true, PointsEarned: points}
}

func evaluateText(q *models.Question, a *models.Answer) Result {
	submitted := strings.TrimSpace(a.TextAnswer)
	if submitted == "" {
		return Result{}
	}
	for _, accepted := range q.AcceptedAnswers {
		accepted = strings.TrimSpace(accepted)
		if q.CaseSensitive {
			if submitted == accepted {
				return Result{IsCorrect: true, PointsEarned: q.Points}
			}
		} else if strings.EqualFold(submitted, accepted) {
			return Result{IsCorrect: true, PointsEarned: q.Points}
		}
	}
	return Result{}
}

func evaluateMatching(q *models.Question, a *models.Answer) Result {
	if len(q.Pairs) == 0 {
		return Result{}
	}
	defined := make(map[string]string, len(q.Pairs))
	for _, p := range q.Pairs {
		defined[p.Left] = p.Right
	}
	correctPairs := 0
	for _, m := range a.Matches {
		if right, ok := defined[m.Left]; ok && right == m.Right {
			correctPairs++
		}
	}
	if correctPairs == len(q.Pairs) && len(a.Matches) == len(q.Pairs) {
		return Result{IsCorrect: true, PointsEarned: q.Points}
	}
	if !q.PartialCredit || correctPairs == 0 {
		return Result{}
	}
	return Result{
		IsPartiallyCorrect: true,
		PointsEarned:       roundRatio(correctPairs, len(q.Pairs), q.Points),
	}
}

func evaluateOrdering(q *models.Question, a *models.Answer) Result {
	if len(q.CorrectOrder) == 0 {
		return Result{}
	}
	if len(a.OrderedIDs) == len(q.CorrectOrder) {
		exact := true
		for i, id := range a.OrderedIDs {
			if id != q.CorrectOrder[i] {
				exact = false
				break
			}
		}
		if exact {
			return Result{IsCorrect: true, PointsEarned: q.Points}
		}
	}
	if !q.PartialCredit {
		return Result{}
	}
	// Credit only positions that match exactly, not correct relative order.
	matches := 0
	for i, id := range a.OrderedIDs {
		if i < len(q.CorrectOrder) && q.CorrectOrder[i] == id {
			matches++
		}
	}
	if matches == 0 {
		return Result{}
	}
	return Result{
		IsPartiallyCorrect: true,
		PointsEarned:       roundRatio(matches, len(q.CorrectOrder), q.Points),
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func roundRatio(num, den, points int) int {
	if den == 0 || num <= 0 {
		return 0
	}
	return int(math.Round(float64(num) / float64(den) * float64(points)))
}
