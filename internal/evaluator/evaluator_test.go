package evaluator

import (
	"testing"

	"progress-service/internal/models"
)

func multipleAnswerQuestion(partial bool) *models.Question {
	return &models.Question{
		ID:            "q1",
		Kind:          models.QuestionMultipleAnswer,
		Points:        10,
		PartialCredit: partial,
		Options: []models.Option{
			{ID: "A", Correct: true},
			{ID: "B", Correct: true},
			{ID: "C"},
			{ID: "D"},
		},
	}
}

func TestMultipleAnswerScoring(t *testing.T) {
	testCases := []struct {
		name           string
		partial        bool
		selected       []string
		expectedPoints int
		correct        bool
		partialHit     bool
	}{
		{"exact match", true, []string{"A", "B"}, 10, true, false},
		{"exact match order independent", true, []string{"B", "A"}, 10, true, false},
		{"half selected", true, []string{"A"}, 5, false, true},
		{"one wrong added", true, []string{"A", "B", "C"}, 5, false, true}, // round(max(0,2-1)/2*10)
		{"only wrong", true, []string{"C"}, 0, false, false},
		{"wrong outweighs right", true, []string{"A", "C", "D"}, 0, false, false},
		{"partial disabled", false, []string{"A"}, 0, false, false},
		{"nothing selected", true, nil, 0, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := multipleAnswerQuestion(tc.partial)
			r := Evaluate(q, &models.Answer{QuestionID: "q1", SelectedOptionIDs: tc.selected})
			if r.PointsEarned != tc.expectedPoints {
				t.Errorf("points = %d, want %d", r.PointsEarned, tc.expectedPoints)
			}
			if r.IsCorrect != tc.correct {
				t.Errorf("isCorrect = %v, want %v", r.IsCorrect, tc.correct)
			}
			if r.IsPartiallyCorrect != tc.partialHit {
				t.Errorf("isPartiallyCorrect = %v, want %v", r.IsPartiallyCorrect, tc.partialHit)
			}
		})
	}
}

func TestSingleChoice(t *testing.T) {
	q := &models.Question{
		ID:     "q1",
		Kind:   models.QuestionMultipleChoice,
		Points: 5,
		Options: []models.Option{
			{ID: "A", Correct: true},
			{ID: "B"},
		},
	}

	if r := Evaluate(q, &models.Answer{SelectedOptionIDs: []string{"A"}}); !r.IsCorrect || r.PointsEarned != 5 {
		t.Errorf("correct selection: got %+v", r)
	}
	if r := Evaluate(q, &models.Answer{SelectedOptionIDs: []string{"B"}}); r.IsCorrect || r.PointsEarned != 0 {
		t.Errorf("wrong selection: got %+v", r)
	}
	// Selecting both the right and a wrong option is not a correct answer.
	if r := Evaluate(q, &models.Answer{SelectedOptionIDs: []string{"A", "B"}}); r.IsCorrect {
		t.Errorf("multi selection should not be correct: got %+v", r)
	}
}

func TestTrueFalse(t *testing.T) {
	q := &models.Question{
		ID:     "q1",
		Kind:   models.QuestionTrueFalse,
		Points: 2,
		Options: []models.Option{
			{ID: "true", Correct: true},
			{ID: "false"},
		},
	}
	if r := Evaluate(q, &models.Answer{SelectedOptionIDs: []string{"true"}}); !r.IsCorrect {
		t.Errorf("got %+v", r)
	}
}

func TestTextAnswers(t *testing.T) {
	testCases := []struct {
		name          string
		kind          string
		caseSensitive bool
		accepted      []string
		submitted     string
		correct       bool
	}{
		{"exact", models.QuestionText, false, []string{"Paris"}, "Paris", true},
		{"case insensitive by default", models.QuestionText, false, []string{"Paris"}, "paris", true},
		{"trimmed", models.QuestionFillBlank, false, []string{"Paris"}, "  Paris  ", true},
		{"case sensitive rejects", models.QuestionText, true, []string{"Paris"}, "paris", false},
		{"any accepted answer", models.QuestionFillBlank, false, []string{"NYC", "New York"}, "new york", true},
		{"no match", models.QuestionText, false, []string{"Paris"}, "London", false},
		{"empty submission", models.QuestionText, false, []string{"Paris"}, "   ", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := &models.Question{
				Kind:            tc.kind,
				Points:          3,
				AcceptedAnswers: tc.accepted,
				CaseSensitive:   tc.caseSensitive,
			}
			r := Evaluate(q, &models.Answer{TextAnswer: tc.submitted})
			if r.IsCorrect != tc.correct {
				t.Errorf("isCorrect = %v, want %v", r.IsCorrect, tc.correct)
			}
		})
	}
}

func TestMatching(t *testing.T) {
	q := &models.Question{
		Kind:          models.QuestionMatching,
		Points:        9,
		PartialCredit: true,
		Pairs: []models.MatchPair{
			{Left: "go", Right: "goroutine"},
			{Left: "java", Right: "thread"},
			{Left: "erlang", Right: "process"},
		},
	}

	all := []models.MatchPair{
		{Left: "go", Right: "goroutine"},
		{Left: "java", Right: "thread"},
		{Left: "erlang", Right: "process"},
	}
	if r := Evaluate(q, &models.Answer{Matches: all}); !r.IsCorrect || r.PointsEarned != 9 {
		t.Errorf("all pairs: got %+v", r)
	}

	twoOfThree := []models.MatchPair{
		{Left: "go", Right: "goroutine"},
		{Left: "java", Right: "process"},
		{Left: "erlang", Right: "process"},
	}
	r := Evaluate(q, &models.Answer{Matches: twoOfThree})
	if !r.IsPartiallyCorrect || r.PointsEarned != 6 { // round(2/3*9)
		t.Errorf("two of three: got %+v", r)
	}

	q.PartialCredit = false
	if r := Evaluate(q, &models.Answer{Matches: twoOfThree}); r.PointsEarned != 0 {
		t.Errorf("partial disabled: got %+v", r)
	}
}

func TestOrdering(t *testing.T) {
	q := &models.Question{
		Kind:          models.QuestionOrdering,
		Points:        8,
		PartialCredit: true,
		CorrectOrder:  []string{"s1", "s2", "s3", "s4"},
	}

	if r := Evaluate(q, &models.Answer{OrderedIDs: []string{"s1", "s2", "s3", "s4"}}); !r.IsCorrect || r.PointsEarned != 8 {
		t.Errorf("exact order: got %+v", r)
	}

	// s1 and s4 are in position; s2/s3 swapped. Positional credit only.
	r := Evaluate(q, &models.Answer{OrderedIDs: []string{"s1", "s3", "s2", "s4"}})
	if !r.IsPartiallyCorrect || r.PointsEarned != 4 { // round(2/4*8)
		t.Errorf("swapped middle: got %+v", r)
	}

	// Correct relative order but shifted positions earns only positional hits.
	r = Evaluate(q, &models.Answer{OrderedIDs: []string{"s2", "s3", "s4", "s1"}})
	if r.PointsEarned != 0 {
		t.Errorf("rotated order: got %+v", r)
	}

	q.PartialCredit = false
	if r := Evaluate(q, &models.Answer{OrderedIDs: []string{"s1", "s3", "s2", "s4"}}); r.PointsEarned != 0 {
		t.Errorf("partial disabled: got %+v", r)
	}
}

func TestUnknownKindScoresZero(t *testing.T) {
	q := &models.Question{Kind: "essay", Points: 10}
	if r := Evaluate(q, &models.Answer{TextAnswer: "anything"}); r.IsCorrect || r.PointsEarned != 0 {
		t.Errorf("got %+v", r)
	}
}

func TestFeedbackOnIncorrect(t *testing.T) {
	q := &models.Question{
		Kind:        models.QuestionMultipleChoice,
		Points:      5,
		Explanation: "The capital of France is Paris.",
		Options:     []models.Option{{ID: "A", Correct: true}, {ID: "B"}},
	}
	r := Evaluate(q, &models.Answer{SelectedOptionIDs: []string{"B"}})
	if r.Feedback != q.Explanation {
		t.Errorf("feedback = %q", r.Feedback)
	}
	r = Evaluate(q, &models.Answer{SelectedOptionIDs: []string{"A"}})
	if r.Feedback != "" {
		t.Errorf("correct answer should carry no feedback, got %q", r.Feedback)
	}
}

func TestMaxScore(t *testing.T) {
	questions := []models.Question{{Points: 5}, {Points: 10}, {Points: 3}}
	if got := MaxScore(questions); got != 18 {
		t.Errorf("MaxScore = %d, want 18", got)
	}
}
