package service

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/mongo"

	"progress-service/internal/models"
	"progress-service/internal/rewards"
)

type fakeQuizStore struct {
	quizzes map[string]*models.Quiz
}

func (f *fakeQuizStore) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return q, nil
}

func (f *fakeQuizStore) FindByLesson(ctx context.Context, lessonID, kind string) (*models.Quiz, error) {
	for _, q := range f.quizzes {
		if q.LessonID == lessonID && q.Kind == kind && q.Published {
			return q, nil
		}
	}
	return nil, nil
}

type fakeAttemptStore struct {
	attempts map[string]*models.QuizAttempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[string]*models.QuizAttempt)}
}

func cloneAttempt(a *models.QuizAttempt) *models.QuizAttempt {
	c := *a
	c.Answers = append([]models.Answer(nil), a.Answers...)
	c.QuestionOrder = append([]string(nil), a.QuestionOrder...)
	return &c
}

func (f *fakeAttemptStore) FindByID(ctx context.Context, id string) (*models.QuizAttempt, error) {
	a, ok := f.attempts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneAttempt(a), nil
}

func (f *fakeAttemptStore) FindInProgress(ctx context.Context, userID, quizID string) (*models.QuizAttempt, error) {
	for _, a := range f.attempts {
		if a.UserID == userID && a.QuizID == quizID && a.Status == models.AttemptInProgress {
			return cloneAttempt(a), nil
		}
	}
	return nil, nil
}

func (f *fakeAttemptStore) FindByUserAndQuiz(ctx context.Context, userID, quizID string) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			out = append(out, *cloneAttempt(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (f *fakeAttemptStore) FindByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, *cloneAttempt(a))
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	f.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

func (f *fakeAttemptStore) Replace(ctx context.Context, attempt *models.QuizAttempt) error {
	f.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

type fakeProgressStore struct {
	docs map[string]*models.UserProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{docs: make(map[string]*models.UserProgress)}
}

func cloneProgress(p *models.UserProgress) *models.UserProgress {
	c := *p
	c.Courses = make([]models.CourseProgress, len(p.Courses))
	for i, cp := range p.Courses {
		cc := cp
		cc.Themes = make([]models.ThemeProgress, len(cp.Themes))
		for j, tp := range cp.Themes {
			tc := tp
			tc.Lessons = append([]models.LessonProgress(nil), tp.Lessons...)
			cc.Themes[j] = tc
		}
		c.Courses[i] = cc
	}
	return &c
}

func (f *fakeProgressStore) FindByUser(ctx context.Context, userID string) (*models.UserProgress, error) {
	p, ok := f.docs[userID]
	if !ok {
		return nil, nil
	}
	return cloneProgress(p), nil
}

func (f *fakeProgressStore) Create(ctx context.Context, progress *models.UserProgress) error {
	f.docs[progress.UserID] = cloneProgress(progress)
	return nil
}

func (f *fakeProgressStore) Replace(ctx context.Context, progress *models.UserProgress) error {
	f.docs[progress.UserID] = cloneProgress(progress)
	return nil
}

type fakeDailyStore struct {
	docs map[string]*models.DailyProgress
}

func newFakeDailyStore() *fakeDailyStore {
	return &fakeDailyStore{docs: make(map[string]*models.DailyProgress)}
}

func (f *fakeDailyStore) FindByUser(ctx context.Context, userID string) (*models.DailyProgress, error) {
	if d, ok := f.docs[userID]; ok {
		c := *d
		return &c, nil
	}
	return &models.DailyProgress{UserID: userID}, nil
}

func (f *fakeDailyStore) Save(ctx context.Context, daily *models.DailyProgress) error {
	c := *daily
	f.docs[daily.UserID] = &c
	return nil
}

type fakeContentStore struct {
	courses []models.Course
	themes  []models.Theme
	lessons []models.Lesson
}

func (f *fakeContentStore) Course(ctx context.Context, id string) (*models.Course, error) {
	for i := range f.courses {
		if f.courses[i].ID == id {
			return &f.courses[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeContentStore) Theme(ctx context.Context, id string) (*models.Theme, error) {
	for i := range f.themes {
		if f.themes[i].ID == id {
			return &f.themes[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeContentStore) Lesson(ctx context.Context, id string) (*models.Lesson, error) {
	for i := range f.lessons {
		if f.lessons[i].ID == id {
			return &f.lessons[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeContentStore) PublishedCourses(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		if c.Published {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeContentStore) ThemesByCourse(ctx context.Context, courseID string) ([]models.Theme, error) {
	var out []models.Theme
	for _, t := range f.themes {
		if t.CourseID == courseID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeContentStore) LessonsByTheme(ctx context.Context, themeID string) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		if l.ThemeID == themeID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

type fakeSettings struct {
	maxDaily  int
	tokenMult float64
	xpMult    float64
}

func (f *fakeSettings) MaxDailyTasks(ctx context.Context) (int, error) {
	return f.maxDaily, nil
}

func (f *fakeSettings) LevelMultipliers(ctx context.Context, userID string) (float64, float64, error) {
	if f.tokenMult == 0 {
		return 1, 1, nil
	}
	return f.tokenMult, f.xpMult, nil
}

type recordingLedger struct {
	grants []rewards.GrantRequest
	fail   bool
}

func (l *recordingLedger) Grant(ctx context.Context, req rewards.GrantRequest) (*rewards.Transaction, error) {
	if l.fail {
		return nil, context.DeadlineExceeded
	}
	l.grants = append(l.grants, req)
	return &rewards.Transaction{ID: "tx", UserID: req.UserID, Amount: req.Amount}, nil
}

func (l *recordingLedger) countByType(t string) int {
	n := 0
	for _, g := range l.grants {
		if g.Type == t {
			n++
		}
	}
	return n
}
