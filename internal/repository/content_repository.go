package repository

import (
	"context"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContentRepository reads the course catalog collections maintained by the
// admin service, the same way the quiz service reads skills from the
// knowledge service's collection.
type ContentRepository struct {
	Courses *mongo.Collection
	Themes  *mongo.Collection
	Lessons *mongo.Collection
}

func NewContentRepository(db *mongo.Database) *ContentRepository {
	return &ContentRepository{
		Courses: db.Collection("courses"),
		Themes:  db.Collection("themes"),
		Lessons: db.Collection("lessons"),
	}
}

func (r *ContentRepository) Course(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.Courses.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *ContentRepository) Theme(ctx context.Context, id string) (*models.Theme, error) {
	var theme models.Theme
	if err := r.Themes.FindOne(ctx, bson.M{"_id": id}).Decode(&theme); err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *ContentRepository) Lesson(ctx context.Context, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.Lessons.FindOne(ctx, bson.M{"_id": id}).Decode(&lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *ContentRepository) PublishedCourses(ctx context.Context) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := r.Courses.Find(ctx, bson.M{"published": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var courses []models.Course
	for cur.Next(ctx) {
		var c models.Course
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, cur.Err()
}

func (r *ContentRepository) ThemesByCourse(ctx context.Context, courseID string) ([]models.Theme, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := r.Themes.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var themes []models.Theme
	for cur.Next(ctx) {
		var t models.Theme
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, cur.Err()
}

func (r *ContentRepository) LessonsByTheme(ctx context.Context, themeID string) ([]models.Lesson, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := r.Lessons.Find(ctx, bson.M{"theme_id": themeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var lessons []models.Lesson
	for cur.Next(ctx) {
		var l models.Lesson
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, cur.Err()
}
