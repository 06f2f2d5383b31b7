package certs

import (
	"fmt"
	"testing"
	"time"

	"edcert/models"
	courseModels "edcert/models/course"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database with the same
// error translation the production postgres connection uses.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&courseModels.Course{},
		&courseModels.Lesson{},
		&courseModels.Quiz{},
		&courseModels.Enrollment{},
		&courseModels.LessonCompletion{},
		&courseModels.QuizAttempt{},
		&courseModels.Certificate{},
	))

	return db
}

// seedCompletedCourse creates a user who has finished every published
// lesson and passed the single required quiz of a fresh course. Returns
// the user and course ids.
func seedCompletedCourse(t *testing.T, db *gorm.DB, score float64) (uint, uint) {
	t.Helper()

	user := models.User{Name: "Ada Lovelace", Email: uuid.NewString() + "@example.com", Role: "USER"}
	require.NoError(t, db.Create(&user).Error)

	course := courseModels.Course{
		Title:          "Foundations of Go",
		Level:          "BEGINNER",
		Category:       "PROGRAMMING",
		InstructorName: "Rob Cox",
		Status:         "ACTIVE",
	}
	require.NoError(t, db.Create(&course).Error)

	require.NoError(t, db.Create(&courseModels.Enrollment{
		UserID:           user.ID,
		CourseID:         course.ID,
		Status:           "COMPLETED",
		EnrolledAt:       time.Now().AddDate(0, -1, 0),
		TimeSpentMinutes: 480,
	}).Error)

	for i := 0; i < 5; i++ {
		lesson := courseModels.Lesson{CourseID: course.ID, Title: fmt.Sprintf("Lesson %d", i+1), Position: i + 1, IsPublished: true}
		require.NoError(t, db.Create(&lesson).Error)
		require.NoError(t, db.Create(&courseModels.LessonCompletion{
			UserID:   user.ID,
			CourseID: course.ID,
			LessonID: lesson.ID,
		}).Error)
	}

	quiz := courseModels.Quiz{CourseID: course.ID, Title: "Final Quiz", PassingScore: 70, IsRequired: true, IsPublished: true}
	require.NoError(t, db.Create(&quiz).Error)
	require.NoError(t, db.Create(&courseModels.QuizAttempt{
		UserID:        user.ID,
		QuizID:        quiz.ID,
		CourseID:      course.ID,
		Score:         score,
		MaxScore:      100,
		Passed:        true,
		AttemptNumber: 1,
	}).Error)

	return user.ID, course.ID
}

// insertCertificate creates a certificate row directly, bypassing the
// manager, for store-level tests.
func insertCertificate(t *testing.T, db *gorm.DB, userID, courseID uint, status courseModels.CertificateStatus) *courseModels.Certificate {
	t.Helper()

	code := NormalizeCode(fmt.Sprintf("CERT-%d-%s", time.Now().Year(), uuid.NewString()[:8]))
	cert := &courseModels.Certificate{
		UserID:           userID,
		CourseID:         courseID,
		VerificationCode: code,
		VerificationURL:  "http://localhost/api/verify/" + code,
		StudentName:      "Ada Lovelace",
		CourseName:       "Foundations of Go",
		InstructorName:   "Rob Cox",
		CompletionDate:   time.Now(),
		IssuedAt:         time.Now(),
		Template:         string(TemplateStandard),
		Status:           status,
	}
	if status != courseModels.CertStatusRevoked {
		key := courseModels.ActiveKeyFor(userID, courseID)
		cert.ActiveKey = &key
	}
	require.NoError(t, db.Create(cert).Error)
	return cert
}
