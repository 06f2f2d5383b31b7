package certs

import (
	"github.com/jinzhu/now"

	courseModels "edcert/models/course"
)

// CourseIssueCount is one row of the top-courses aggregate.
type CourseIssueCount struct {
	CourseID   uint   `json:"course_id"`
	CourseName string `json:"course_name"`
	Issued     int64  `json:"issued"`
}

// AnalyticsReport is the admin analytics aggregate.
type AnalyticsReport struct {
	TotalsByStatus     map[string]int64   `json:"totals_by_status"`
	IssuedThisMonth    int64              `json:"issued_this_month"`
	TotalVerifications int64              `json:"total_verifications"`
	TotalDownloads     int64              `json:"total_downloads"`
	TopCourses         []CourseIssueCount `json:"top_courses"`
}

// Analytics builds the admin dashboard aggregate over the certificate
// table.
func (s *Store) Analytics() (*AnalyticsReport, error) {
	report := &AnalyticsReport{TotalsByStatus: map[string]int64{}}

	var statusRows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&courseModels.Certificate{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		report.TotalsByStatus[row.Status] = row.Count
	}

	monthStart := now.BeginningOfMonth()
	if err := s.db.Model(&courseModels.Certificate{}).
		Where("status = ? AND issued_at >= ?", courseModels.CertStatusGenerated, monthStart).
		Count(&report.IssuedThisMonth).Error; err != nil {
		return nil, err
	}

	var sums struct {
		Verifications int64
		Downloads     int64
	}
	if err := s.db.Model(&courseModels.Certificate{}).
		Select("coalesce(sum(verification_count), 0) as verifications, coalesce(sum(download_count), 0) as downloads").
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	report.TotalVerifications = sums.Verifications
	report.TotalDownloads = sums.Downloads

	if err := s.db.Model(&courseModels.Certificate{}).
		Select("course_id, course_name, count(*) as issued").
		Where("status = ?", courseModels.CertStatusGenerated).
		Group("course_id, course_name").
		Order("issued desc").
		Limit(5).
		Scan(&report.TopCourses).Error; err != nil {
		return nil, err
	}

	return report, nil
}
