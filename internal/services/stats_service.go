package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
	"gorm.io/gorm"
)

const statsMonths = 12

type StatsService struct {
	db  *gorm.DB
	acl *access.Evaluator
	now func() time.Time
}

func NewStatsService(db *gorm.DB, acl *access.Evaluator) *StatsService {
	return &StatsService{
		db:  db,
		acl: acl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Overview collects dashboard totals, per-city and per-school counts and
// monthly creation series.
func (s *StatsService) Overview(ctx context.Context, sess *access.Session) (*dto.Statistics, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceStatistics, access.ActionRead)); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	stats := &dto.Statistics{}

	totals, err := s.totals(db)
	if err != nil {
		return nil, err
	}
	stats.Totals = *totals

	if stats.CitiesStats, err = s.cityStats(db); err != nil {
		return nil, err
	}
	if stats.SchoolsStats, err = s.schoolStats(db); err != nil {
		return nil, err
	}

	since := monthStart(s.now()).AddDate(0, -(statsMonths - 1), 0)
	if stats.UsersOverTime, err = s.series(db.Model(&models.User{}), since); err != nil {
		return nil, err
	}
	if stats.PostsOverTime, err = s.series(db.Model(&models.ContentItem{}).Scopes(ofKind(models.KindPost)), since); err != nil {
		return nil, err
	}
	if stats.SpottedOverTime, err = s.series(db.Model(&models.ContentItem{}).Scopes(ofKind(models.KindSpotted)), since); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *StatsService) totals(db *gorm.DB) (*dto.TotalStats, error) {
	t := &dto.TotalStats{}
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&t.TotalUsers, db.Model(&models.User{})},
		{&t.TotalCities, db.Model(&models.City{})},
		{&t.TotalSchools, db.Model(&models.School{})},
		{&t.TotalPosts, db.Model(&models.ContentItem{}).Scopes(ofKind(models.KindPost))},
		{&t.TotalSpotted, db.Model(&models.ContentItem{}).Scopes(ofKind(models.KindSpotted))},
		{&t.ApprovedPosts, db.Model(&models.ContentItem{}).Where("kind = ? AND status = ?", models.KindPost, models.StatusApproved)},
		{&t.ApprovedSpotted, db.Model(&models.ContentItem{}).Where("kind = ? AND status = ?", models.KindSpotted, models.StatusApproved)},
		{&t.PendingPosts, db.Model(&models.ContentItem{}).Where("kind = ? AND status = ?", models.KindPost, models.StatusReceived)},
		{&t.PendingSpotted, db.Model(&models.ContentItem{}).Where("kind = ? AND status = ?", models.KindSpotted, models.StatusReceived)},
		{&t.ReportedPosts, db.Model(&models.ContentItem{}).Where("kind = ? AND report_count > 0", models.KindPost)},
		{&t.ReportedSpotted, db.Model(&models.ContentItem{}).Where("kind = ? AND report_count > 0", models.KindSpotted)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to count totals: %w", err)
		}
	}
	return t, nil
}

const cityStatsQuery = `
SELECT c.id, c.name, COALESCE(c.region, '') AS region,
	(SELECT COUNT(*) FROM users u LEFT JOIN schools us ON us.id = u.school_id
		WHERE COALESCE(u.city_id, us.city_id) = c.id) AS user_count,
	(SELECT COUNT(*) FROM schools s WHERE s.city_id = c.id) AS school_count,
	(SELECT COUNT(*) FROM content_items ci LEFT JOIN schools cs ON cs.id = ci.school_id
		WHERE ci.kind = ? AND COALESCE(ci.city_id, cs.city_id) = c.id) AS post_count,
	(SELECT COUNT(*) FROM content_items ci LEFT JOIN schools cs ON cs.id = ci.school_id
		WHERE ci.kind = ? AND COALESCE(ci.city_id, cs.city_id) = c.id) AS spotted_count
FROM cities c
ORDER BY c.name ASC, c.id ASC`

func (s *StatsService) cityStats(db *gorm.DB) ([]dto.CityStats, error) {
	rows := []dto.CityStats{}
	if err := db.Raw(cityStatsQuery, models.KindPost, models.KindSpotted).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to compute city stats: %w", err)
	}
	return rows, nil
}

const schoolStatsQuery = `
SELECT s.id, s.name, s.city_id, c.name AS city_name,
	(SELECT COUNT(*) FROM users u WHERE u.school_id = s.id) AS user_count,
	(SELECT COUNT(*) FROM content_items ci WHERE ci.kind = ? AND ci.school_id = s.id) AS post_count,
	(SELECT COUNT(*) FROM content_items ci WHERE ci.kind = ? AND ci.school_id = s.id) AS spotted_count
FROM schools s
JOIN cities c ON c.id = s.city_id
ORDER BY c.name ASC, s.name ASC, s.id ASC`

func (s *StatsService) schoolStats(db *gorm.DB) ([]dto.SchoolStats, error) {
	rows := []dto.SchoolStats{}
	if err := db.Raw(schoolStatsQuery, models.KindPost, models.KindSpotted).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to compute school stats: %w", err)
	}
	return rows, nil
}

// series buckets creation timestamps into calendar months, oldest first.
// Months without rows are reported with a zero count.
func (s *StatsService) series(query *gorm.DB, since time.Time) ([]dto.TimeStats, error) {
	var stamps []time.Time
	if err := query.Where("creation_timestamp >= ?", since).Pluck("creation_timestamp", &stamps).Error; err != nil {
		return nil, fmt.Errorf("failed to load creation series: %w", err)
	}
	return bucketByMonth(stamps, since, statsMonths), nil
}

func bucketByMonth(stamps []time.Time, since time.Time, months int) []dto.TimeStats {
	out := make([]dto.TimeStats, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := since.AddDate(0, i, 0).Format("2006-01")
		out[i].Month = key
		index[key] = i
	}
	for _, ts := range stamps {
		if i, ok := index[ts.UTC().Format("2006-01")]; ok {
			out[i].Count++
		}
	}
	return out
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
