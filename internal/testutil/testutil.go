// Package testutil provides an in-memory database and fixtures for package
// tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory sqlite database with foreign keys enforced
// and every model migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func City(t *testing.T, db *gorm.DB, name, region string) models.City {
	t.Helper()
	city := models.City{Name: name, Region: region}
	require.NoError(t, db.Create(&city).Error)
	return city
}

func School(t *testing.T, db *gorm.DB, name string, cityID uint, domain string) models.School {
	t.Helper()
	school := models.School{Name: name, CityID: cityID, EmailDomain: domain}
	require.NoError(t, db.Omit(clause.Associations).Create(&school).Error)
	return school
}

// User creates an end user. schoolID may be nil.
func User(t *testing.T, db *gorm.DB, first, last, email string, schoolID *uint, created time.Time) models.User {
	t.Helper()
	user := models.User{
		FirstName:         first,
		LastName:          last,
		Email:             email,
		SchoolID:          schoolID,
		Role:              models.UserRoleUser,
		CreationTimestamp: created,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&user).Error)
	return user
}

// Item creates a content item in the received state.
func Item(t *testing.T, db *gorm.DB, kind models.ContentKind, creatorID uint, schoolID *uint, content string, created time.Time) models.ContentItem {
	t.Helper()
	item := models.ContentItem{
		Kind:              kind,
		CreatorID:         creatorID,
		SchoolID:          schoolID,
		Content:           content,
		CreationTimestamp: created,
		Status:            models.StatusReceived,
	}
	if kind == models.KindSpotted {
		item.Color = models.DefaultSpottedColor
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&item).Error)
	return item
}

func UintPtr(v uint) *uint {
	return &v
}
