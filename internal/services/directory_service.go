package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
	"github.com/goware/emailx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DirectoryService manages cities and the schools inside them.
type DirectoryService struct {
	db  *gorm.DB
	acl *access.Evaluator
}

func NewDirectoryService(db *gorm.DB, acl *access.Evaluator) *DirectoryService {
	return &DirectoryService{db: db, acl: acl}
}

func (s *DirectoryService) ListCities(ctx context.Context, sess *access.Session) ([]models.City, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceCity, access.ActionRead)); err != nil {
		return nil, err
	}

	cities := []models.City{}
	if err := s.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

func (s *DirectoryService) GetCity(ctx context.Context, sess *access.Session, id uint) (*models.City, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceCity, access.ActionRead)); err != nil {
		return nil, err
	}

	var city models.City
	err := s.db.WithContext(ctx).Take(&city, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("city", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load city: %w", err)
	}
	return &city, nil
}

func (s *DirectoryService) CreateCity(ctx context.Context, sess *access.Session, req *dto.CityRequest) (*models.City, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceCity, access.ActionCreate)); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("city name is required")
	}

	city := models.City{Name: name, Region: strings.TrimSpace(req.Region)}
	if err := s.db.WithContext(ctx).Create(&city).Error; err != nil {
		return nil, fmt.Errorf("failed to create city: %w", err)
	}

	metrics.DirectoryMutations.WithLabelValues("city", "create").Inc()
	return &city, nil
}

func (s *DirectoryService) UpdateCity(ctx context.Context, sess *access.Session, id uint, req *dto.CityRequest) (*models.City, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceCity, access.ActionUpdate)); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("city name is required")
	}

	var city models.City
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&city, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("city", id)
			}
			return fmt.Errorf("failed to load city: %w", err)
		}
		city.Name = name
		city.Region = strings.TrimSpace(req.Region)
		return tx.Model(&city).Select("name", "region").Updates(&city).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.DirectoryMutations.WithLabelValues("city", "update").Inc()
	return &city, nil
}

// DeleteCity refuses while any school, user or content item still points at
// the city.
func (s *DirectoryService) DeleteCity(ctx context.Context, sess *access.Session, id uint) error {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceCity, access.ActionDelete)); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := refuseReferenced(tx, "city", id,
			dependent{&models.School{}, "city_id", "schools"},
			dependent{&models.User{}, "city_id", "users"},
			dependent{&models.ContentItem{}, "city_id", "content items"},
		)
		if err != nil {
			return err
		}
		return deleteRow(tx, &models.City{}, "city", id)
	})
	if err != nil {
		return err
	}

	metrics.DirectoryMutations.WithLabelValues("city", "delete").Inc()
	return nil
}

// ListSchools returns schools with their city name. With cityID set only that
// city's schools are returned, ordered by name.
func (s *DirectoryService) ListSchools(ctx context.Context, sess *access.Session, cityID *uint) ([]dto.SchoolRow, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceSchool, access.ActionRead)); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).
		Table("schools AS s").
		Select("s.id, s.name, COALESCE(s.email_domain, '') AS email_domain, s.city_id, c.name AS city_name").
		Joins("JOIN cities c ON c.id = s.city_id")
	if cityID != nil {
		q = q.Where("s.city_id = ?", *cityID)
	} else {
		q = q.Order("c.name ASC")
	}

	rows := []dto.SchoolRow{}
	if err := q.Order("s.name ASC").Order("s.id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}
	return rows, nil
}

func (s *DirectoryService) CreateSchool(ctx context.Context, sess *access.Session, req *dto.SchoolRequest) (*models.School, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceSchool, access.ActionCreate)); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("school name is required")
	}
	if req.CityID == 0 {
		return nil, invalid("city_id is required")
	}
	domain, err := NormalizeEmailDomain(req.EmailDomain)
	if err != nil {
		return nil, err
	}

	school := models.School{Name: name, CityID: req.CityID, EmailDomain: domain}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var city models.City
		if err := tx.Select("id").Take(&city, req.CityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("city", req.CityID)
			}
			return fmt.Errorf("failed to load city: %w", err)
		}
		if err := tx.Omit(clause.Associations).Create(&school).Error; err != nil {
			return fmt.Errorf("failed to create school: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DirectoryMutations.WithLabelValues("school", "create").Inc()
	return &school, nil
}

// UpdateSchool changes name and email domain. The city is never touched.
func (s *DirectoryService) UpdateSchool(ctx context.Context, sess *access.Session, id uint, req *dto.SchoolUpdateRequest) (*models.School, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceSchool, access.ActionUpdate)); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("school name is required")
	}
	domain, err := NormalizeEmailDomain(req.EmailDomain)
	if err != nil {
		return nil, err
	}

	var school models.School
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&school, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("school", id)
			}
			return fmt.Errorf("failed to load school: %w", err)
		}
		school.Name = name
		school.EmailDomain = domain
		return tx.Model(&school).Omit(clause.Associations).Select("name", "email_domain").Updates(&school).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.DirectoryMutations.WithLabelValues("school", "update").Inc()
	return &school, nil
}

// DeleteSchool refuses while any user is still enrolled in the school or any
// post or spotted item is still filed under it.
func (s *DirectoryService) DeleteSchool(ctx context.Context, sess *access.Session, id uint) error {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceSchool, access.ActionDelete)); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := refuseReferenced(tx, "school", id,
			dependent{&models.User{}, "school_id", "users"},
			dependent{&models.ContentItem{}, "school_id", "content items"},
		)
		if err != nil {
			return err
		}
		return deleteRow(tx, &models.School{}, "school", id)
	})
	if err != nil {
		return err
	}

	metrics.DirectoryMutations.WithLabelValues("school", "delete").Inc()
	return nil
}

// dependent is a table whose column points at the row being deleted.
type dependent struct {
	model  interface{}
	column string
	label  string
}

func refuseReferenced(tx *gorm.DB, entity string, id uint, deps ...dependent) error {
	for _, d := range deps {
		var n int64
		if err := tx.Model(d.model).Where(d.column+" = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count %s: %w", d.label, err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s %d has %d %s", ErrHasDependents, entity, id, n, d.label)
		}
	}
	return nil
}

// deleteRow removes one row by id. A foreign key violation raised by the
// database means something still references the row.
func deleteRow(tx *gorm.DB, model interface{}, entity string, id uint) error {
	res := tx.Where("id = ?", id).Delete(model)
	if isForeignKeyViolation(res.Error) {
		return fmt.Errorf("%w: %s %d is still referenced", ErrHasDependents, entity, id)
	}
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(entity, id)
	}
	return nil
}

// isForeignKeyViolation recognises the translated GORM error and the raw
// sqlite message, which the sqlite dialector leaves untranslated for
// violations detected at statement end.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// NormalizeEmailDomain lower-cases a school email domain and drops a leading
// "@". An empty input is allowed and stays empty.
func NormalizeEmailDomain(raw string) (string, error) {
	domain := strings.ToLower(strings.TrimSpace(raw))
	domain = strings.TrimPrefix(domain, "@")
	if domain == "" {
		return "", nil
	}
	if err := emailx.ValidateFast("info@" + domain); err != nil {
		return "", invalid("email domain %q is not valid", raw)
	}
	return domain, nil
}
