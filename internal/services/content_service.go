package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
	"github.com/kennygrant/sanitize"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxReportReason = 500

// ContentService moderates one content kind. Posts and spotted items share
// the same lifecycle, so the engine is instantiated once per kind.
type ContentService struct {
	db       *gorm.DB
	acl      *access.Evaluator
	kind     models.ContentKind
	resource access.Resource
	now      func() time.Time
}

func NewContentService(db *gorm.DB, acl *access.Evaluator, kind models.ContentKind) *ContentService {
	resource := access.ResourcePost
	if kind == models.KindSpotted {
		resource = access.ResourceSpotted
	}
	return &ContentService{
		db:       db,
		acl:      acl,
		kind:     kind,
		resource: resource,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ContentService) Kind() models.ContentKind {
	return s.kind
}

const contentRowColumns = `ci.id, ci.kind, ci.content, ci.creator_id, ci.creation_timestamp,
	ci.likes_count, ci.status, ci.report_count, ci.approved_at, ci.visibility, ci.color,
	COALESCE(u.first_name, '') AS creator_first_name,
	COALESCE(u.last_name, '') AS creator_last_name,
	COALESCE(u.email, '') AS creator_email,
	s.name AS school_name,
	c.name AS city_name`

// rows starts a display query joined with creator, school and city. The city
// falls back to the school's city when the item has none of its own.
func (s *ContentService) rows(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("content_items AS ci").
		Select(contentRowColumns).
		Joins("LEFT JOIN users u ON u.id = ci.creator_id").
		Joins("LEFT JOIN schools s ON s.id = ci.school_id").
		Joins("LEFT JOIN cities c ON c.id = COALESCE(ci.city_id, s.city_id)").
		Where("ci.kind = ?", s.kind)
}

// ListPending returns items awaiting a decision, oldest first.
func (s *ContentService) ListPending(ctx context.Context, sess *access.Session) ([]dto.ContentRow, error) {
	if err := s.acl.Authorize(sess, access.Op(s.resource, access.ActionRead)); err != nil {
		return nil, err
	}

	rows := []dto.ContentRow{}
	err := s.rows(ctx).
		Where("ci.status = ?", models.StatusReceived).
		Order("ci.creation_timestamp ASC").
		Order("ci.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending %s: %w", s.kind, err)
	}
	return rows, nil
}

// ListAll returns every item of the kind regardless of status, in the same
// order as the pending queue.
func (s *ContentService) ListAll(ctx context.Context, sess *access.Session) ([]dto.ContentRow, error) {
	if err := s.acl.Authorize(sess, access.Op(s.resource, access.ActionRead)); err != nil {
		return nil, err
	}

	rows := []dto.ContentRow{}
	err := s.rows(ctx).
		Order("ci.creation_timestamp ASC").
		Order("ci.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.kind, err)
	}
	return rows, nil
}

// ListReported returns items with at least one report, most reported first.
// Ties go to the older item. Status is not considered.
func (s *ContentService) ListReported(ctx context.Context, sess *access.Session) ([]dto.ContentRow, error) {
	if err := s.acl.Authorize(sess, access.Op(s.resource, access.ActionRead)); err != nil {
		return nil, err
	}

	rows := []dto.ContentRow{}
	err := s.rows(ctx).
		Where("ci.report_count > 0").
		Order("ci.report_count DESC").
		Order("ci.creation_timestamp ASC").
		Order("ci.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reported %s: %w", s.kind, err)
	}
	return rows, nil
}

func (s *ContentService) Get(ctx context.Context, sess *access.Session, id uint) (*dto.ContentRow, error) {
	if err := s.acl.Authorize(sess, access.Op(s.resource, access.ActionRead)); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *ContentService) get(ctx context.Context, id uint) (*dto.ContentRow, error) {
	var row dto.ContentRow
	res := s.rows(ctx).Where("ci.id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound(string(s.kind), id)
	}
	return &row, nil
}

// SetStatus moves an item to any of the three statuses. Every transition is
// allowed, including re-applying the current status.
func (s *ContentService) SetStatus(ctx context.Context, sess *access.Session, id uint, status string) error {
	if err := s.acl.Authorize(sess, access.Op(s.resource, access.ActionModerate)); err != nil {
		return err
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return err
	}
	return s.transition(ctx, sess, id, parsed)
}

func (s *ContentService) Approve(ctx context.Context, sess *access.Session, id uint) error {
	if err := s.acl.Authorize(sess, access.Op(s.resource, access.ActionModerate)); err != nil {
		return err
	}
	return s.transition(ctx, sess, id, models.StatusApproved)
}

func (s *ContentService) Reject(ctx context.Context, sess *access.Session, id uint) error {
	if err := s.acl.Authorize(sess, access.Op(s.resource, access.ActionModerate)); err != nil {
		return err
	}
	return s.transition(ctx, sess, id, models.StatusRejected)
}

// transition writes the new status. Report counts are left alone.
func (s *ContentService) transition(ctx context.Context, sess *access.Session, id uint, status models.Status) error {
	updates := map[string]interface{}{"status": status}
	if status == models.StatusApproved {
		updates["approved_at"] = s.now()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.takeItem(tx, id); err != nil {
			return err
		}
		return tx.Model(&models.ContentItem{}).
			Scopes(ofKind(s.kind)).Where("id = ?", id).
			Updates(updates).Error
	})
	if err != nil {
		return err
	}

	metrics.ModerationActions.WithLabelValues(string(s.kind), string(status)).Inc()
	slog.Info("content status changed",
		"kind", s.kind,
		"item_id", id,
		"status", status,
		"moderator_id", sess.ModeratorID,
	)
	return nil
}

// Delete removes the item together with every report that points at it.
func (s *ContentService) Delete(ctx context.Context, sess *access.Session, id uint) error {
	if err := s.acl.Authorize(sess, access.Op(s.resource, access.ActionDelete)); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.takeItem(tx, id); err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.ContentReport{}).Error; err != nil {
			return fmt.Errorf("failed to delete reports: %w", err)
		}
		res := tx.Scopes(ofKind(s.kind)).Where("id = ?", id).Delete(&models.ContentItem{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete %s: %w", s.kind, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(string(s.kind), id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.ModerationActions.WithLabelValues(string(s.kind), "delete").Inc()
	slog.Info("content deleted", "kind", s.kind, "item_id", id, "moderator_id", sess.ModeratorID)
	return nil
}

// RecordReport stores one end-user report and bumps the item's report count.
// It is fed by the ingestion hook, not by moderators.
func (s *ContentService) RecordReport(ctx context.Context, id uint, reporterID *uint, reason string) error {
	reason = strings.TrimSpace(sanitize.HTML(reason))
	if r := []rune(reason); len(r) > maxReportReason {
		reason = string(r[:maxReportReason])
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.takeItem(tx, id); err != nil {
			return err
		}
		report := models.ContentReport{
			Kind:       s.kind,
			ItemID:     id,
			ReporterID: reporterID,
			Reason:     reason,
		}
		if err := tx.Omit(clause.Associations).Create(&report).Error; err != nil {
			return fmt.Errorf("failed to store report: %w", err)
		}
		return tx.Model(&models.ContentItem{}).
			Scopes(ofKind(s.kind)).Where("id = ?", id).
			UpdateColumn("report_count", gorm.Expr("report_count + ?", 1)).Error
	})
	if err != nil {
		return err
	}

	metrics.ReportsRecorded.WithLabelValues(string(s.kind)).Inc()
	return nil
}

// Submit ingests a new item from the community app. It always starts in the
// received state.
func (s *ContentService) Submit(ctx context.Context, req *dto.SubmitContentRequest) (*dto.ContentRow, error) {
	content := strings.TrimSpace(sanitize.HTML(req.Content))
	if content == "" {
		return nil, invalid("content is required")
	}
	if req.CreatorID == 0 {
		return nil, invalid("creator_id is required")
	}

	item := models.ContentItem{
		Kind:              s.kind,
		CreatorID:         req.CreatorID,
		SchoolID:          req.SchoolID,
		CityID:            req.CityID,
		Content:           content,
		CreationTimestamp: s.now(),
		Status:            models.StatusReceived,
	}
	if req.CreationTimestamp != nil {
		item.CreationTimestamp = req.CreationTimestamp.UTC()
	}
	if s.kind == models.KindSpotted {
		item.Visibility = strings.TrimSpace(req.Visibility)
		item.Color = strings.TrimSpace(req.Color)
		if item.Color == "" {
			item.Color = models.DefaultSpottedColor
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.User{}, "creator", req.CreatorID); err != nil {
			return err
		}
		if req.SchoolID != nil {
			if err := mustExist(tx, &models.School{}, "school", *req.SchoolID); err != nil {
				return err
			}
		}
		if req.CityID != nil {
			if err := mustExist(tx, &models.City{}, "city", *req.CityID); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", s.kind, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.get(ctx, item.ID)
}

func (s *ContentService) takeItem(tx *gorm.DB, id uint) error {
	var item models.ContentItem
	err := tx.Select("id").Scopes(ofKind(s.kind)).Where("id = ?", id).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(string(s.kind), id)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", s.kind, err)
	}
	return nil
}

// ofKind restricts a content_items query to one content family.
func ofKind(kind models.ContentKind) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("kind = ?", kind)
	}
}

// mustExist reports a missing referenced row as invalid input.
func mustExist(tx *gorm.DB, model interface{}, entity string, id uint) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to look up %s: %w", entity, err)
	}
	if n == 0 {
		return invalid("%s %d does not exist", entity, id)
	}
	return nil
}
