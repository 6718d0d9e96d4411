package admin

import (
	"context"
	"errors"
	"strings"

	"yemenflix/src/database"
	lib "yemenflix/src/modules/admin/lib"
	models "yemenflix/src/modules/admin/models"
	content "yemenflix/src/modules/content/models"
	"yemenflix/src/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ReportService struct {
	db *database.Manager
}

func NewReportService(db *database.Manager) *ReportService {
	return &ReportService{db: db}
}

// Create files a pending report. Anyone may report; the content and
// episode, when given, must exist.
func (s *ReportService) Create(ctx context.Context, req lib.ReportRequest) (*models.Report, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	db := s.db.DB().WithContext(ctx)
	if req.ContentID != nil {
		if err := exists(db, &content.Content{}, *req.ContentID, "Content not found"); err != nil {
			return nil, err
		}
	}
	if req.EpisodeID != nil {
		if err := exists(db, &content.Episode{}, *req.EpisodeID, "Episode not found"); err != nil {
			return nil, err
		}
	}
	r := models.Report{
		ContentID:     req.ContentID,
		EpisodeID:     req.EpisodeID,
		ReporterEmail: strings.ToLower(strings.TrimSpace(req.ReporterEmail)),
		ErrorType:     req.ErrorType,
		Description:   req.Description,
		PageURL:       req.PageURL,
		Status:        models.ReportPending,
	}
	if err := db.Create(&r).Error; err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Uint("report_id", r.ID).Str("type", r.ErrorType).Msg("report filed")
	return &r, nil
}

func exists(db *gorm.DB, model interface{}, id uint, msg string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return utils.NotFound(msg)
	}
	return nil
}

type ReportPage struct {
	Reports    []models.Report  `json:"reports"`
	Pagination utils.Pagination `json:"pagination"`
}

func (s *ReportService) List(ctx context.Context, q lib.ReportQuery) (*ReportPage, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 24
	}
	off := utils.CalculateOffset(q.Page, q.Limit, "desc", "created_at")

	db := s.db.DB().WithContext(ctx).Model(&models.Report{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}
	out := &ReportPage{Reports: make([]models.Report, 0)}
	if err := db.Order(off.OrderBy + " " + off.SortBy + ", id DESC").
		Limit(off.ItemsPerPage).Offset(off.Offset).
		Find(&out.Reports).Error; err != nil {
		return nil, err
	}
	out.Pagination = utils.Paginate(total, off.CurrentPage, off.ItemsPerPage)
	return out, nil
}

func (s *ReportService) Update(ctx context.Context, id uint, p lib.ReportPatch) (*models.Report, error) {
	if err := utils.ValidateStruct(p); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if p.Status != nil {
		updates["status"] = *p.Status
	}
	if p.AdminNotes != nil {
		updates["admin_notes"] = *p.AdminNotes
	}
	if len(updates) == 0 {
		return nil, utils.BadRequest("no fields to update")
	}
	db := s.db.DB().WithContext(ctx)
	var r models.Report
	if err := db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Report not found")
		}
		return nil, err
	}
	if err := db.Model(&r).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := db.First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}
