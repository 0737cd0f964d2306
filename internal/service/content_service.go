package service

import (
	"ai_study_backend/internal/config"
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/util"
	"ai_study_backend/pkg/cache"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ContentService 负责单章节内容的写入、主格式切换与版本还原。
// 结构性操作（移动/拆分/合并等）在 SectionService。
type ContentService struct {
	SectionRepo *repository.SectionRepository
	VersionRepo *repository.SectionVersionRepository
	Converter   *ConverterService
	Cache       *cache.Cache
	Cfg         *config.Config
	DB          *gorm.DB
}

func NewContentService(
	sectionRepo *repository.SectionRepository,
	versionRepo *repository.SectionVersionRepository,
	converter *ConverterService,
	queryCache *cache.Cache,
	cfg *config.Config,
	db *gorm.DB,
) *ContentService {
	return &ContentService{
		SectionRepo: sectionRepo,
		VersionRepo: versionRepo,
		Converter:   converter,
		Cache:       queryCache,
		Cfg:         cfg,
		DB:          db,
	}
}

type ContentUpdateRequest struct {
	Content    string `json:"content"`
	Format     string `json:"format" binding:"required"`
	ChangeNote string `json:"changeNote"`
}

// UpdateContent 覆盖前先把旧主内容存档，再写入新内容并尽力再生
// 另外两个槽位，最后重算字数/阅读时长。
func (s *ContentService) UpdateContent(actor Actor, sectionID uint, req ContentUpdateRequest) (*model.Section, error) {
	format, err := model.ParseContentFormat(req.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidFormat, req.Format)
	}

	var updated *model.Section
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		section, err := loadSection(tx, sectionID)
		if err != nil {
			return err
		}
		course, err := loadCourse(tx, section.CourseID)
		if err != nil {
			return err
		}
		if err := requireOwner(course, actor); err != nil {
			return err
		}

		if err := snapshotSection(tx, section, actor, req.ChangeNote, s.maxVersions()); err != nil {
			return err
		}

		applyContentBlock(s.Converter, section, req.Content, format)
		if err := tx.Save(section).Error; err != nil {
			return err
		}
		if err := recomputeCourseStats(tx, course); err != nil {
			return err
		}
		updated = section
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCourse(updated.CourseID)
	return updated, nil
}

// GetContent 返回指定格式的内容；该槽位为空时从主槽位即时转换
func (s *ContentService) GetContent(sectionID uint, formatName string) (string, error) {
	format, err := model.ParseContentFormat(formatName)
	if err != nil {
		return "", fmt.Errorf("%w: %s", util.ErrInvalidFormat, formatName)
	}

	section, err := loadSection(s.DB, sectionID)
	if err != nil {
		return "", err
	}
	if !section.HasContent {
		return "", nil
	}

	if slot := section.Content.Slot(format); slot.Text != "" {
		return slot.Text, nil
	}
	return s.Converter.Convert(section.Content.Primary(), section.Content.PrimaryFormat, format)
}

// SwitchPrimaryFormat 把权威槽位切到另一格式。目标槽位必须已有内容；
// 切换前留档，切换后按新主槽位重算统计。
func (s *ContentService) SwitchPrimaryFormat(actor Actor, sectionID uint, formatName string) (*model.Section, error) {
	format, err := model.ParseContentFormat(formatName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrInvalidFormat, formatName)
	}

	var updated *model.Section
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		section, err := loadSection(tx, sectionID)
		if err != nil {
			return err
		}
		course, err := loadCourse(tx, section.CourseID)
		if err != nil {
			return err
		}
		if err := requireOwner(course, actor); err != nil {
			return err
		}

		if section.Content.PrimaryFormat == format {
			updated = section
			return nil
		}
		if section.Content.Slot(format).Text == "" {
			return fmt.Errorf("%w: %s", util.ErrEmptyTargetFormat, format)
		}

		if err := snapshotSection(tx, section, actor, "before primary format switch", s.maxVersions()); err != nil {
			return err
		}

		section.Content.PrimaryFormat = format
		words := s.Converter.WordCount(section.Content.Primary(), format)
		section.WordCount = words
		section.ReadMinutes = s.Converter.ReadMinutes(words)

		if err := tx.Save(section).Error; err != nil {
			return err
		}
		if err := recomputeCourseStats(tx, course); err != nil {
			return err
		}
		updated = section
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCourse(updated.CourseID)
	return updated, nil
}

// RestoreVersion 回到历史版本。还原前先把当前状态留档，
// 所以还原本身也可以被再次撤销。
func (s *ContentService) RestoreVersion(actor Actor, sectionID uint, versionNumber int) (*model.Section, error) {
	var updated *model.Section
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		section, err := loadSection(tx, sectionID)
		if err != nil {
			return err
		}
		course, err := loadCourse(tx, section.CourseID)
		if err != nil {
			return err
		}
		if err := requireOwner(course, actor); err != nil {
			return err
		}

		var version model.SectionVersion
		err = tx.Where("section_id = ? AND version_number = ?", sectionID, versionNumber).
			First(&version).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return util.ErrVersionNotFound
			}
			return err
		}

		note := fmt.Sprintf("restore version %d", versionNumber)
		if err := snapshotSection(tx, section, actor, note, s.maxVersions()); err != nil {
			return err
		}

		applyContentBlock(s.Converter, section, version.Content, version.Format)
		if err := tx.Save(section).Error; err != nil {
			return err
		}
		if err := recomputeCourseStats(tx, course); err != nil {
			return err
		}
		updated = section
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCourse(updated.CourseID)
	return updated, nil
}

func (s *ContentService) maxVersions() int {
	if s.Cfg != nil && s.Cfg.Course.MaxVersions > 0 {
		return s.Cfg.Course.MaxVersions
	}
	return 50
}

func (s *ContentService) invalidateCourse(courseID uint) {
	if s.Cache != nil {
		s.Cache.InvalidateTags(context.Background(), courseTag(courseID))
	}
}
