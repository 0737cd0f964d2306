package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type VersionService struct {
	VersionRepo *repository.SectionVersionRepository
	SectionRepo *repository.SectionRepository
}

func NewVersionService(versionRepo *repository.SectionVersionRepository, sectionRepo *repository.SectionRepository) *VersionService {
	return &VersionService{
		VersionRepo: versionRepo,
		SectionRepo: sectionRepo,
	}
}

func (s *VersionService) ListVersions(sectionID uint) ([]model.SectionVersion, error) {
	if _, err := s.SectionRepo.FindByID(sectionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}
	return s.VersionRepo.ListBySection(sectionID)
}

func (s *VersionService) GetVersion(sectionID uint, versionNumber int) (*model.SectionVersion, error) {
	v, err := s.VersionRepo.FindByNumber(sectionID, versionNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}
	return v, nil
}

// VersionDiff 两个历史版本的粗粒度对比
type VersionDiff struct {
	A         model.SectionVersion `json:"a"`
	B         model.SectionVersion `json:"b"`
	WordDelta int                  `json:"wordDelta"`
	SameText  bool                 `json:"sameText"`
}

func (s *VersionService) CompareVersions(sectionID uint, a, b int) (*VersionDiff, error) {
	va, err := s.GetVersion(sectionID, a)
	if err != nil {
		return nil, err
	}
	vb, err := s.GetVersion(sectionID, b)
	if err != nil {
		return nil, err
	}
	return &VersionDiff{
		A:         *va,
		B:         *vb,
		WordDelta: vb.WordCount - va.WordCount,
		SameText:  va.Content == vb.Content,
	}, nil
}

// snapshotSection 在覆盖主内容前把当前状态存为一个版本，并把
// 历史截断到最近 keep 条（更早的静默丢弃，不归档）。
// 主槽位为空时无可留档，直接跳过。
func snapshotSection(tx *gorm.DB, section *model.Section, actor Actor, note string, keep int) error {
	primary := section.Content.Primary()
	if primary == "" {
		return nil
	}

	var max int
	err := tx.Model(&model.SectionVersion{}).
		Where("section_id = ?", section.ID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error
	if err != nil {
		return err
	}

	version := &model.SectionVersion{
		SectionID:     section.ID,
		VersionNumber: max + 1,
		Format:        section.Content.PrimaryFormat,
		Content:       primary,
		WordCount:     section.WordCount,
		SavedBy:       actor.ID,
		SavedByName:   actor.Name,
		ChangeNote:    note,
	}
	if err := tx.Create(version).Error; err != nil {
		return err
	}

	return tx.Unscoped().
		Where("section_id = ? AND version_number <= ?", section.ID, max+1-keep).
		Delete(&model.SectionVersion{}).Error
}
