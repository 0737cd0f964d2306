package repository

import (
	"ai_study_backend/internal/model"

	"gorm.io/gorm"
)

type SectionVersionRepository struct {
	DB *gorm.DB
}

func NewSectionVersionRepository(db *gorm.DB) *SectionVersionRepository {
	return &SectionVersionRepository{DB: db}
}

func (r *SectionVersionRepository) Create(version *model.SectionVersion) error {
	return r.DB.Create(version).Error
}

// ListBySection 新版本在前
func (r *SectionVersionRepository) ListBySection(sectionID uint) ([]model.SectionVersion, error) {
	var versions []model.SectionVersion
	err := r.DB.Where("section_id = ?", sectionID).
		Order("version_number desc").
		Find(&versions).Error
	return versions, err
}

func (r *SectionVersionRepository) FindByNumber(sectionID uint, versionNumber int) (*model.SectionVersion, error) {
	var v model.SectionVersion
	err := r.DB.Where("section_id = ? AND version_number = ?", sectionID, versionNumber).
		First(&v).Error
	return &v, err
}

func (r *SectionVersionRepository) MaxVersionNumber(sectionID uint) (int, error) {
	var max int
	err := r.DB.Model(&model.SectionVersion{}).
		Where("section_id = ?", sectionID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error
	return max, err
}

// TrimOldest 只保留最近 keep 条，更早的静默删除（硬删，不归档）
func (r *SectionVersionRepository) TrimOldest(db *gorm.DB, sectionID uint, keep int) error {
	var cutoff int
	err := db.Model(&model.SectionVersion{}).
		Where("section_id = ?", sectionID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&cutoff).Error
	if err != nil {
		return err
	}
	return db.Unscoped().
		Where("section_id = ? AND version_number <= ?", sectionID, cutoff-keep).
		Delete(&model.SectionVersion{}).Error
}

func (r *SectionVersionRepository) DeleteBySection(db *gorm.DB, sectionID uint) error {
	return db.Unscoped().Where("section_id = ?", sectionID).Delete(&model.SectionVersion{}).Error
}
