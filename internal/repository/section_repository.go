package repository

import (
	"ai_study_backend/internal/model"
	"sort"

	"gorm.io/gorm"
)

type SectionRepository struct {
	DB *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{DB: db}
}

func (r *SectionRepository) Create(section *model.Section) error {
	return r.DB.Create(section).Error
}

func (r *SectionRepository) Update(section *model.Section) error {
	return r.DB.Save(section).Error
}

func (r *SectionRepository) FindByID(id uint) (*model.Section, error) {
	var section model.Section
	err := r.DB.First(&section, id).Error
	return &section, err
}

func (r *SectionRepository) FindByIDs(ids []uint) ([]model.Section, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var sections []model.Section
	err := r.DB.Where("id IN ?", ids).Find(&sections).Error
	return sections, err
}

// FindByCourse 课程的全部章节，按物化路径的阅读顺序返回
func (r *SectionRepository) FindByCourse(courseID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("course_id = ?", courseID).Find(&sections).Error
	if err != nil {
		return nil, err
	}
	SortByPath(sections)
	return sections, nil
}

func (r *SectionRepository) FindByParent(parentID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("parent_id = ?", parentID).Order("sort_order").Find(&sections).Error
	return sections, err
}

func (r *SectionRepository) FindRoots(courseID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("course_id = ? AND parent_id IS NULL", courseID).
		Order("sort_order").Find(&sections).Error
	return sections, err
}

// FindByPathPrefix 前缀扫描取整棵子树（不含前缀节点本身）。
// 前缀以点结尾，保证 "0.1." 不会误中 "0.10.x"。
func (r *SectionRepository) FindByPathPrefix(courseID uint, prefix string) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("course_id = ? AND path LIKE ?", courseID, prefix+".%").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	SortByPath(sections)
	return sections, nil
}

func (r *SectionRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Section{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *SectionRepository) SlugExists(courseID uint, slug string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Section{}).
		Where("course_id = ? AND slug = ?", courseID, slug).
		Count(&count).Error
	return count > 0, err
}

// SearchCandidates 标题或任一内容槽位命中检索词的章节。
// 排名在服务层做，这里只负责收集候选。
func (r *SectionRepository) SearchCandidates(courseID uint, query string) ([]model.Section, error) {
	like := "%" + query + "%"
	var sections []model.Section
	err := r.DB.Where("course_id = ? AND (title LIKE ? OR CAST(content AS CHAR) LIKE ?)",
		courseID, like, like).
		Find(&sections).Error
	return sections, err
}

// SortByPath 物化路径按段数值比较排序。字符串序会把"10"排在"2"前，
// 所以不能直接用 ORDER BY path。排序结果即先序遍历。
func SortByPath(sections []model.Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		pi, pj := sections[i].TreePath(), sections[j].TreePath()
		return pi.Compare(pj) < 0
	})
}
