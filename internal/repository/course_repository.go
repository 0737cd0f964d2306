package repository

import (
	"ai_study_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("slug = ?", slug).First(&course).Error
	return &course, err
}

func (r *CourseRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// CourseFilter 课程搜索条件；零值字段不参与过滤
type CourseFilter struct {
	OwnerID  uint
	Type     string
	Public   *bool
	Query    string // 标题/主题的模糊匹配
	Page     int
	Limit    int
}

func (r *CourseRepository) Search(filter CourseFilter) ([]model.Course, int64, error) {
	query := r.DB.Model(&model.Course{})

	if filter.OwnerID > 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Public != nil {
		query = query.Where("is_public = ?", *filter.Public)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("title LIKE ? OR topic LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	var courses []model.Course
	err := query.Order("updated_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

// ListIDs 按批次取课程ID，批量重算统计时使用
func (r *CourseRepository) ListIDs(offset, limit int) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Course{}).
		Order("id").
		Offset(offset).
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// AddViews 把缓冲的浏览数累加到课程行
func (r *CourseRepository) AddViews(id uint, delta int) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + ?", delta)).
		Error
}
