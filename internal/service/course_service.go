package service

import (
	"ai_study_backend/internal/config"
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/util"
	"ai_study_backend/pkg/cache"
	"ai_study_backend/pkg/logger"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const viewCountKeyPrefix = "course:views:"

type CourseService struct {
	CourseRepo  *repository.CourseRepository
	SectionRepo *repository.SectionRepository
	Cache       *cache.Cache
	Cfg         *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	sectionRepo *repository.SectionRepository,
	queryCache *cache.Cache,
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
) *CourseService {
	return &CourseService{
		CourseRepo:  courseRepo,
		SectionRepo: sectionRepo,
		Cache:       queryCache,
		Cfg:         cfg,
		DB:          db,
		Redis:       rdb,
	}
}

type CourseCreateRequest struct {
	Title    string                `json:"title" binding:"required"`
	Topic    string                `json:"topic"`
	Type     string                `json:"type"`
	IsPublic bool                  `json:"isPublic"`
	Settings *model.CourseSettings `json:"settings"`
}

func (s *CourseService) CreateCourse(actor Actor, req CourseCreateRequest) (*model.Course, error) {
	courseType := req.Type
	if courseType == "" {
		courseType = model.CourseTypeGuide
	}

	settings := model.DefaultCourseSettings(s.maxNestingDepth())
	if req.Settings != nil {
		settings = *req.Settings
		if settings.MaxNestingDepth <= 0 {
			settings.MaxNestingDepth = s.maxNestingDepth()
		}
		if settings.Structure == "" {
			settings.Structure = model.StructureHierarchical
		}
	}

	course := &model.Course{
		OwnerID:    actor.ID,
		Title:      req.Title,
		Topic:      req.Topic,
		Type:       courseType,
		IsPublic:   req.IsPublic,
		Settings:   settings,
		SectionIDs: []uint{},
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		course.Slug = uniqueCourseSlug(tx, req.Title)
		return tx.Create(course).Error
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// GetCourse 私有课程仅所有者可见
func (s *CourseService) GetCourse(actor Actor, id uint) (*model.Course, error) {
	course, err := loadCourse(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !course.IsPublic && course.OwnerID != actor.ID {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

type CourseUpdateRequest struct {
	Title    *string               `json:"title"`
	Topic    *string               `json:"topic"`
	Type     *string               `json:"type"`
	IsPublic *bool                 `json:"isPublic"`
	Settings *model.CourseSettings `json:"settings"`
}

func (s *CourseService) UpdateCourse(actor Actor, id uint, req CourseUpdateRequest) (*model.Course, error) {
	var updated *model.Course
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(course, actor); err != nil {
			return err
		}

		if req.Title != nil && *req.Title != course.Title {
			course.Title = *req.Title
			course.Slug = uniqueCourseSlug(tx, *req.Title)
		}
		if req.Topic != nil {
			course.Topic = *req.Topic
		}
		if req.Type != nil {
			course.Type = *req.Type
		}
		if req.IsPublic != nil {
			course.IsPublic = *req.IsPublic
		}
		if req.Settings != nil {
			course.Settings = *req.Settings
		}
		updated = course
		return tx.Save(course).Error
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(id)
	return updated, nil
}

// DeleteCourse 连同全部章节与版本历史，一个事务内级联删除
func (s *CourseService) DeleteCourse(actor Actor, id uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, id)
		if err != nil {
			return err
		}
		if err := requireOwner(course, actor); err != nil {
			return err
		}

		var sectionIDs []uint
		if err := tx.Model(&model.Section{}).
			Where("course_id = ?", id).
			Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}
		if len(sectionIDs) > 0 {
			if err := tx.Unscoped().Where("section_id IN ?", sectionIDs).
				Delete(&model.SectionVersion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", id).
				Delete(&model.Section{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Course{}, id).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// SearchCourses 非本人课程只允许检索公开的
func (s *CourseService) SearchCourses(actor Actor, filter repository.CourseFilter) ([]model.Course, int64, error) {
	if filter.OwnerID != actor.ID {
		public := true
		filter.Public = &public
	}
	return s.CourseRepo.Search(filter)
}

// ForkCourse 复刻：深拷贝课程及整棵章节树为一个全新、独立的副本。
// 分两遍复制（先建副本记ID映射，再改写父子引用），整个过程在
// 单个事务内，任何一步失败都不会留下半棵树。
func (s *CourseService) ForkCourse(actor Actor, sourceID uint) (*model.Course, error) {
	var fork *model.Course
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		source, err := loadCourse(tx, sourceID)
		if err != nil {
			return err
		}
		if !source.IsPublic && source.OwnerID != actor.ID {
			return util.ErrForkNotAllowed
		}

		// 必须走 tx：事务外的连接读会和本事务互相等锁
		sourceOwnerName := ""
		var sourceOwner model.User
		if err := tx.First(&sourceOwner, source.OwnerID).Error; err == nil {
			sourceOwnerName = sourceOwner.Name
		}

		// 1. 复制课程文档：计数清零、转为私有、登记来源
		copy := *source
		copy.ID = 0
		copy.CreatedAt = time.Time{}
		copy.UpdatedAt = time.Time{}
		copy.OwnerID = actor.ID
		copy.Slug = uniqueCourseSlug(tx, source.Title)
		copy.ForkCount = 0
		copy.ViewCount = 0
		copy.IsPublic = false
		copy.ForkedFrom = &model.ForkLineage{
			SourceCourseID:  source.ID,
			SourceOwnerID:   source.OwnerID,
			SourceOwnerName: sourceOwnerName,
			ForkedAt:        time.Now(),
		}
		if err := tx.Create(&copy).Error; err != nil {
			return err
		}

		var originals []model.Section
		if err := tx.Where("course_id = ?", source.ID).Find(&originals).Error; err != nil {
			return err
		}

		// 2. 第一遍：只复制章节本体，父子引用留到下一遍
		idMap := util.NewIDMap[uint]()
		copies := make([]model.Section, len(originals))
		oldParents := make([]*uint, len(originals))
		for i, orig := range originals {
			cp := orig
			cp.ID = 0
			cp.CreatedAt = time.Time{}
			cp.UpdatedAt = time.Time{}
			cp.CourseID = copy.ID
			oldParents[i] = cp.ParentID
			cp.ParentID = nil
			copies[i] = cp
		}
		if len(copies) > 0 {
			if err := tx.CreateInBatches(&copies, s.forkBatchSize()).Error; err != nil {
				return err
			}
		}
		for i := range originals {
			idMap.Add(originals[i].ID, copies[i].ID)
		}

		// 3. 第二遍：用映射改写父指针与子列表
		for i := range copies {
			copies[i].ParentID = idMap.RemapPtr(oldParents[i])
			copies[i].ChildIDs = idMap.RemapSlice(copies[i].ChildIDs)
			if err := tx.Save(&copies[i]).Error; err != nil {
				return err
			}
		}
		copy.SectionIDs = idMap.RemapSlice(source.SectionIDs)
		if err := tx.Save(&copy).Error; err != nil {
			return err
		}

		// 4. 源课程计数+1
		if err := tx.Model(&model.Course{}).Where("id = ?", source.ID).
			Update("fork_count", gorm.Expr("fork_count + 1")).Error; err != nil {
			return err
		}

		fork = &copy
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(sourceID)
	return fork, nil
}

// UpdateCourseStats 按需重算单个课程的聚合统计
func (s *CourseService) UpdateCourseStats(courseID uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, courseID)
		if err != nil {
			return err
		}
		return recomputeCourseStats(tx, course)
	})
	if err != nil {
		return err
	}
	s.invalidate(courseID)
	return nil
}

// RecomputeAllStats 分批重算全部课程，限制单事务持有的行数
func (s *CourseService) RecomputeAllStats() (int, error) {
	const batch = 50
	total := 0
	for offset := 0; ; offset += batch {
		ids, err := s.CourseRepo.ListIDs(offset, batch)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		for _, id := range ids {
			if err := s.UpdateCourseStats(id); err != nil {
				return total, err
			}
			total++
		}
	}
}

// RecordView 浏览数先缓冲进Redis，由后台任务定期刷回数据库；
// 未接Redis时直接累加到课程行
func (s *CourseService) RecordView(ctx context.Context, courseID uint) {
	if s.Redis == nil {
		if err := s.CourseRepo.AddViews(courseID, 1); err != nil {
			logger.Log.Warn("view count update failed", zap.Uint("courseId", courseID), zap.Error(err))
		}
		return
	}
	key := fmt.Sprintf("%s%d", viewCountKeyPrefix, courseID)
	if err := s.Redis.Incr(ctx, key).Err(); err != nil {
		logger.Log.Warn("view count buffer failed", zap.Uint("courseId", courseID), zap.Error(err))
	}
}

// FlushViewCounts 把Redis缓冲的浏览数落库，由分钟级后台任务调用
func (s *CourseService) FlushViewCounts(ctx context.Context) error {
	if s.Redis == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := s.Redis.Scan(ctx, cursor, viewCountKeyPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		for _, key := range keys {
			val, err := s.Redis.GetDel(ctx, key).Result()
			if err != nil {
				if err != redis.Nil {
					logger.Log.Warn("view count read failed", zap.String("key", key), zap.Error(err))
				}
				continue
			}
			courseID := util.MustParseUint(strings.TrimPrefix(key, viewCountKeyPrefix))
			delta := util.ParseIntDefault(val, 0)
			if courseID == 0 || delta == 0 {
				continue
			}
			if err := s.CourseRepo.AddViews(courseID, delta); err != nil {
				logger.Log.Warn("view count flush failed", zap.Uint("courseId", courseID), zap.Error(err))
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (s *CourseService) maxNestingDepth() int {
	if s.Cfg != nil && s.Cfg.Course.MaxNestingDepth > 0 {
		return s.Cfg.Course.MaxNestingDepth
	}
	return 5
}

func (s *CourseService) forkBatchSize() int {
	if s.Cfg != nil && s.Cfg.Course.ForkBatchSize > 0 {
		return s.Cfg.Course.ForkBatchSize
	}
	return 100
}

func (s *CourseService) invalidate(courseID uint) {
	if s.Cache != nil {
		s.Cache.InvalidateTags(context.Background(), courseTag(courseID))
	}
}

func uniqueCourseSlug(tx *gorm.DB, title string) string {
	base := util.Slugify(title)
	slug := base
	for i := 2; ; i++ {
		var count int64
		tx.Model(&model.Course{}).Where("slug = ?", slug).Count(&count)
		if count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
