package service

import (
	"ai_study_backend/internal/config"
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/util"
	"ai_study_backend/pkg/cache"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Actor 发起操作的用户身份，由认证层解出后传入
type Actor struct {
	ID   uint
	Name string
}

type SectionService struct {
	SectionRepo *repository.SectionRepository
	CourseRepo  *repository.CourseRepository
	VersionRepo *repository.SectionVersionRepository
	Converter   *ConverterService
	Cache       *cache.Cache
	Cfg         *config.Config
	DB          *gorm.DB
}

func NewSectionService(
	sectionRepo *repository.SectionRepository,
	courseRepo *repository.CourseRepository,
	versionRepo *repository.SectionVersionRepository,
	converter *ConverterService,
	queryCache *cache.Cache,
	cfg *config.Config,
	db *gorm.DB,
) *SectionService {
	return &SectionService{
		SectionRepo: sectionRepo,
		CourseRepo:  courseRepo,
		VersionRepo: versionRepo,
		Converter:   converter,
		Cache:       queryCache,
		Cfg:         cfg,
		DB:          db,
	}
}

type SectionCreateRequest struct {
	CourseID uint   `json:"courseId" binding:"required"`
	ParentID *uint  `json:"parentId"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	Format   string `json:"format"`
}

func (s *SectionService) CreateSection(actor Actor, req SectionCreateRequest) (*model.Section, error) {
	format := model.FormatMarkup
	if req.Format != "" {
		parsed, err := model.ParseContentFormat(req.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", util.ErrInvalidFormat, req.Format)
		}
		format = parsed
	}

	var created *model.Section
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, req.CourseID)
		if err != nil {
			return err
		}
		if err := requireOwner(course, actor); err != nil {
			return err
		}

		var parent *model.Section
		var path model.TreePath
		level := 0
		if req.ParentID != nil {
			parent, err = loadSection(tx, *req.ParentID)
			if err != nil {
				return err
			}
			if parent.CourseID != course.ID {
				return util.ErrCrossCourseParent
			}
			level = parent.Level + 1
			if level > course.Settings.MaxNestingDepth {
				return fmt.Errorf("%w: level %d exceeds max %d",
					util.ErrNestingDepthExceeded, level, course.Settings.MaxNestingDepth)
			}
			path = parent.TreePath().Child(len(parent.ChildIDs))
		} else {
			path = model.TreePath{len(course.SectionIDs)}
		}

		section := &model.Section{
			CourseID: course.ID,
			ParentID: req.ParentID,
			Title:    req.Title,
			Slug:     uniqueSectionSlug(tx, course.ID, req.Title),
			Path:     path.String(),
			Level:    level,
			Order:    path[len(path)-1],
			Settings: model.DefaultSectionSettings(),
		}
		applyContentBlock(s.Converter, section, req.Content, format)

		if err := tx.Create(section).Error; err != nil {
			return err
		}

		if parent != nil {
			parent.ChildIDs = append(parent.ChildIDs, section.ID)
			parent.HasChildren = true
			if err := tx.Save(parent).Error; err != nil {
				return err
			}
		} else {
			course.SectionIDs = append(course.SectionIDs, section.ID)
			if err := tx.Save(course).Error; err != nil {
				return err
			}
		}

		if err := recomputeCourseStats(tx, course); err != nil {
			return err
		}
		created = section
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCourse(req.CourseID)
	return created, nil
}

type SectionUpdateRequest struct {
	Title    *string                `json:"title"`
	Settings *model.SectionSettings `json:"settings"`
}

func (s *SectionService) UpdateSection(actor Actor, id uint, req SectionUpdateRequest) (*model.Section, error) {
	var updated *model.Section
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		section, err := loadSection(tx, id)
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

		if req.Title != nil && *req.Title != section.Title {
			section.Title = *req.Title
			section.Slug = uniqueSectionSlug(tx, course.ID, *req.Title)
		}
		if req.Settings != nil {
			section.Settings = *req.Settings
		}
		updated = section
		return tx.Save(section).Error
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCourse(updated.CourseID)
	return updated, nil
}

// MoveSection 挂到新父节点下。被移动子树的全部后代路径/层级
// 都在同一事务内重算，避免前缀匹配与排序查询读到陈旧路径。
func (s *SectionService) MoveSection(actor Actor, id uint, newParentID *uint, newOrder int) error {
	var courseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		section, err := loadSection(tx, id)
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
		courseID = course.ID

		newLevel := 0
		var newParent *model.Section
		if newParentID != nil {
			if *newParentID == id {
				return util.ErrSelfParent
			}
			newParent, err = loadSection(tx, *newParentID)
			if err != nil {
				return err
			}
			if newParent.CourseID != course.ID {
				return util.ErrCrossCourseParent
			}
			if newParent.TreePath().HasPrefix(section.TreePath()) {
				return util.ErrSelfParent
			}
			newLevel = newParent.Level + 1
		}

		// 子树最深层级在新位置不得超限
		subtree, err := findSubtree(tx, course.ID, section.Path)
		if err != nil {
			return err
		}
		relDepth := 0
		for _, desc := range subtree {
			if d := desc.Level - section.Level; d > relDepth {
				relDepth = d
			}
		}
		if newLevel+relDepth > course.Settings.MaxNestingDepth {
			return fmt.Errorf("%w: subtree bottom would reach level %d, max %d",
				util.ErrNestingDepthExceeded, newLevel+relDepth, course.Settings.MaxNestingDepth)
		}

		// 摘离旧父节点
		if err := s.detach(tx, course, section); err != nil {
			return err
		}

		// 挂入新位置
		section.ParentID = newParentID
		if err := tx.Save(section).Error; err != nil {
			return err
		}
		if newParent != nil {
			// detach 可能改写过同一行，重读以免丢更新
			newParent, err = loadSection(tx, *newParentID)
			if err != nil {
				return err
			}
			newParent.ChildIDs = insertID(newParent.ChildIDs, id, newOrder)
			newParent.HasChildren = true
			if err := tx.Save(newParent).Error; err != nil {
				return err
			}
			return s.reindexChildren(tx, course, newParent)
		}

		course.SectionIDs = insertID(course.SectionIDs, id, newOrder)
		if err := tx.Save(course).Error; err != nil {
			return err
		}
		return s.reindexChildren(tx, course, nil)
	})
	if err != nil {
		return err
	}
	s.invalidateCourse(courseID)
	return nil
}

// ReorderSections 重排同一父节点下的兄弟顺序；ids 必须是现有子列表的全排列
func (s *SectionService) ReorderSections(actor Actor, courseID uint, parentID *uint, ids []uint) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		course, err := loadCourse(tx, courseID)
		if err != nil {
			return err
		}
		if err := requireOwner(course, actor); err != nil {
			return err
		}

		var current []uint
		var parent *model.Section
		if parentID != nil {
			parent, err = loadSection(tx, *parentID)
			if err != nil {
				return err
			}
			if parent.CourseID != courseID {
				return util.ErrCrossCourseParent
			}
			current = parent.ChildIDs
		} else {
			current = course.SectionIDs
		}

		if !samePermutation(current, ids) {
			return fmt.Errorf("%w: reorder list does not match current children", util.ErrSectionNotFound)
		}

		if parent != nil {
			parent.ChildIDs = ids
			if err := tx.Save(parent).Error; err != nil {
				return err
			}
		} else {
			course.SectionIDs = ids
			if err := tx.Save(course).Error; err != nil {
				return err
			}
		}
		return s.reindexChildren(tx, course, parent)
	})
	if err != nil {
		return err
	}
	s.invalidateCourse(courseID)
	return nil
}

// DeleteSection 级联删除整棵子树（连同版本历史），单事务完成
func (s *SectionService) DeleteSection(actor Actor, id uint) error {
	var courseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		section, err := loadSection(tx, id)
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
		courseID = course.ID

		subtree, err := findSubtree(tx, course.ID, section.Path)
		if err != nil {
			return err
		}

		doomed := make([]uint, 0, len(subtree)+1)
		doomed = append(doomed, section.ID)
		for _, desc := range subtree {
			doomed = append(doomed, desc.ID)
		}

		// 后代先删，最后删自身
		for i := len(doomed) - 1; i >= 0; i-- {
			if err := tx.Unscoped().Where("section_id = ?", doomed[i]).
				Delete(&model.SectionVersion{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.Section{}, doomed[i]).Error; err != nil {
				return err
			}
		}

		if err := s.detach(tx, course, section); err != nil {
			return err
		}
		return recomputeCourseStats(tx, course)
	})
	if err != nil {
		return err
	}
	s.invalidateCourse(courseID)
	return nil
}

// DuplicateSection 复制章节（可含整棵子树）。两遍法：先只建副本并登记
// 旧ID→新ID映射，再用映射改写父子引用，避免新ID未分配时互相指向。
func (s *SectionService) DuplicateSection(actor Actor, id uint, includeChildren bool) (*model.Section, error) {
	var rootCopy *model.Section
	var courseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		section, err := loadSection(tx, id)
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
		courseID = course.ID

		originals := []model.Section{*section}
		if includeChildren {
			subtree, err := findSubtree(tx, course.ID, section.Path)
			if err != nil {
				return err
			}
			originals = append(originals, subtree...)
		}

		// 第一遍：建副本，登记映射
		idMap := util.NewIDMap[uint]()
		copies := make([]*model.Section, len(originals))
		for i, orig := range originals {
			cp := orig
			cp.ID = 0
			cp.CreatedAt = time.Time{}
			cp.UpdatedAt = time.Time{}
			cp.Slug = uniqueSectionSlug(tx, course.ID, orig.Title)
			if err := tx.Create(&cp).Error; err != nil {
				return err
			}
			idMap.Add(orig.ID, cp.ID)
			copies[i] = &cp
		}

		// 第二遍：用映射改写引用
		for _, cp := range copies {
			if cp != copies[0] {
				cp.ParentID = idMap.RemapPtr(cp.ParentID)
			}
			cp.ChildIDs = idMap.RemapSlice(cp.ChildIDs)
			if !includeChildren {
				cp.ChildIDs = nil
				cp.HasChildren = false
			}
			if err := tx.Save(cp).Error; err != nil {
				return err
			}
		}

		// 副本根追加为原节点的最后一个兄弟
		if section.ParentID != nil {
			parent, err := loadSection(tx, *section.ParentID)
			if err != nil {
				return err
			}
			parent.ChildIDs = append(parent.ChildIDs, copies[0].ID)
			if err := tx.Save(parent).Error; err != nil {
				return err
			}
			if err := s.reindexChildren(tx, course, parent); err != nil {
				return err
			}
		} else {
			course.SectionIDs = append(course.SectionIDs, copies[0].ID)
			if err := tx.Save(course).Error; err != nil {
				return err
			}
			if err := s.reindexChildren(tx, course, nil); err != nil {
				return err
			}
		}

		if err := recomputeCourseStats(tx, course); err != nil {
			return err
		}
		rootCopy, err = loadSection(tx, copies[0].ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCourse(courseID)
	return rootCopy, nil
}

// SplitSection 按Markdown行号把一个章节拆成多个兄弟章节。
// 原章节保留第一段，其余段落成为紧随其后的新兄弟；
// 原章节的孩子整体挂到最后一个结果章节上。
func (s *SectionService) SplitSection(actor Actor, id uint, splitPoints []int) ([]model.Section, error) {
	if len(splitPoints) == 0 {
		return nil, fmt.Errorf("%w: no split points", util.ErrInvalidSplitPoint)
	}

	var results []model.Section
	var courseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		section, err := loadSection(tx, id)
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
		courseID = course.ID

		markup, err := s.sectionMarkup(section)
		if err != nil {
			return err
		}
		lines := strings.Split(markup, "\n")

		prev := 0
		for _, p := range splitPoints {
			if p <= prev || p >= len(lines) {
				return fmt.Errorf("%w: %d (content has %d lines)", util.ErrInvalidSplitPoint, p, len(lines))
			}
			prev = p
		}

		chunks := make([]string, 0, len(splitPoints)+1)
		start := 0
		for _, p := range splitPoints {
			chunks = append(chunks, strings.TrimSpace(strings.Join(lines[start:p], "\n")))
			start = p
		}
		chunks = append(chunks, strings.TrimSpace(strings.Join(lines[start:], "\n")))

		// 覆盖前留档
		if err := snapshotSection(tx, section, actor, "before split", s.maxVersions()); err != nil {
			return err
		}

		applyContentBlock(s.Converter, section, chunks[0], model.FormatMarkup)
		if err := tx.Save(section).Error; err != nil {
			return err
		}

		parts := []*model.Section{section}
		for i, chunk := range chunks[1:] {
			part := &model.Section{
				CourseID: course.ID,
				ParentID: section.ParentID,
				Title:    fmt.Sprintf("%s (%d)", section.Title, i+2),
				Settings: section.Settings,
			}
			part.Slug = uniqueSectionSlug(tx, course.ID, part.Title)
			applyContentBlock(s.Converter, part, chunk, model.FormatMarkup)
			if err := tx.Create(part).Error; err != nil {
				return err
			}
			parts = append(parts, part)
		}

		// 孩子挂到最后一个结果章节
		last := parts[len(parts)-1]
		if last != section && len(section.ChildIDs) > 0 {
			for _, childID := range section.ChildIDs {
				if err := tx.Model(&model.Section{}).Where("id = ?", childID).
					Update("parent_id", last.ID).Error; err != nil {
					return err
				}
			}
			last.ChildIDs = section.ChildIDs
			last.HasChildren = true
			section.ChildIDs = nil
			section.HasChildren = false
			if err := tx.Save(last).Error; err != nil {
				return err
			}
			if err := tx.Save(section).Error; err != nil {
				return err
			}
		}

		// 新章节插到原章节之后
		newIDs := make([]uint, 0, len(parts)-1)
		for _, p := range parts[1:] {
			newIDs = append(newIDs, p.ID)
		}
		if section.ParentID != nil {
			parent, err := loadSection(tx, *section.ParentID)
			if err != nil {
				return err
			}
			parent.ChildIDs = insertAfter(parent.ChildIDs, section.ID, newIDs)
			if err := tx.Save(parent).Error; err != nil {
				return err
			}
			if err := s.reindexChildren(tx, course, parent); err != nil {
				return err
			}
		} else {
			course.SectionIDs = insertAfter(course.SectionIDs, section.ID, newIDs)
			if err := tx.Save(course).Error; err != nil {
				return err
			}
			if err := s.reindexChildren(tx, course, nil); err != nil {
				return err
			}
		}

		if err := recomputeCourseStats(tx, course); err != nil {
			return err
		}
		for _, p := range parts {
			fresh, err := loadSection(tx, p.ID)
			if err != nil {
				return err
			}
			results = append(results, *fresh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCourse(courseID)
	return results, nil
}

// MergeSections 把 source 的内容并入 target（Markdown层面拼接），
// source 的孩子改挂到 target 下，然后删除 source。
func (s *SectionService) MergeSections(actor Actor, sourceID, targetID uint) (*model.Section, error) {
	if sourceID == targetID {
		return nil, fmt.Errorf("%w: cannot merge a section into itself", util.ErrSelfParent)
	}

	var merged *model.Section
	var courseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		source, err := loadSection(tx, sourceID)
		if err != nil {
			return err
		}
		target, err := loadSection(tx, targetID)
		if err != nil {
			return err
		}
		if source.CourseID != target.CourseID {
			return util.ErrCrossCourseParent
		}
		course, err := loadCourse(tx, source.CourseID)
		if err != nil {
			return err
		}
		if err := requireOwner(course, actor); err != nil {
			return err
		}
		courseID = course.ID

		// 互为祖先时合并会破坏树结构
		if target.TreePath().HasPrefix(source.TreePath()) ||
			source.TreePath().HasPrefix(target.TreePath()) {
			return util.ErrSelfParent
		}

		// source 的孩子改挂到 target 下后，子树最深层级不得超限
		subtree, err := findSubtree(tx, course.ID, source.Path)
		if err != nil {
			return err
		}
		relDepth := 0
		for _, desc := range subtree {
			if d := desc.Level - source.Level; d > relDepth {
				relDepth = d
			}
		}
		if relDepth > 0 && target.Level+relDepth > course.Settings.MaxNestingDepth {
			return fmt.Errorf("%w: merged children would reach level %d, max %d",
				util.ErrNestingDepthExceeded, target.Level+relDepth, course.Settings.MaxNestingDepth)
		}

		sourceMarkup, err := s.sectionMarkup(source)
		if err != nil {
			return err
		}
		targetMarkup, err := s.sectionMarkup(target)
		if err != nil {
			return err
		}

		if err := snapshotSection(tx, target, actor, "before merge", s.maxVersions()); err != nil {
			return err
		}

		combined := strings.TrimSpace(targetMarkup + "\n\n" + sourceMarkup)
		applyContentBlock(s.Converter, target, combined, model.FormatMarkup)

		// source 的孩子排到 target 现有孩子之后
		for _, childID := range source.ChildIDs {
			if err := tx.Model(&model.Section{}).Where("id = ?", childID).
				Update("parent_id", target.ID).Error; err != nil {
				return err
			}
		}
		target.ChildIDs = append(target.ChildIDs, source.ChildIDs...)
		target.HasChildren = len(target.ChildIDs) > 0
		if err := tx.Save(target).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("section_id = ?", source.ID).
			Delete(&model.SectionVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Section{}, source.ID).Error; err != nil {
			return err
		}
		if err := s.detach(tx, course, source); err != nil {
			return err
		}

		// detach 重排兄弟时可能已改写 target 的路径行，重读后再刷子树
		target, err = loadSection(tx, target.ID)
		if err != nil {
			return err
		}
		if err := s.reindexChildren(tx, course, target); err != nil {
			return err
		}
		if err := recomputeCourseStats(tx, course); err != nil {
			return err
		}
		merged, err = loadSection(tx, target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCourse(courseID)
	return merged, nil
}

// ---------- helpers ----------

func (s *SectionService) maxVersions() int {
	if s.Cfg != nil && s.Cfg.Course.MaxVersions > 0 {
		return s.Cfg.Course.MaxVersions
	}
	return 50
}

func (s *SectionService) invalidateCourse(courseID uint) {
	if s.Cache != nil {
		s.Cache.InvalidateTags(context.Background(), courseTag(courseID))
	}
}

// sectionMarkup 章节主内容的Markdown投影
func (s *SectionService) sectionMarkup(section *model.Section) (string, error) {
	primary := section.Content.Primary()
	if section.Content.PrimaryFormat == model.FormatMarkup || primary == "" {
		return primary, nil
	}
	return s.Converter.Convert(primary, section.Content.PrimaryFormat, model.FormatMarkup)
}

// detach 把章节从其父列表（或课程根列表）中摘除并重排剩余兄弟
func (s *SectionService) detach(tx *gorm.DB, course *model.Course, section *model.Section) error {
	if section.ParentID != nil {
		parent, err := loadSection(tx, *section.ParentID)
		if err != nil {
			return err
		}
		parent.ChildIDs = removeID(parent.ChildIDs, section.ID)
		parent.HasChildren = len(parent.ChildIDs) > 0
		if err := tx.Save(parent).Error; err != nil {
			return err
		}
		return s.reindexChildren(tx, course, parent)
	}
	course.SectionIDs = removeID(course.SectionIDs, section.ID)
	if err := tx.Save(course).Error; err != nil {
		return err
	}
	return s.reindexChildren(tx, course, nil)
}

// reindexChildren 按父节点的子列表重发兄弟序号，并向下递归刷新
// 整棵子树的路径与层级。parent 为 nil 时处理课程根列表。
func (s *SectionService) reindexChildren(tx *gorm.DB, course *model.Course, parent *model.Section) error {
	var ids []uint
	var base model.TreePath
	level := 0
	if parent != nil {
		ids = parent.ChildIDs
		base = parent.TreePath()
		level = parent.Level + 1
	} else {
		ids = course.SectionIDs
	}

	for i, id := range ids {
		child, err := loadSection(tx, id)
		if err != nil {
			return err
		}
		child.Order = i
		child.Level = level
		child.Path = base.Child(i).String()
		if err := tx.Save(child).Error; err != nil {
			return err
		}
		if len(child.ChildIDs) > 0 {
			if err := s.reindexChildren(tx, course, child); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadCourse(tx *gorm.DB, id uint) (*model.Course, error) {
	var course model.Course
	if err := tx.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func loadSection(tx *gorm.DB, id uint) (*model.Section, error) {
	var section model.Section
	if err := tx.First(&section, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}
	return &section, nil
}

func findSubtree(tx *gorm.DB, courseID uint, path string) ([]model.Section, error) {
	var sections []model.Section
	err := tx.Where("course_id = ? AND path LIKE ?", courseID, path+".%").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	repository.SortByPath(sections)
	return sections, nil
}

func requireOwner(course *model.Course, actor Actor) error {
	if course.OwnerID != actor.ID {
		return util.ErrPermissionDenied
	}
	return nil
}

func uniqueSectionSlug(tx *gorm.DB, courseID uint, title string) string {
	base := util.Slugify(title)
	slug := base
	for i := 2; ; i++ {
		var count int64
		tx.Model(&model.Section{}).
			Where("course_id = ? AND slug = ?", courseID, slug).
			Count(&count)
		if count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func removeID(ids []uint, id uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func insertID(ids []uint, id uint, pos int) []uint {
	ids = removeID(ids, id)
	if pos < 0 || pos > len(ids) {
		pos = len(ids)
	}
	out := make([]uint, 0, len(ids)+1)
	out = append(out, ids[:pos]...)
	out = append(out, id)
	out = append(out, ids[pos:]...)
	return out
}

func insertAfter(ids []uint, after uint, newIDs []uint) []uint {
	out := make([]uint, 0, len(ids)+len(newIDs))
	for _, v := range ids {
		out = append(out, v)
		if v == after {
			out = append(out, newIDs...)
		}
	}
	return out
}

func samePermutation(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uint]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}
