package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/util"
	"ai_study_backend/pkg/cache"
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// QueryService 课程树的只读投影，全部经过缓存。
// 投影按课程打标签，写路径按课程整体失效。
type QueryService struct {
	CourseRepo  *repository.CourseRepository
	SectionRepo *repository.SectionRepository
	Converter   *ConverterService
	Cache       *cache.Cache
	DB          *gorm.DB
}

func NewQueryService(
	courseRepo *repository.CourseRepository,
	sectionRepo *repository.SectionRepository,
	converter *ConverterService,
	queryCache *cache.Cache,
	db *gorm.DB,
) *QueryService {
	return &QueryService{
		CourseRepo:  courseRepo,
		SectionRepo: sectionRepo,
		Converter:   converter,
		Cache:       queryCache,
		DB:          db,
	}
}

// CourseTreeOptions 控制树查询的深度与负载大小
type CourseTreeOptions struct {
	MaxDepth       int  // <=0 表示不限
	IncludeContent bool // false 时剥离内容槽位，只留结构元数据
}

// CourseTree 课程及其按树序排列的章节
type CourseTree struct {
	Course   model.Course    `json:"course"`
	Sections []model.Section `json:"sections"`
}

// GetCourseWithSections 返回课程与章节，按物化路径树序排列
func (s *QueryService) GetCourseWithSections(ctx context.Context, actor Actor, courseID uint, opts CourseTreeOptions) (*CourseTree, error) {
	course, err := s.visibleCourse(actor, courseID)
	if err != nil {
		return nil, err
	}

	key := courseKey(courseID, opts.MaxDepth, opts.IncludeContent)
	value, err := s.Cache.GetOrSet(ctx, key, cache.KindCourse, []string{courseTag(courseID)}, func() (interface{}, error) {
		sections, err := s.SectionRepo.FindByCourse(courseID)
		if err != nil {
			return nil, err
		}

		result := make([]model.Section, 0, len(sections))
		for _, sec := range sections {
			if opts.MaxDepth > 0 && sec.Level >= opts.MaxDepth {
				continue
			}
			if !opts.IncludeContent {
				sec.Content = model.ContentBlock{PrimaryFormat: sec.Content.PrimaryFormat}
			}
			result = append(result, sec)
		}
		return &CourseTree{Course: *course, Sections: result}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*CourseTree), nil
}

// HierarchyNode 嵌套的树节点，只含结构元数据
type HierarchyNode struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Path        string           `json:"path"`
	Level       int              `json:"level"`
	Order       int              `json:"order"`
	HasContent  bool             `json:"hasContent"`
	WordCount   int              `json:"wordCount"`
	ReadMinutes int              `json:"readMinutes"`
	Children    []*HierarchyNode `json:"children"`
}

// GetHierarchy 把扁平章节表折叠成嵌套树。
// 章节已按路径排好序，父节点必然先于子节点出现，单遍即可建树。
func (s *QueryService) GetHierarchy(ctx context.Context, actor Actor, courseID uint) ([]*HierarchyNode, error) {
	if _, err := s.visibleCourse(actor, courseID); err != nil {
		return nil, err
	}

	value, err := s.Cache.GetOrSet(ctx, hierarchyKey(courseID), cache.KindHierarchy, []string{courseTag(courseID)}, func() (interface{}, error) {
		sections, err := s.SectionRepo.FindByCourse(courseID)
		if err != nil {
			return nil, err
		}
		return buildHierarchy(sections), nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]*HierarchyNode), nil
}

func buildHierarchy(sections []model.Section) []*HierarchyNode {
	roots := []*HierarchyNode{}
	byID := make(map[uint]*HierarchyNode, len(sections))
	for _, sec := range sections {
		node := &HierarchyNode{
			ID:          sec.ID,
			Title:       sec.Title,
			Slug:        sec.Slug,
			Path:        sec.Path,
			Level:       sec.Level,
			Order:       sec.Order,
			HasContent:  sec.HasContent,
			WordCount:   sec.WordCount,
			ReadMinutes: sec.ReadMinutes,
			Children:    []*HierarchyNode{},
		}
		byID[sec.ID] = node
		if sec.ParentID != nil {
			if parent, ok := byID[*sec.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// TOCEntry 目录条目
type TOCEntry struct {
	SectionID uint   `json:"sectionId"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Level     int    `json:"level"`
	Path      string `json:"path"`
}

// GetTableOfContents 树序的目录。隐藏章节（ShowInTOC=false）连同
// 其整棵子树一并跳过。
func (s *QueryService) GetTableOfContents(ctx context.Context, actor Actor, courseID uint, maxDepth int) ([]TOCEntry, error) {
	if _, err := s.visibleCourse(actor, courseID); err != nil {
		return nil, err
	}

	value, err := s.Cache.GetOrSet(ctx, tocKey(courseID, maxDepth), cache.KindTOC, []string{courseTag(courseID)}, func() (interface{}, error) {
		sections, err := s.SectionRepo.FindByCourse(courseID)
		if err != nil {
			return nil, err
		}

		entries := []TOCEntry{}
		var hiddenPrefix string
		for _, sec := range sections {
			if hiddenPrefix != "" {
				if sec.Path == hiddenPrefix || strings.HasPrefix(sec.Path, hiddenPrefix+".") {
					continue
				}
				hiddenPrefix = ""
			}
			if !sec.Settings.ShowInTOC {
				hiddenPrefix = sec.Path
				continue
			}
			if maxDepth > 0 && sec.Level >= maxDepth {
				continue
			}
			entries = append(entries, TOCEntry{
				SectionID: sec.ID,
				Title:     sec.Title,
				Slug:      sec.Slug,
				Level:     sec.Level,
				Path:      sec.Path,
			})
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]TOCEntry), nil
}

// SearchHit 单条搜索命中
type SearchHit struct {
	SectionID uint   `json:"sectionId"`
	Title     string `json:"title"`
	Path      string `json:"path"`
	Level     int    `json:"level"`
	Rank      int    `json:"rank"`
	Snippet   string `json:"snippet"`
}

// SearchSections 课程内全文检索。标题命中排最前，主内容其次，
// 再生槽位最后；同档按树序。
func (s *QueryService) SearchSections(ctx context.Context, actor Actor, courseID uint, query string) ([]SearchHit, error) {
	if _, err := s.visibleCourse(actor, courseID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchHit{}, nil
	}

	value, err := s.Cache.GetOrSet(ctx, searchKey(courseID, strings.ToLower(query)), cache.KindSearch, []string{courseTag(courseID)}, func() (interface{}, error) {
		candidates, err := s.SectionRepo.SearchCandidates(courseID, query)
		if err != nil {
			return nil, err
		}
		repository.SortByPath(candidates)

		needle := strings.ToLower(query)
		hits := []SearchHit{}
		for _, sec := range candidates {
			rank, snippet := s.rankSection(&sec, needle)
			if rank == 0 {
				continue
			}
			hits = append(hits, SearchHit{
				SectionID: sec.ID,
				Title:     sec.Title,
				Path:      sec.Path,
				Level:     sec.Level,
				Rank:      rank,
				Snippet:   snippet,
			})
		}
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].Rank > hits[j].Rank
		})
		return hits, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]SearchHit), nil
}

// rankSection 标题=3，主槽位=2，再生槽位=1，未命中=0
func (s *QueryService) rankSection(sec *model.Section, needle string) (int, string) {
	if strings.Contains(strings.ToLower(sec.Title), needle) {
		return 3, sec.Title
	}

	primary := sec.Content.PrimaryFormat
	if text := s.Converter.PlainText(sec.Content.Slot(primary).Text, primary); text != "" {
		if idx := strings.Index(strings.ToLower(text), needle); idx >= 0 {
			return 2, snippetAround(text, idx, len(needle))
		}
	}
	for _, other := range primary.Others() {
		if text := s.Converter.PlainText(sec.Content.Slot(other).Text, other); text != "" {
			if idx := strings.Index(strings.ToLower(text), needle); idx >= 0 {
				return 1, snippetAround(text, idx, len(needle))
			}
		}
	}
	return 0, ""
}

func snippetAround(text string, idx, matchLen int) string {
	const margin = 40
	start := idx - margin
	if start < 0 {
		start = 0
	}
	end := idx + matchLen + margin
	if end > len(text) {
		end = len(text)
	}
	snippet := strings.TrimSpace(text[start:end])
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(text) {
		snippet += "…"
	}
	return snippet
}

// CourseStatistics 课程聚合统计
type CourseStatistics struct {
	TotalSections      int            `json:"totalSections"`
	TotalWords         int            `json:"totalWords"`
	ReadMinutes        int            `json:"readMinutes"`
	SectionsWithText   int            `json:"sectionsWithText"`
	MaxDepth           int            `json:"maxDepth"`
	FormatDistribution map[string]int `json:"formatDistribution"`
	LevelDistribution  map[int]int    `json:"levelDistribution"`
}

// GetStatistics 扫描章节得出字数、阅读时长与格式/层级分布
func (s *QueryService) GetStatistics(ctx context.Context, actor Actor, courseID uint) (*CourseStatistics, error) {
	if _, err := s.visibleCourse(actor, courseID); err != nil {
		return nil, err
	}

	value, err := s.Cache.GetOrSet(ctx, statsKey(courseID), cache.KindStats, []string{courseTag(courseID)}, func() (interface{}, error) {
		sections, err := s.SectionRepo.FindByCourse(courseID)
		if err != nil {
			return nil, err
		}

		stats := &CourseStatistics{
			TotalSections:      len(sections),
			FormatDistribution: map[string]int{},
			LevelDistribution:  map[int]int{},
		}
		for _, sec := range sections {
			stats.TotalWords += sec.WordCount
			stats.ReadMinutes += sec.ReadMinutes
			stats.LevelDistribution[sec.Level]++
			if sec.HasContent {
				stats.SectionsWithText++
				stats.FormatDistribution[string(sec.Content.PrimaryFormat)]++
			}
			if sec.Level+1 > stats.MaxDepth {
				stats.MaxDepth = sec.Level + 1
			}
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*CourseStatistics), nil
}

func (s *QueryService) visibleCourse(actor Actor, courseID uint) (*model.Course, error) {
	course, err := loadCourse(s.DB, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublic && course.OwnerID != actor.ID {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}
