package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/util"
	"ai_study_backend/pkg/logger"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExportService 把整个课程拼装为单个markdown文档并上传到存储，
// 返回可下载的URL。
type ExportService struct {
	CourseRepo  *repository.CourseRepository
	SectionRepo *repository.SectionRepository
	Converter   *ConverterService
	Storage     *StorageService
	DB          *gorm.DB
}

func NewExportService(
	courseRepo *repository.CourseRepository,
	sectionRepo *repository.SectionRepository,
	converter *ConverterService,
	storage *StorageService,
	db *gorm.DB,
) *ExportService {
	return &ExportService{
		CourseRepo:  courseRepo,
		SectionRepo: sectionRepo,
		Converter:   converter,
		Storage:     storage,
		DB:          db,
	}
}

type ExportResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Bytes    int    `json:"bytes"`
}

// ExportCourse 按树序把所有章节拼为一个markdown文档。
// 章节标题按层级降为markdown标题，内容统一取markup表示，
// 某个章节转换失败时跳过其内容但保留标题。
func (s *ExportService) ExportCourse(ctx context.Context, actor Actor, courseID uint) (*ExportResult, error) {
	course, err := loadCourse(s.DB, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublic && course.OwnerID != actor.ID {
		return nil, util.ErrPermissionDenied
	}

	sections, err := s.SectionRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("# " + course.Title + "\n")
	if course.Topic != "" {
		b.WriteString("\n> " + course.Topic + "\n")
	}

	for _, sec := range sections {
		b.WriteString("\n" + headingMarker(sec.Level) + " " + sec.Title + "\n")
		if !sec.HasContent {
			continue
		}
		markup, err := s.sectionMarkup(&sec)
		if err != nil {
			logger.Log.Warn("export: section skipped",
				zap.Uint("sectionId", sec.ID),
				zap.Error(err))
			continue
		}
		if markup != "" {
			b.WriteString("\n" + markup + "\n")
		}
	}

	doc := b.String()
	filename := fmt.Sprintf("exports/%s-%s.md", course.Slug, uuid.New().String()[:8])
	url, err := s.Storage.Upload(ctx, filename, strings.NewReader(doc), int64(len(doc)), "text/markdown")
	if err != nil {
		return nil, err
	}

	logger.Log.Info("course exported",
		zap.Uint("courseId", courseID),
		zap.String("filename", filename),
		zap.Int("bytes", len(doc)),
		zap.Time("at", time.Now()))

	return &ExportResult{URL: url, Filename: filename, Bytes: len(doc)}, nil
}

func (s *ExportService) sectionMarkup(sec *model.Section) (string, error) {
	if slot := sec.Content.Slot(model.FormatMarkup); slot != nil && slot.Text != "" {
		return slot.Text, nil
	}
	return s.Converter.Convert(sec.Content.Primary(), sec.Content.PrimaryFormat, model.FormatMarkup)
}

// headingMarker 章节层级映射到markdown标题级别，根为##，最深######
func headingMarker(level int) string {
	n := level + 2
	if n > 6 {
		n = 6
	}
	return strings.Repeat("#", n)
}
