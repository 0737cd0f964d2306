package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/util"
	"context"
	"errors"
	"io"
)

// 外部协作方的接口边界。生成与抽取的具体实现（LLM、文档解析等）
// 由调用方注入，本服务只消费它们的产出。

// GenerateRequest 一次内容生成请求
type GenerateRequest struct {
	CourseTopic  string
	SectionTitle string
	Format       model.ContentFormat
	Hint         string
}

// ContentGenerator 为指定章节产出一段指定格式的内容
type ContentGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ExtractedSection 抽取器产出的一个章节：相对层级加markdown正文
type ExtractedSection struct {
	Title  string
	Level  int
	Markup string
}

// ContentExtractor 从上传的文档中抽取章节结构
type ContentExtractor interface {
	Extract(ctx context.Context, r io.Reader, contentType string) ([]ExtractedSection, error)
}

// ImportService 把抽取器的产出落成真实章节树
type ImportService struct {
	Sections *SectionService
}

func NewImportService(sections *SectionService) *ImportService {
	return &ImportService{Sections: sections}
}

// ImportExtracted 按抽取顺序逐个建章节。相对层级通过一个父节点栈
// 还原成树：层级加深则挂到上一个节点下，变浅则回退到对应祖先。
// 超过课程深度上限的层级被压平到上限。
func (s *ImportService) ImportExtracted(actor Actor, courseID uint, parentID *uint, extracted []ExtractedSection) ([]model.Section, error) {
	created := make([]model.Section, 0, len(extracted))

	type frame struct {
		level int
		id    uint
	}
	stack := []frame{}

	for _, item := range extracted {
		for len(stack) > 0 && stack[len(stack)-1].level >= item.Level {
			stack = stack[:len(stack)-1]
		}

		parent := parentID
		if len(stack) > 0 {
			id := stack[len(stack)-1].id
			parent = &id
		}

		section, err := s.Sections.CreateSection(actor, SectionCreateRequest{
			CourseID: courseID,
			ParentID: parent,
			Title:    item.Title,
			Content:  item.Markup,
			Format:   string(model.FormatMarkup),
		})
		for err != nil && errors.Is(err, util.ErrNestingDepthExceeded) && len(stack) > 0 {
			// 深度超限时压平：逐级回退到能容纳的祖先
			stack = stack[:len(stack)-1]
			parent = parentID
			if len(stack) > 0 {
				id := stack[len(stack)-1].id
				parent = &id
			}
			section, err = s.Sections.CreateSection(actor, SectionCreateRequest{
				CourseID: courseID,
				ParentID: parent,
				Title:    item.Title,
				Content:  item.Markup,
				Format:   string(model.FormatMarkup),
			})
		}
		if err != nil {
			return created, err
		}

		created = append(created, *section)
		stack = append(stack, frame{level: item.Level, id: section.ID})
	}
	return created, nil
}
