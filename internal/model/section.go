package model

import "time"

// ContentSlot 单一格式的内容槽位
type ContentSlot struct {
	Text        string     `json:"text,omitempty"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
}

// ContentBlock 三个命名槽位承载同一内容的三种表示。
// PrimaryFormat 指向的槽位在 HasContent 时必须非空；
// 其余槽位在每次写入后尽力从主槽位再生。
type ContentBlock struct {
	Doc           ContentSlot   `json:"doc"`
	Render        ContentSlot   `json:"render"`
	Markup        ContentSlot   `json:"markup"`
	PrimaryFormat ContentFormat `json:"primaryFormat"`
}

func (b *ContentBlock) Slot(f ContentFormat) *ContentSlot {
	switch f {
	case FormatDoc:
		return &b.Doc
	case FormatRender:
		return &b.Render
	case FormatMarkup:
		return &b.Markup
	}
	return nil
}

// Primary 返回主槽位文本
func (b *ContentBlock) Primary() string {
	if s := b.Slot(b.PrimaryFormat); s != nil {
		return s.Text
	}
	return ""
}

type SectionSettings struct {
	ShowInTOC bool `json:"showInTOC"`
	Expanded  bool `json:"expanded"`
}

// swagger:model Section
type Section struct {
	BaseModel

	CourseID uint  `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	ParentID *uint `gorm:"index;type:bigint unsigned" json:"parentId,omitempty"`

	Title string `gorm:"size:255;not null" json:"title"`
	Slug  string `gorm:"size:255;index" json:"slug"`

	// 物化路径，如 "0.2.1"；Level 与路径段数保持一致（根为0）
	Path  string `gorm:"size:512;index" json:"path"`
	Level int    `gorm:"default:0" json:"level"`
	Order int    `gorm:"column:sort_order;default:0" json:"order"`

	ChildIDs    []uint `gorm:"type:json;serializer:json" json:"childIds"`
	HasContent  bool   `gorm:"default:false" json:"hasContent"`
	HasChildren bool   `gorm:"default:false" json:"hasChildren"`

	Content     ContentBlock    `gorm:"type:json;serializer:json" json:"content"`
	WordCount   int             `gorm:"default:0" json:"wordCount"`
	ReadMinutes int             `gorm:"default:0" json:"readMinutes"`
	Settings    SectionSettings `gorm:"type:json;serializer:json" json:"settings"`
}

func (Section) TableName() string {
	return "sections"
}

// TreePath 解析物化路径；路径为空或损坏时返回 nil
func (s *Section) TreePath() TreePath {
	p, err := ParseTreePath(s.Path)
	if err != nil {
		return nil
	}
	return p
}

func DefaultSectionSettings() SectionSettings {
	return SectionSettings{ShowInTOC: true, Expanded: false}
}
