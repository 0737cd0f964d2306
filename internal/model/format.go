package model

import "fmt"

// ContentFormat 章节内容的表示格式。三种格式承载同一份内容，
// primaryFormat 指向的槽位为权威来源，其余槽位由它再生。
type ContentFormat string

const (
	FormatDoc    ContentFormat = "doc"    // 富文本编辑器的结构化文档状态（JSON）
	FormatRender ContentFormat = "render" // 渲染用HTML
	FormatMarkup ContentFormat = "markup" // Markdown源码
)

func (f ContentFormat) Valid() bool {
	switch f {
	case FormatDoc, FormatRender, FormatMarkup:
		return true
	}
	return false
}

// Others 返回除自身外的另外两种格式（用于次要槽位再生）
func (f ContentFormat) Others() []ContentFormat {
	all := []ContentFormat{FormatDoc, FormatRender, FormatMarkup}
	out := make([]ContentFormat, 0, 2)
	for _, c := range all {
		if c != f {
			out = append(out, c)
		}
	}
	return out
}

func ParseContentFormat(s string) (ContentFormat, error) {
	f := ContentFormat(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown content format %q", s)
	}
	return f, nil
}
