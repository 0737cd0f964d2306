package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/util"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// DocNode 三种格式互转的中间表示：编辑器文档状态的块级树。
// doc 槽位存的就是这棵树的JSON。
type DocNode struct {
	Type     string `json:"type"` // doc/heading/paragraph/code/list/listItem/quote/text
	Level    int    `json:"level,omitempty"`
	Ordered  bool   `json:"ordered,omitempty"`
	Language string `json:"language,omitempty"`

	Text   string `json:"text,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Code   bool   `json:"code,omitempty"`

	Children []*DocNode `json:"children,omitempty"`
}

// ConverterService 无状态格式转换器。任何一种格式先归一到 DocNode
// 树再输出目标格式，保证 markup→render→markup 语义不丢失
// （空白归一化除外）。
type ConverterService struct{}

func NewConverterService() *ConverterService {
	return &ConverterService{}
}

// Convert 在三种内容表示之间转换
func (s *ConverterService) Convert(content string, from, to model.ContentFormat) (string, error) {
	if !from.Valid() || !to.Valid() {
		return "", fmt.Errorf("%w: %s -> %s", util.ErrInvalidFormat, from, to)
	}
	if from == to {
		return content, nil
	}
	doc, err := s.parse(content, from)
	if err != nil {
		return "", err
	}
	return s.render(doc, to)
}

// PlainText 任一格式的纯文本投影，供字数统计与搜索排名使用
func (s *ConverterService) PlainText(content string, format model.ContentFormat) string {
	doc, err := s.parse(content, format)
	if err != nil {
		return content
	}
	var b strings.Builder
	collectText(doc, &b)
	return strings.TrimSpace(b.String())
}

// WordCount 按空白分词计数
func (s *ConverterService) WordCount(content string, format model.ContentFormat) int {
	return len(strings.Fields(s.PlainText(content, format)))
}

// ReadMinutes 以每分钟200词估算阅读时长，向上取整
func (s *ConverterService) ReadMinutes(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + 199) / 200
}

func (s *ConverterService) parse(content string, format model.ContentFormat) (*DocNode, error) {
	switch format {
	case model.FormatDoc:
		var doc DocNode
		if err := json.Unmarshal([]byte(content), &doc); err != nil {
			return nil, fmt.Errorf("parse doc state: %w", err)
		}
		return &doc, nil
	case model.FormatMarkup:
		return parseMarkdown(content), nil
	case model.FormatRender:
		return parseHTML(content)
	}
	return nil, fmt.Errorf("%w: %s", util.ErrInvalidFormat, format)
}

func (s *ConverterService) render(doc *DocNode, format model.ContentFormat) (string, error) {
	switch format {
	case model.FormatDoc:
		out, err := json.Marshal(doc)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case model.FormatMarkup:
		return renderMarkdown(doc), nil
	case model.FormatRender:
		return renderHTML(doc), nil
	}
	return "", fmt.Errorf("%w: %s", util.ErrInvalidFormat, format)
}

func collectText(n *DocNode, b *strings.Builder) {
	if n.Type == "text" {
		b.WriteString(n.Text)
		return
	}
	for i, c := range n.Children {
		if i > 0 && c.Type != "text" {
			b.WriteByte('\n')
		}
		collectText(c, b)
	}
	if n.Type != "doc" && n.Type != "text" {
		b.WriteByte('\n')
	}
}

// ---------- Markdown ----------

func parseMarkdown(src string) *DocNode {
	doc := &DocNode{Type: "doc"}
	lines := strings.Split(src, "\n")

	var para []string
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		text := strings.Join(para, " ")
		doc.Children = append(doc.Children, &DocNode{
			Type:     "paragraph",
			Children: parseInline(text),
		})
		para = nil
	}

	var list *DocNode
	flushList := func() {
		if list != nil {
			doc.Children = append(doc.Children, list)
			list = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "```"):
			flushPara()
			flushList()
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			var code []string
			for i++; i < len(lines); i++ {
				if strings.TrimSpace(lines[i]) == "```" {
					break
				}
				code = append(code, lines[i])
			}
			doc.Children = append(doc.Children, &DocNode{
				Type:     "code",
				Language: lang,
				Text:     strings.Join(code, "\n"),
			})

		case headingLevel(trimmed) > 0:
			flushPara()
			flushList()
			level := headingLevel(trimmed)
			doc.Children = append(doc.Children, &DocNode{
				Type:     "heading",
				Level:    level,
				Children: parseInline(strings.TrimSpace(trimmed[level+1:])),
			})

		case strings.HasPrefix(trimmed, "> "):
			flushPara()
			flushList()
			var quote []string
			for ; i < len(lines); i++ {
				t := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(t, "> ") {
					i--
					break
				}
				quote = append(quote, strings.TrimPrefix(t, "> "))
			}
			doc.Children = append(doc.Children, &DocNode{
				Type: "quote",
				Children: []*DocNode{{
					Type:     "paragraph",
					Children: parseInline(strings.Join(quote, " ")),
				}},
			})

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushPara()
			if list == nil || list.Ordered {
				flushList()
				list = &DocNode{Type: "list"}
			}
			list.Children = append(list.Children, &DocNode{
				Type:     "listItem",
				Children: parseInline(trimmed[2:]),
			})

		case orderedItem(trimmed) != "":
			flushPara()
			if list == nil || !list.Ordered {
				flushList()
				list = &DocNode{Type: "list", Ordered: true}
			}
			list.Children = append(list.Children, &DocNode{
				Type:     "listItem",
				Children: parseInline(orderedItem(trimmed)),
			})

		case trimmed == "":
			flushPara()
			flushList()

		default:
			flushList()
			para = append(para, trimmed)
		}
	}
	flushPara()
	flushList()
	return doc
}

func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0
	}
	return level
}

func orderedItem(line string) string {
	dot := strings.Index(line, ". ")
	if dot <= 0 {
		return ""
	}
	if _, err := strconv.Atoi(line[:dot]); err != nil {
		return ""
	}
	return line[dot+2:]
}

// parseInline 处理 **bold**、*italic*、`code` 三种行内标记
func parseInline(text string) []*DocNode {
	var nodes []*DocNode
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			nodes = append(nodes, &DocNode{Type: "text", Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(text); {
		switch {
		case strings.HasPrefix(text[i:], "**"):
			if end := strings.Index(text[i+2:], "**"); end >= 0 {
				flush()
				nodes = append(nodes, &DocNode{Type: "text", Text: text[i+2 : i+2+end], Bold: true})
				i += end + 4
				continue
			}
			plain.WriteByte(text[i])
			i++
		case text[i] == '*':
			if end := strings.IndexByte(text[i+1:], '*'); end >= 0 {
				flush()
				nodes = append(nodes, &DocNode{Type: "text", Text: text[i+1 : i+1+end], Italic: true})
				i += end + 2
				continue
			}
			plain.WriteByte(text[i])
			i++
		case text[i] == '`':
			if end := strings.IndexByte(text[i+1:], '`'); end >= 0 {
				flush()
				nodes = append(nodes, &DocNode{Type: "text", Text: text[i+1 : i+1+end], Code: true})
				i += end + 2
				continue
			}
			plain.WriteByte(text[i])
			i++
		default:
			plain.WriteByte(text[i])
			i++
		}
	}
	flush()
	return nodes
}

func renderMarkdown(doc *DocNode) string {
	var blocks []string
	for _, n := range doc.Children {
		switch n.Type {
		case "heading":
			blocks = append(blocks, strings.Repeat("#", n.Level)+" "+inlineMarkdown(n.Children))
		case "paragraph":
			blocks = append(blocks, inlineMarkdown(n.Children))
		case "code":
			blocks = append(blocks, "```"+n.Language+"\n"+n.Text+"\n```")
		case "quote":
			var lines []string
			for _, c := range n.Children {
				lines = append(lines, "> "+inlineMarkdown(c.Children))
			}
			blocks = append(blocks, strings.Join(lines, "\n"))
		case "list":
			var lines []string
			for i, item := range n.Children {
				if n.Ordered {
					lines = append(lines, strconv.Itoa(i+1)+". "+inlineMarkdown(item.Children))
				} else {
					lines = append(lines, "- "+inlineMarkdown(item.Children))
				}
			}
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func inlineMarkdown(nodes []*DocNode) string {
	var b strings.Builder
	for _, n := range nodes {
		switch {
		case n.Code:
			b.WriteString("`" + n.Text + "`")
		case n.Bold:
			b.WriteString("**" + n.Text + "**")
		case n.Italic:
			b.WriteString("*" + n.Text + "*")
		default:
			b.WriteString(n.Text)
		}
	}
	return b.String()
}

// ---------- HTML ----------

func renderHTML(doc *DocNode) string {
	var b strings.Builder
	for _, n := range doc.Children {
		switch n.Type {
		case "heading":
			tag := "h" + strconv.Itoa(n.Level)
			b.WriteString("<" + tag + ">" + inlineHTML(n.Children) + "</" + tag + ">\n")
		case "paragraph":
			b.WriteString("<p>" + inlineHTML(n.Children) + "</p>\n")
		case "code":
			cls := ""
			if n.Language != "" {
				cls = ` class="language-` + n.Language + `"`
			}
			b.WriteString("<pre><code" + cls + ">" + html.EscapeString(n.Text) + "</code></pre>\n")
		case "quote":
			b.WriteString("<blockquote>")
			for _, c := range n.Children {
				b.WriteString("<p>" + inlineHTML(c.Children) + "</p>")
			}
			b.WriteString("</blockquote>\n")
		case "list":
			tag := "ul"
			if n.Ordered {
				tag = "ol"
			}
			b.WriteString("<" + tag + ">")
			for _, item := range n.Children {
				b.WriteString("<li>" + inlineHTML(item.Children) + "</li>")
			}
			b.WriteString("</" + tag + ">\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func inlineHTML(nodes []*DocNode) string {
	var b strings.Builder
	for _, n := range nodes {
		text := html.EscapeString(n.Text)
		switch {
		case n.Code:
			b.WriteString("<code>" + text + "</code>")
		case n.Bold:
			b.WriteString("<strong>" + text + "</strong>")
		case n.Italic:
			b.WriteString("<em>" + text + "</em>")
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

func parseHTML(src string) (*DocNode, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := &DocNode{Type: "doc"}
	walkHTML(root, doc)
	return doc, nil
}

func walkHTML(n *html.Node, doc *DocNode) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level, _ := strconv.Atoi(n.Data[1:])
			doc.Children = append(doc.Children, &DocNode{
				Type:     "heading",
				Level:    level,
				Children: inlineFromHTML(n),
			})
			return
		case "p":
			doc.Children = append(doc.Children, &DocNode{
				Type:     "paragraph",
				Children: inlineFromHTML(n),
			})
			return
		case "pre":
			doc.Children = append(doc.Children, codeFromHTML(n))
			return
		case "blockquote":
			quote := &DocNode{Type: "quote"}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "p" {
					quote.Children = append(quote.Children, &DocNode{
						Type:     "paragraph",
						Children: inlineFromHTML(c),
					})
				}
			}
			if len(quote.Children) == 0 {
				quote.Children = append(quote.Children, &DocNode{
					Type:     "paragraph",
					Children: inlineFromHTML(n),
				})
			}
			doc.Children = append(doc.Children, quote)
			return
		case "ul", "ol":
			list := &DocNode{Type: "list", Ordered: n.Data == "ol"}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "li" {
					list.Children = append(list.Children, &DocNode{
						Type:     "listItem",
						Children: inlineFromHTML(c),
					})
				}
			}
			doc.Children = append(doc.Children, list)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, doc)
	}
}

func codeFromHTML(pre *html.Node) *DocNode {
	node := &DocNode{Type: "code"}
	code := pre.FirstChild
	if code != nil && code.Type == html.ElementNode && code.Data == "code" {
		for _, attr := range code.Attr {
			if attr.Key == "class" && strings.HasPrefix(attr.Val, "language-") {
				node.Language = strings.TrimPrefix(attr.Val, "language-")
			}
		}
		node.Text = strings.TrimRight(textContent(code), "\n")
	} else {
		node.Text = strings.TrimRight(textContent(pre), "\n")
	}
	return node
}

func inlineFromHTML(n *html.Node) []*DocNode {
	var nodes []*DocNode
	var walk func(c *html.Node, bold, italic, code bool)
	walk = func(c *html.Node, bold, italic, code bool) {
		for ; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				text := strings.ReplaceAll(c.Data, "\n", " ")
				if strings.TrimSpace(text) == "" {
					continue
				}
				nodes = append(nodes, &DocNode{Type: "text", Text: text, Bold: bold, Italic: italic, Code: code})
			case c.Type == html.ElementNode:
				switch c.Data {
				case "strong", "b":
					walk(c.FirstChild, true, italic, code)
				case "em", "i":
					walk(c.FirstChild, bold, true, code)
				case "code":
					walk(c.FirstChild, bold, italic, true)
				default:
					walk(c.FirstChild, bold, italic, code)
				}
			}
		}
	}
	walk(n.FirstChild, false, false, false)
	return nodes
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	return b.String()
}
