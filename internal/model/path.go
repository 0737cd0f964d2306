package model

import (
	"fmt"
	"strconv"
	"strings"
)

// TreePath 章节的物化路径：从根到该节点的兄弟序号序列。
// 内部以整型切片运算，只在存取数据库时序列化为"0.2.1"形式的字符串，
// 按段数值排序即为文档的阅读顺序。
type TreePath []int

func ParseTreePath(s string) (TreePath, error) {
	if s == "" {
		return nil, fmt.Errorf("empty tree path")
	}
	parts := strings.Split(s, ".")
	p := make(TreePath, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid tree path segment %q in %q", part, s)
		}
		p[i] = n
	}
	return p, nil
}

func (p TreePath) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Child 返回在该路径下序号为 order 的子路径
func (p TreePath) Child(order int) TreePath {
	child := make(TreePath, len(p), len(p)+1)
	copy(child, p)
	return append(child, order)
}

// Parent 返回父路径；根路径返回 nil
func (p TreePath) Parent() TreePath {
	if len(p) <= 1 {
		return nil
	}
	parent := make(TreePath, len(p)-1)
	copy(parent, p[:len(p)-1])
	return parent
}

// Level 路径对应的层级，根为 0
func (p TreePath) Level() int {
	return len(p) - 1
}

// HasPrefix 判断 prefix 是否为 p 的祖先路径（严格前缀）
func (p TreePath) HasPrefix(prefix TreePath) bool {
	if len(prefix) >= len(p) {
		return false
	}
	for i, n := range prefix {
		if p[i] != n {
			return false
		}
	}
	return true
}

// Rebase 把前缀 from 替换为 to，用于子树整体搬移后重算后代路径
func (p TreePath) Rebase(from, to TreePath) TreePath {
	out := make(TreePath, 0, len(to)+len(p)-len(from))
	out = append(out, to...)
	out = append(out, p[len(from):]...)
	return out
}

// Compare 按段数值比较，返回 -1/0/1。排序结果即先序遍历顺序。
func (p TreePath) Compare(other TreePath) int {
	for i := 0; i < len(p) && i < len(other); i++ {
		if p[i] != other[i] {
			if p[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p) < len(other):
		return -1
	case len(p) > len(other):
		return 1
	}
	return 0
}
