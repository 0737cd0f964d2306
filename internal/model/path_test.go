package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTreePath(t *testing.T) {
	p, err := ParseTreePath("0.2.1")
	require.NoError(t, err)
	assert.Equal(t, TreePath{0, 2, 1}, p)
	assert.Equal(t, "0.2.1", p.String())

	_, err = ParseTreePath("")
	assert.Error(t, err)

	_, err = ParseTreePath("0.a.1")
	assert.Error(t, err)

	_, err = ParseTreePath("0.-1")
	assert.Error(t, err)
}

func TestTreePathChildParentLevel(t *testing.T) {
	root := TreePath{3}
	assert.Equal(t, 0, root.Level())
	assert.Nil(t, root.Parent())

	child := root.Child(0)
	assert.Equal(t, TreePath{3, 0}, child)
	assert.Equal(t, 1, child.Level())
	assert.Equal(t, root, child.Parent())

	// Child 不得共享底层数组，后续追加不能污染父路径
	a := child.Child(1)
	b := child.Child(2)
	assert.Equal(t, TreePath{3, 0, 1}, a)
	assert.Equal(t, TreePath{3, 0, 2}, b)
}

func TestTreePathHasPrefix(t *testing.T) {
	p := TreePath{0, 2, 1}
	assert.True(t, p.HasPrefix(TreePath{0}))
	assert.True(t, p.HasPrefix(TreePath{0, 2}))
	assert.False(t, p.HasPrefix(TreePath{0, 2, 1}), "自身不是祖先")
	assert.False(t, p.HasPrefix(TreePath{1}))
	assert.False(t, p.HasPrefix(TreePath{0, 2, 1, 0}))
}

func TestTreePathRebase(t *testing.T) {
	desc := TreePath{0, 2, 1, 4}
	moved := desc.Rebase(TreePath{0, 2}, TreePath{5})
	assert.Equal(t, TreePath{5, 1, 4}, moved)
}

// 序号到两位数后字符串排序会出错（"0.10" < "0.2"），必须按段数值比较
func TestTreePathCompareNumeric(t *testing.T) {
	two, _ := ParseTreePath("0.2")
	ten, _ := ParseTreePath("0.10")
	assert.Equal(t, -1, two.Compare(ten))
	assert.Equal(t, 1, ten.Compare(two))
	assert.Equal(t, 0, ten.Compare(TreePath{0, 10}))
}

func TestTreePathSortIsPreorder(t *testing.T) {
	raw := []string{"1", "0.10", "0", "0.2", "0.2.0", "0.2.1", "0.0"}
	paths := make([]TreePath, len(raw))
	for i, s := range raw {
		p, err := ParseTreePath(s)
		require.NoError(t, err)
		paths[i] = p
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Compare(paths[j]) < 0
	})

	got := make([]string, len(paths))
	for i, p := range paths {
		got[i] = p.String()
	}
	assert.Equal(t, []string{"0", "0.0", "0.2", "0.2.0", "0.2.1", "0.10", "1"}, got)
}

func TestSectionTreePath(t *testing.T) {
	sec := Section{Path: "0.3"}
	assert.Equal(t, TreePath{0, 3}, sec.TreePath())

	broken := Section{Path: "not-a-path"}
	assert.Nil(t, broken.TreePath())
}
