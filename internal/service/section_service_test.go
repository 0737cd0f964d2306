package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSectionAssignsPaths(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Go Basics")

	intro := env.mustCreateSection(t, course.ID, nil, "Intro", "")
	details := env.mustCreateSection(t, course.ID, &intro.ID, "Details", "")
	second := env.mustCreateSection(t, course.ID, nil, "Second", "")

	assert.Equal(t, "0", intro.Path)
	assert.Equal(t, 0, intro.Level)
	assert.Equal(t, "0.0", details.Path)
	assert.Equal(t, 1, details.Level)
	assert.Equal(t, "1", second.Path)

	intro = env.reload(t, intro.ID)
	assert.Equal(t, []uint{details.ID}, intro.ChildIDs)
	assert.True(t, intro.HasChildren)

	fresh, err := loadCourse(env.db, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{intro.ID, second.ID}, fresh.SectionIDs)
	assert.Equal(t, 3, fresh.Stats.TotalSections)
}

func TestCreateSectionDepthLimit(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Deep")

	// 上限3：允许的最深层级为3（根为0）
	l0 := env.mustCreateSection(t, course.ID, nil, "L0", "")
	l1 := env.mustCreateSection(t, course.ID, &l0.ID, "L1", "")
	l2 := env.mustCreateSection(t, course.ID, &l1.ID, "L2", "")
	l3 := env.mustCreateSection(t, course.ID, &l2.ID, "L3", "")
	assert.Equal(t, 3, l3.Level)

	_, err := env.sections.CreateSection(env.owner, SectionCreateRequest{
		CourseID: course.ID,
		ParentID: &l3.ID,
		Title:    "L4",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrNestingDepthExceeded)
}

func TestCreateSectionRejectsNonOwner(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Private")

	_, err := env.sections.CreateSection(env.other, SectionCreateRequest{
		CourseID: course.ID,
		Title:    "Nope",
	})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestSectionSlugCollision(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Slugs")

	a := env.mustCreateSection(t, course.ID, nil, "Getting Started", "")
	b := env.mustCreateSection(t, course.ID, nil, "Getting Started", "")
	c := env.mustCreateSection(t, course.ID, nil, "Getting Started", "")

	assert.Equal(t, "getting-started", a.Slug)
	assert.Equal(t, "getting-started-2", b.Slug)
	assert.Equal(t, "getting-started-3", c.Slug)
}

func TestMoveSectionReindexesDescendants(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Move")

	a := env.mustCreateSection(t, course.ID, nil, "A", "")
	x := env.mustCreateSection(t, course.ID, &a.ID, "X", "")
	g := env.mustCreateSection(t, course.ID, &x.ID, "G", "")
	b := env.mustCreateSection(t, course.ID, nil, "B", "")

	require.Equal(t, "0.0", x.Path)
	require.Equal(t, "0.0.0", g.Path)

	require.NoError(t, env.sections.MoveSection(env.owner, x.ID, &b.ID, 0))

	x = env.reload(t, x.ID)
	g = env.reload(t, g.ID)
	assert.Equal(t, "1.0", x.Path)
	assert.Equal(t, 1, x.Level)
	assert.Equal(t, &b.ID, x.ParentID)
	assert.Equal(t, "1.0.0", g.Path)
	assert.Equal(t, 2, g.Level)

	a = env.reload(t, a.ID)
	assert.Empty(t, a.ChildIDs)
	assert.False(t, a.HasChildren)
}

func TestMoveSectionToRoot(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Promote")

	a := env.mustCreateSection(t, course.ID, nil, "A", "")
	x := env.mustCreateSection(t, course.ID, &a.ID, "X", "")

	require.NoError(t, env.sections.MoveSection(env.owner, x.ID, nil, 0))

	x = env.reload(t, x.ID)
	assert.Nil(t, x.ParentID)
	assert.Equal(t, "0", x.Path)
	assert.Equal(t, 0, x.Level)

	fresh, err := loadCourse(env.db, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{x.ID, a.ID}, fresh.SectionIDs)
	assert.Equal(t, "1", env.reload(t, a.ID).Path)
}

func TestMoveSectionIntoOwnSubtreeFails(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Cycle")

	a := env.mustCreateSection(t, course.ID, nil, "A", "")
	x := env.mustCreateSection(t, course.ID, &a.ID, "X", "")

	assert.ErrorIs(t, env.sections.MoveSection(env.owner, a.ID, &x.ID, 0), util.ErrSelfParent)
	assert.ErrorIs(t, env.sections.MoveSection(env.owner, a.ID, &a.ID, 0), util.ErrSelfParent)
}

func TestMoveSectionDepthLimitCountsSubtree(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "MoveDeep")

	// 链 a(0)→b(1)→c(2)，整体挂到 d(0)→e(1) 的 e 下会让 c 到达层级4
	a := env.mustCreateSection(t, course.ID, nil, "A", "")
	b := env.mustCreateSection(t, course.ID, &a.ID, "B", "")
	env.mustCreateSection(t, course.ID, &b.ID, "C", "")
	d := env.mustCreateSection(t, course.ID, nil, "D", "")
	e := env.mustCreateSection(t, course.ID, &d.ID, "E", "")

	err := env.sections.MoveSection(env.owner, a.ID, &e.ID, 0)
	assert.ErrorIs(t, err, util.ErrNestingDepthExceeded)

	// 挂到 d 下则子树最深为3，允许
	require.NoError(t, env.sections.MoveSection(env.owner, a.ID, &d.ID, 0))
}

func TestReorderSections(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Reorder")

	a := env.mustCreateSection(t, course.ID, nil, "A", "")
	b := env.mustCreateSection(t, course.ID, nil, "B", "")
	c := env.mustCreateSection(t, course.ID, nil, "C", "")

	require.NoError(t, env.sections.ReorderSections(env.owner, course.ID, nil, []uint{c.ID, a.ID, b.ID}))

	assert.Equal(t, "0", env.reload(t, c.ID).Path)
	assert.Equal(t, "1", env.reload(t, a.ID).Path)
	assert.Equal(t, "2", env.reload(t, b.ID).Path)

	// 非全排列拒绝
	err := env.sections.ReorderSections(env.owner, course.ID, nil, []uint{a.ID, b.ID})
	assert.Error(t, err)
	err = env.sections.ReorderSections(env.owner, course.ID, nil, []uint{a.ID, a.ID, b.ID})
	assert.Error(t, err)
}

func TestDeleteSectionCascades(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Delete")

	root := env.mustCreateSection(t, course.ID, nil, "Root", "some words here")
	c1 := env.mustCreateSection(t, course.ID, &root.ID, "C1", "more text")
	env.mustCreateSection(t, course.ID, &root.ID, "C2", "")
	env.mustCreateSection(t, course.ID, &c1.ID, "G", "")
	keeper := env.mustCreateSection(t, course.ID, nil, "Keeper", "")

	// 给 c1 制造一条版本记录
	_, err := env.content.UpdateContent(env.owner, c1.ID, ContentUpdateRequest{Content: "changed", Format: "markup"})
	require.NoError(t, err)

	require.NoError(t, env.sections.DeleteSection(env.owner, root.ID))

	var sectionCount int64
	env.db.Model(&model.Section{}).Where("course_id = ?", course.ID).Count(&sectionCount)
	assert.Equal(t, int64(1), sectionCount)

	var versionCount int64
	env.db.Model(&model.SectionVersion{}).Where("section_id = ?", c1.ID).Count(&versionCount)
	assert.Equal(t, int64(0), versionCount)

	fresh, err := loadCourse(env.db, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{keeper.ID}, fresh.SectionIDs)
	assert.Equal(t, "0", env.reload(t, keeper.ID).Path)
	assert.Equal(t, 1, fresh.Stats.TotalSections)
}

func TestDuplicateSectionWithChildren(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Dup")

	root := env.mustCreateSection(t, course.ID, nil, "Chapter", "original body")
	child := env.mustCreateSection(t, course.ID, &root.ID, "Child", "child body")
	env.mustCreateSection(t, course.ID, &child.ID, "Grand", "")

	copy, err := env.sections.DuplicateSection(env.owner, root.ID, true)
	require.NoError(t, err)

	assert.NotEqual(t, root.ID, copy.ID)
	assert.Equal(t, "1", copy.Path, "副本追加为最后一个根兄弟")
	assert.Equal(t, root.Content.Primary(), copy.Content.Primary())
	assert.Equal(t, "chapter-2", copy.Slug)

	require.Len(t, copy.ChildIDs, 1)
	copyChild := env.reload(t, copy.ChildIDs[0])
	assert.NotEqual(t, child.ID, copyChild.ID)
	assert.Equal(t, &copy.ID, copyChild.ParentID)
	assert.Equal(t, "1.0", copyChild.Path)
	require.Len(t, copyChild.ChildIDs, 1)
	assert.Equal(t, "1.0.0", env.reload(t, copyChild.ChildIDs[0]).Path)

	// 原树不受影响
	assert.Equal(t, "0", env.reload(t, root.ID).Path)
	assert.Equal(t, "0.0", env.reload(t, child.ID).Path)
}

func TestDuplicateSectionWithoutChildren(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "DupShallow")

	root := env.mustCreateSection(t, course.ID, nil, "Chapter", "body")
	env.mustCreateSection(t, course.ID, &root.ID, "Child", "")

	copy, err := env.sections.DuplicateSection(env.owner, root.ID, false)
	require.NoError(t, err)
	assert.Empty(t, copy.ChildIDs)
	assert.False(t, copy.HasChildren)

	var count int64
	env.db.Model(&model.Section{}).Where("course_id = ?", course.ID).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestSplitSection(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Split")

	markup := "first line\n\nsecond line\n\nthird line"
	root := env.mustCreateSection(t, course.ID, nil, "Long", markup)
	child := env.mustCreateSection(t, course.ID, &root.ID, "Attached", "")
	after := env.mustCreateSection(t, course.ID, nil, "After", "")

	// 行号1起：第2行起进入第二段
	parts, err := env.sections.SplitSection(env.owner, root.ID, []int{2})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, root.ID, parts[0].ID)
	assert.Equal(t, "first line", parts[0].Content.Primary())
	assert.Equal(t, "Long (2)", parts[1].Title)
	assert.Equal(t, "second line\n\nthird line", parts[1].Content.Primary())

	// 新章节紧随原章节之后，后续兄弟顺延
	assert.Equal(t, "0", parts[0].Path)
	assert.Equal(t, "1", parts[1].Path)
	assert.Equal(t, "2", env.reload(t, after.ID).Path)

	// 原章节的孩子整体挂到最后一段
	moved := env.reload(t, child.ID)
	assert.Equal(t, parts[1].ID, *moved.ParentID)
	assert.Empty(t, parts[0].ChildIDs)

	// 拆分前留档
	versions, err := env.versions.ListVersions(root.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, markup, versions[0].Content)
	assert.Equal(t, "before split", versions[0].ChangeNote)
}

func TestSplitSectionRejectsBadPoints(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "SplitBad")
	root := env.mustCreateSection(t, course.ID, nil, "Short", "one\ntwo")

	for _, points := range [][]int{{}, {0}, {2}, {5}, {1, 1}} {
		_, err := env.sections.SplitSection(env.owner, root.ID, points)
		assert.Error(t, err, "points %v", points)
	}
}

func TestMergeSections(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Merge")

	target := env.mustCreateSection(t, course.ID, nil, "Target", "target body")
	tChild := env.mustCreateSection(t, course.ID, &target.ID, "TChild", "")
	source := env.mustCreateSection(t, course.ID, nil, "Source", "source body")
	sChild := env.mustCreateSection(t, course.ID, &source.ID, "SChild", "")

	merged, err := env.sections.MergeSections(env.owner, source.ID, target.ID)
	require.NoError(t, err)

	assert.Equal(t, "target body\n\nsource body", merged.Content.Primary())
	assert.Equal(t, []uint{tChild.ID, sChild.ID}, merged.ChildIDs)
	assert.Equal(t, target.ID, *env.reload(t, sChild.ID).ParentID)
	assert.Equal(t, "0.1", env.reload(t, sChild.ID).Path)

	_, err = loadSection(env.db, source.ID)
	assert.ErrorIs(t, err, util.ErrSectionNotFound)

	// 合并前目标留档
	versions, err := env.versions.ListVersions(target.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "target body", versions[0].Content)
}

func TestMergeSectionsSourceBeforeTarget(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "MergeForward")

	// source 排在 target 之前：摘除 source 后 target 的路径会前移
	source := env.mustCreateSection(t, course.ID, nil, "Source", "source body")
	sChild := env.mustCreateSection(t, course.ID, &source.ID, "SChild", "")
	target := env.mustCreateSection(t, course.ID, nil, "Target", "target body")
	tChild := env.mustCreateSection(t, course.ID, &target.ID, "TChild", "")

	merged, err := env.sections.MergeSections(env.owner, source.ID, target.ID)
	require.NoError(t, err)

	assert.Equal(t, "target body\n\nsource body", merged.Content.Primary())
	assert.Equal(t, "0", merged.Path)
	assert.Equal(t, 0, merged.Order)

	// 孩子路径必须延续 target 的新路径，而不是合并前的旧路径
	first := env.reload(t, tChild.ID)
	second := env.reload(t, sChild.ID)
	assert.Equal(t, "0.0", first.Path)
	assert.Equal(t, 1, first.Level)
	assert.Equal(t, "0.1", second.Path)
	assert.Equal(t, 1, second.Level)
	assert.Equal(t, target.ID, *second.ParentID)

	fresh, err := loadCourse(env.db, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{target.ID}, fresh.SectionIDs)
}

func TestMergeSectionsDepthLimit(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "MergeDeep")

	// source 带两层子树，整体改挂后底部层级随 target 深度增长
	source := env.mustCreateSection(t, course.ID, nil, "Source", "s")
	child := env.mustCreateSection(t, course.ID, &source.ID, "Child", "")
	grand := env.mustCreateSection(t, course.ID, &child.ID, "Grand", "")

	top := env.mustCreateSection(t, course.ID, nil, "Top", "t")
	mid := env.mustCreateSection(t, course.ID, &top.ID, "Mid", "m")
	deep := env.mustCreateSection(t, course.ID, &mid.ID, "Deep", "d")

	// 并入二层节点：底部到达4层，超出上限3
	_, err := env.sections.MergeSections(env.owner, source.ID, deep.ID)
	assert.ErrorIs(t, err, util.ErrNestingDepthExceeded)
	_, err = loadSection(env.db, source.ID)
	require.NoError(t, err, "超限的合并不得留下半成品")

	// 并入一层节点：底部恰好3层，允许
	merged, err := env.sections.MergeSections(env.owner, source.ID, mid.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{deep.ID, child.ID}, merged.ChildIDs)
	assert.Equal(t, 2, env.reload(t, child.ID).Level)
	assert.Equal(t, 3, env.reload(t, grand.ID).Level)
}

func TestMergeSectionGuards(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "MergeGuards")

	parent := env.mustCreateSection(t, course.ID, nil, "Parent", "p")
	child := env.mustCreateSection(t, course.ID, &parent.ID, "Child", "c")

	_, err := env.sections.MergeSections(env.owner, parent.ID, parent.ID)
	assert.Error(t, err)

	// 祖先/后代之间不允许合并
	_, err = env.sections.MergeSections(env.owner, parent.ID, child.ID)
	assert.ErrorIs(t, err, util.ErrSelfParent)
	_, err = env.sections.MergeSections(env.owner, child.ID, parent.ID)
	assert.ErrorIs(t, err, util.ErrSelfParent)
}
