package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildQueryFixture(t *testing.T, env *testEnv) (*model.Course, *model.Section, *model.Section) {
	t.Helper()
	course := env.mustCreateCourse(t, "Query Course")
	intro := env.mustCreateSection(t, course.ID, nil, "Intro", "welcome to the course")
	details := env.mustCreateSection(t, course.ID, &intro.ID, "Details", "all the gritty internals")
	return course, intro, details
}

func TestGetCourseWithSections(t *testing.T) {
	env := newTestEnv(t)
	course, intro, details := buildQueryFixture(t, env)

	tree, err := env.query.GetCourseWithSections(context.Background(), env.owner, course.ID, CourseTreeOptions{IncludeContent: true})
	require.NoError(t, err)
	require.Len(t, tree.Sections, 2)
	// 树序：父在子前
	assert.Equal(t, intro.ID, tree.Sections[0].ID)
	assert.Equal(t, details.ID, tree.Sections[1].ID)
	assert.NotEmpty(t, tree.Sections[0].Content.Primary())

	// 深度截断 + 剥离内容
	shallow, err := env.query.GetCourseWithSections(context.Background(), env.owner, course.ID, CourseTreeOptions{MaxDepth: 1})
	require.NoError(t, err)
	require.Len(t, shallow.Sections, 1)
	assert.Equal(t, intro.ID, shallow.Sections[0].ID)
	assert.Empty(t, shallow.Sections[0].Content.Markup.Text)

	// 私有课程对他人不可见
	_, err = env.query.GetCourseWithSections(context.Background(), env.other, course.ID, CourseTreeOptions{})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestGetHierarchy(t *testing.T) {
	env := newTestEnv(t)
	course, intro, details := buildQueryFixture(t, env)
	second := env.mustCreateSection(t, course.ID, nil, "Second", "")

	roots, err := env.query.GetHierarchy(context.Background(), env.owner, course.ID)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	assert.Equal(t, intro.ID, roots[0].ID)
	assert.Equal(t, "0", roots[0].Path)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, details.ID, roots[0].Children[0].ID)
	assert.Equal(t, "0.0", roots[0].Children[0].Path)

	assert.Equal(t, second.ID, roots[1].ID)
	assert.Empty(t, roots[1].Children)
}

func TestGetTableOfContents(t *testing.T) {
	env := newTestEnv(t)
	course, intro, details := buildQueryFixture(t, env)
	hiddenChild := env.mustCreateSection(t, course.ID, &details.ID, "Hidden Child", "")

	entries, err := env.query.GetTableOfContents(context.Background(), env.owner, course.ID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// 隐藏章节连同子树从目录消失
	hide := model.SectionSettings{ShowInTOC: false}
	_, err = env.sections.UpdateSection(env.owner, details.ID, SectionUpdateRequest{Settings: &hide})
	require.NoError(t, err)
	env.cache.Flush()

	entries, err = env.query.GetTableOfContents(context.Background(), env.owner, course.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, intro.ID, entries[0].SectionID)
	for _, e := range entries {
		assert.NotEqual(t, hiddenChild.ID, e.SectionID)
	}
}

func TestSearchSectionsRanking(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Search")

	inBody := env.mustCreateSection(t, course.ID, nil, "Chapter One", "this covers goroutine scheduling")
	inTitle := env.mustCreateSection(t, course.ID, nil, "Goroutine Basics", "introductory text")
	env.mustCreateSection(t, course.ID, nil, "Unrelated", "nothing to see")

	hits, err := env.query.SearchSections(context.Background(), env.owner, course.ID, "goroutine")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// 标题命中排在正文命中之前
	assert.Equal(t, inTitle.ID, hits[0].SectionID)
	assert.Equal(t, 3, hits[0].Rank)
	assert.Equal(t, inBody.ID, hits[1].SectionID)
	assert.Equal(t, 2, hits[1].Rank)
	assert.Contains(t, hits[1].Snippet, "goroutine")

	empty, err := env.query.SearchSections(context.Background(), env.owner, course.ID, "   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetStatistics(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Stats")

	root := env.mustCreateSection(t, course.ID, nil, "Root", "one two three")
	env.mustCreateSection(t, course.ID, &root.ID, "Child", "four five")
	env.mustCreateSection(t, course.ID, nil, "Empty", "")

	stats, err := env.query.GetStatistics(context.Background(), env.owner, course.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalSections)
	assert.Equal(t, 5, stats.TotalWords)
	assert.Equal(t, 2, stats.SectionsWithText)
	assert.Equal(t, 2, stats.MaxDepth)
	assert.Equal(t, 2, stats.FormatDistribution["markup"])
	assert.Equal(t, 2, stats.LevelDistribution[0])
	assert.Equal(t, 1, stats.LevelDistribution[1])
}

func TestQueryResultsInvalidateOnWrite(t *testing.T) {
	env := newTestEnv(t)
	course, _, _ := buildQueryFixture(t, env)

	roots, err := env.query.GetHierarchy(context.Background(), env.owner, course.ID)
	require.NoError(t, err)
	require.Len(t, roots, 1)

	// 写路径按课程标签失效缓存，新章节立即可见
	env.mustCreateSection(t, course.ID, nil, "Fresh", "")

	roots, err = env.query.GetHierarchy(context.Background(), env.owner, course.ID)
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}
