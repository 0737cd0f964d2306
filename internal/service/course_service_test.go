package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseDefaults(t *testing.T) {
	env := newTestEnv(t)

	course, err := env.courses.CreateCourse(env.owner, CourseCreateRequest{Title: "My Go Course"})
	require.NoError(t, err)

	assert.Equal(t, env.owner.ID, course.OwnerID)
	assert.Equal(t, "my-go-course", course.Slug)
	assert.Equal(t, model.CourseTypeGuide, course.Type)
	assert.Equal(t, 3, course.Settings.MaxNestingDepth)
	assert.False(t, course.IsPublic)

	// 同名课程slug追加序号
	second, err := env.courses.CreateCourse(env.owner, CourseCreateRequest{Title: "My Go Course"})
	require.NoError(t, err)
	assert.Equal(t, "my-go-course-2", second.Slug)
}

func TestGetCourseVisibility(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Hidden")

	_, err := env.courses.GetCourse(env.other, course.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	public := true
	_, err = env.courses.UpdateCourse(env.owner, course.ID, CourseUpdateRequest{IsPublic: &public})
	require.NoError(t, err)

	got, err := env.courses.GetCourse(env.other, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, got.ID)
}

func TestDeleteCourseCascades(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Doomed")
	section := env.mustCreateSection(t, course.ID, nil, "S", "body")
	env.mustCreateSection(t, course.ID, &section.ID, "Child", "more")

	_, err := env.content.UpdateContent(env.owner, section.ID, ContentUpdateRequest{
		Content: "changed", Format: "markup",
	})
	require.NoError(t, err)

	require.NoError(t, env.courses.DeleteCourse(env.owner, course.ID))

	_, err = loadCourse(env.db, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	var sections, versions int64
	env.db.Model(&model.Section{}).Where("course_id = ?", course.ID).Count(&sections)
	env.db.Model(&model.SectionVersion{}).Where("section_id = ?", section.ID).Count(&versions)
	assert.Equal(t, int64(0), sections)
	assert.Equal(t, int64(0), versions)
}

func TestSearchCoursesRestrictsToPublic(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateCourse(t, "Private Notes")

	pub, err := env.courses.CreateCourse(env.owner, CourseCreateRequest{Title: "Public Guide", IsPublic: true})
	require.NoError(t, err)

	// 他人检索只命中公开课程
	courses, total, err := env.courses.SearchCourses(env.other, repository.CourseFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, courses, 1)
	assert.Equal(t, pub.ID, courses[0].ID)

	// 本人检索自己的课程不受限制
	courses, total, err = env.courses.SearchCourses(env.owner, repository.CourseFilter{OwnerID: env.owner.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, courses, 2)
}

func TestForkCourse(t *testing.T) {
	env := newTestEnv(t)

	source, err := env.courses.CreateCourse(env.owner, CourseCreateRequest{Title: "Shared Course", IsPublic: true})
	require.NoError(t, err)

	root := env.mustCreateSection(t, source.ID, nil, "Root", "root body")
	child := env.mustCreateSection(t, source.ID, &root.ID, "Child", "child body")
	env.mustCreateSection(t, source.ID, &child.ID, "Grand", "grand body")
	env.mustCreateSection(t, source.ID, nil, "Second Root", "")

	fork, err := env.courses.ForkCourse(env.other, source.ID)
	require.NoError(t, err)

	// 副本归复刻者所有，计数清零且为私有
	assert.Equal(t, env.other.ID, fork.OwnerID)
	assert.False(t, fork.IsPublic)
	assert.Equal(t, 0, fork.ForkCount)
	assert.Equal(t, 0, fork.ViewCount)
	require.NotNil(t, fork.ForkedFrom)
	assert.Equal(t, source.ID, fork.ForkedFrom.SourceCourseID)
	assert.Equal(t, env.owner.ID, fork.ForkedFrom.SourceOwnerID)
	assert.Equal(t, "Ada", fork.ForkedFrom.SourceOwnerName)

	// 源课程fork计数+1
	fresh, err := loadCourse(env.db, source.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.ForkCount)

	// 章节全量复制且ID不重叠
	var originals, copies []model.Section
	require.NoError(t, env.db.Where("course_id = ?", source.ID).Find(&originals).Error)
	require.NoError(t, env.db.Where("course_id = ?", fork.ID).Find(&copies).Error)
	require.Len(t, copies, len(originals))

	origIDs := map[uint]bool{}
	for _, s := range originals {
		origIDs[s.ID] = true
	}
	for _, s := range copies {
		assert.False(t, origIDs[s.ID], "副本不得复用源章节ID")
	}

	// 拓扑同构：路径集合一致，父子引用都指向副本内部
	origPaths := map[string]bool{}
	for _, s := range originals {
		origPaths[s.Path] = true
	}
	copyIDs := map[uint]bool{}
	for _, s := range copies {
		copyIDs[s.ID] = true
	}
	for _, s := range copies {
		assert.True(t, origPaths[s.Path], "path %s", s.Path)
		if s.ParentID != nil {
			assert.True(t, copyIDs[*s.ParentID])
		}
		for _, childID := range s.ChildIDs {
			assert.True(t, copyIDs[childID])
		}
	}
	require.Len(t, fork.SectionIDs, 2)
	for _, id := range fork.SectionIDs {
		assert.True(t, copyIDs[id])
	}

	// 改副本不影响源
	_, err = env.content.UpdateContent(env.other, fork.SectionIDs[0], ContentUpdateRequest{
		Content: "forked edit", Format: "markup",
	})
	require.NoError(t, err)
	assert.Equal(t, "root body", env.reload(t, root.ID).Content.Primary())
}

func TestForkCoursePrivateForbidden(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Mine")

	_, err := env.courses.ForkCourse(env.other, course.ID)
	assert.ErrorIs(t, err, util.ErrForkNotAllowed)

	// 所有者可以复刻自己的私有课程
	_, err = env.courses.ForkCourse(env.owner, course.ID)
	require.NoError(t, err)
}

func TestRecomputeAllStats(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Stats")
	env.mustCreateSection(t, course.ID, nil, "S", "one two three four")

	// 手工破坏统计列，重算后恢复
	require.NoError(t, env.db.Model(&model.Course{}).Where("id = ?", course.ID).
		Update("stat_total_words", 999).Error)

	count, err := env.courses.RecomputeAllStats()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	fresh, err := loadCourse(env.db, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.Stats.TotalWords)
	assert.Equal(t, 1, fresh.Stats.TotalSections)
}

func TestRecordViewWithoutRedisFallsBackToDB(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Views")

	env.courses.RecordView(t.Context(), course.ID)
	env.courses.RecordView(t.Context(), course.ID)

	fresh, err := loadCourse(env.db, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.ViewCount)
}
