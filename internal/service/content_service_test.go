package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/util"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateContentSnapshotsAndRegenerates(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Content")
	section := env.mustCreateSection(t, course.ID, nil, "S", "old body")

	updated, err := env.content.UpdateContent(env.owner, section.ID, ContentUpdateRequest{
		Content:    "# Heading\n\nnew body with **bold**",
		Format:     "markup",
		ChangeNote: "rewrite",
	})
	require.NoError(t, err)

	assert.Equal(t, model.FormatMarkup, updated.Content.PrimaryFormat)
	assert.Contains(t, updated.Content.Render.Text, "<h1>Heading</h1>")
	assert.Contains(t, updated.Content.Render.Text, "<strong>bold</strong>")
	assert.NotEmpty(t, updated.Content.Doc.Text)
	assert.Equal(t, 5, updated.WordCount)
	assert.Equal(t, 1, updated.ReadMinutes)

	versions, err := env.versions.ListVersions(section.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "old body", versions[0].Content)
	assert.Equal(t, "rewrite", versions[0].ChangeNote)
	assert.Equal(t, env.owner.ID, versions[0].SavedBy)
}

func TestUpdateContentVersionCap(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Cap")
	section := env.mustCreateSection(t, course.ID, nil, "S", "v0")

	// 上限3：多次覆盖后只保留最近3个版本，更早的静默丢弃
	for i := 1; i <= 5; i++ {
		_, err := env.content.UpdateContent(env.owner, section.ID, ContentUpdateRequest{
			Content: fmt.Sprintf("v%d", i),
			Format:  "markup",
		})
		require.NoError(t, err)
	}

	versions, err := env.versions.ListVersions(section.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	// 倒序返回：5,4,3
	assert.Equal(t, 5, versions[0].VersionNumber)
	assert.Equal(t, "v4", versions[0].Content)
	assert.Equal(t, 3, versions[2].VersionNumber)
	assert.Equal(t, "v2", versions[2].Content)
}

func TestRestoreVersion(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Restore")
	section := env.mustCreateSection(t, course.ID, nil, "S", "version A")

	_, err := env.content.UpdateContent(env.owner, section.ID, ContentUpdateRequest{
		Content: "version B", Format: "markup",
	})
	require.NoError(t, err)

	// 版本1 = "version A"
	restored, err := env.content.RestoreVersion(env.owner, section.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "version A", restored.Content.Primary())

	// 还原前的当前状态（version B）也留了档，还原可被再次撤销
	versions, err := env.versions.ListVersions(section.ID)
	require.NoError(t, err)
	assert.Equal(t, "version B", versions[0].Content)
	assert.Equal(t, "restore version 1", versions[0].ChangeNote)

	_, err = env.content.RestoreVersion(env.owner, section.ID, 99)
	assert.ErrorIs(t, err, util.ErrVersionNotFound)
}

func TestGetContentConvertsOnTheFly(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Read")
	section := env.mustCreateSection(t, course.ID, nil, "S", "plain **bold**")

	// 槽位已填充时直接返回
	text, err := env.content.GetContent(section.ID, "render")
	require.NoError(t, err)
	assert.Contains(t, text, "<strong>bold</strong>")

	// 清空render槽位后应从主槽位即时转换
	fresh := env.reload(t, section.ID)
	fresh.Content.Render = model.ContentSlot{}
	require.NoError(t, env.db.Save(fresh).Error)

	text, err = env.content.GetContent(section.ID, "render")
	require.NoError(t, err)
	assert.Contains(t, text, "<strong>bold</strong>")

	_, err = env.content.GetContent(section.ID, "pdf")
	assert.ErrorIs(t, err, util.ErrInvalidFormat)
}

func TestSwitchPrimaryFormat(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Switch")
	section := env.mustCreateSection(t, course.ID, nil, "S", "hello **world**")

	switched, err := env.content.SwitchPrimaryFormat(env.owner, section.ID, "render")
	require.NoError(t, err)
	assert.Equal(t, model.FormatRender, switched.Content.PrimaryFormat)
	assert.Equal(t, 2, switched.WordCount)

	// 同格式切换为无操作，不新增版本
	again, err := env.content.SwitchPrimaryFormat(env.owner, section.ID, "render")
	require.NoError(t, err)
	assert.Equal(t, model.FormatRender, again.Content.PrimaryFormat)

	versions, err := env.versions.ListVersions(section.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)

	// 空槽位不可作为主格式
	fresh := env.reload(t, section.ID)
	fresh.Content.Doc = model.ContentSlot{}
	require.NoError(t, env.db.Save(fresh).Error)
	_, err = env.content.SwitchPrimaryFormat(env.owner, section.ID, "doc")
	assert.ErrorIs(t, err, util.ErrEmptyTargetFormat)
}

func TestCompareVersions(t *testing.T) {
	env := newTestEnv(t)
	course := env.mustCreateCourse(t, "Diff")
	section := env.mustCreateSection(t, course.ID, nil, "S", "one two three")

	_, err := env.content.UpdateContent(env.owner, section.ID, ContentUpdateRequest{
		Content: "one two", Format: "markup",
	})
	require.NoError(t, err)
	_, err = env.content.UpdateContent(env.owner, section.ID, ContentUpdateRequest{
		Content: "final", Format: "markup",
	})
	require.NoError(t, err)

	diff, err := env.versions.CompareVersions(section.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "one two three", diff.A.Content)
	assert.Equal(t, "one two", diff.B.Content)
	assert.Equal(t, -1, diff.WordDelta)
	assert.False(t, diff.SameText)
}
