package service

import (
	"ai_study_backend/internal/model"
	"ai_study_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// applyContentBlock 把新内容写入 format 指定的主槽位，并尽力从它
// 再生另外两个槽位。次要格式转换失败只记日志并跳过：丢一份次要
// 表示远比丢用户的主编辑轻，主写入从不因转换失败回滚。
// 只改内存中的 section，持久化由调用方的事务完成。
func applyContentBlock(conv *ConverterService, section *model.Section, content string, format model.ContentFormat) {
	now := time.Now()

	slot := section.Content.Slot(format)
	slot.Text = content
	slot.GeneratedAt = &now
	section.Content.PrimaryFormat = format
	section.HasContent = content != ""

	for _, other := range format.Others() {
		target := section.Content.Slot(other)
		if content == "" {
			target.Text = ""
			target.GeneratedAt = nil
			continue
		}
		converted, err := conv.Convert(content, format, other)
		if err != nil {
			logger.Log.Warn("secondary format regeneration failed",
				zap.Uint("sectionId", section.ID),
				zap.String("from", string(format)),
				zap.String("to", string(other)),
				zap.Error(err))
			continue
		}
		target.Text = converted
		target.GeneratedAt = &now
	}

	words := conv.WordCount(content, format)
	section.WordCount = words
	section.ReadMinutes = conv.ReadMinutes(words)
}

// recomputeCourseStats 汇总章节字数/数量并写回课程行，在调用方事务内执行
func recomputeCourseStats(tx *gorm.DB, course *model.Course) error {
	var sections []model.Section
	if err := tx.Where("course_id = ?", course.ID).Find(&sections).Error; err != nil {
		return err
	}

	stats := model.CourseStats{TotalSections: len(sections)}
	for _, sec := range sections {
		stats.TotalWords += sec.WordCount
		stats.ReadMinutes += sec.ReadMinutes
	}

	course.Stats = stats
	return tx.Model(&model.Course{}).Where("id = ?", course.ID).Updates(map[string]interface{}{
		"stat_total_sections": stats.TotalSections,
		"stat_total_words":    stats.TotalWords,
		"stat_read_minutes":   stats.ReadMinutes,
	}).Error
}
