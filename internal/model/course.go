package model

import "time"

const (
	CourseTypeGuide     = "guide"
	CourseTypeTutorial  = "tutorial"
	CourseTypeArticle   = "article"
	CourseTypeReference = "reference"
)

const (
	StructureFlat         = "flat"
	StructureHierarchical = "hierarchical"
)

// ForkLineage 复刻来源记录，随复刻课程一同落库
type ForkLineage struct {
	SourceCourseID  uint      `json:"sourceCourseId"`
	SourceOwnerID   uint      `json:"sourceOwnerId"`
	SourceOwnerName string    `json:"sourceOwnerName"`
	ForkedAt        time.Time `json:"forkedAt"`
}

type CourseSettings struct {
	MaxNestingDepth int    `json:"maxNestingDepth"`
	Structure       string `json:"structure"` // flat / hierarchical
	ShowTOC         bool   `json:"showTOC"`
}

// CourseStats 冗余的聚合统计，章节变更后重算
type CourseStats struct {
	TotalSections int `gorm:"default:0" json:"totalSections"`
	TotalWords    int `gorm:"default:0" json:"totalWords"`
	ReadMinutes   int `gorm:"default:0" json:"readMinutes"`
}

// swagger:model Course
type Course struct {
	BaseModel

	OwnerID    uint   `gorm:"index;type:bigint unsigned" json:"ownerId"`
	Title      string `gorm:"size:255;not null" json:"title"`
	Slug       string `gorm:"size:255;uniqueIndex" json:"slug"`
	Topic      string `gorm:"size:255" json:"topic"`
	Type       string `gorm:"size:20;default:'guide'" json:"type"`
	IsPublic   bool   `gorm:"default:false" json:"isPublic"`
	ForkCount  int    `gorm:"default:0" json:"forkCount"`
	ViewCount  int    `gorm:"default:0" json:"viewCount"`
	ForkedFrom *ForkLineage `gorm:"type:json;serializer:json" json:"forkedFrom,omitempty"`

	// 根章节ID的有序列表；所有章节经由它可达
	SectionIDs []uint         `gorm:"type:json;serializer:json" json:"sectionIds"`
	Settings   CourseSettings `gorm:"type:json;serializer:json" json:"settings"`
	Stats      CourseStats    `gorm:"embedded;embeddedPrefix:stat_" json:"stats"`
}

func (Course) TableName() string {
	return "courses"
}

func DefaultCourseSettings(maxDepth int) CourseSettings {
	return CourseSettings{
		MaxNestingDepth: maxDepth,
		Structure:       StructureHierarchical,
		ShowTOC:         true,
	}
}
