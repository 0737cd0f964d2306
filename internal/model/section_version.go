package model

// swagger:model SectionVersion
type SectionVersion struct {
	BaseModel

	SectionID     uint          `gorm:"index;type:bigint unsigned;not null" json:"sectionId"`
	VersionNumber int           `gorm:"default:1" json:"versionNumber"`
	Format        ContentFormat `gorm:"size:10" json:"format"`
	Content       string        `gorm:"type:longtext" json:"content"`
	WordCount     int           `gorm:"default:0" json:"wordCount"`
	SavedBy       uint          `gorm:"index;type:bigint unsigned" json:"savedBy"`
	SavedByName   string        `gorm:"size:100" json:"savedByName"`
	ChangeNote    string        `gorm:"type:text" json:"changeNote"`
}

func (SectionVersion) TableName() string {
	return "section_versions"
}
