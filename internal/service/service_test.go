package service

import (
	"ai_study_backend/internal/config"
	"ai_study_backend/internal/model"
	"ai_study_backend/internal/repository"
	"ai_study_backend/pkg/cache"
	"ai_study_backend/pkg/database"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 服务层测试统一跑在内存sqlite上，建表走与生产一致的迁移
type testEnv struct {
	db    *gorm.DB
	cfg   *config.Config
	cache *cache.Cache

	courses  *CourseService
	sections *SectionService
	content  *ContentService
	versions *VersionService
	query    *QueryService

	owner Actor
	other Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库随连接销毁，锁死单连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Course: config.CourseConfig{
			MaxNestingDepth: 3,
			MaxVersions:     3,
			ForkBatchSize:   10,
		},
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	versionRepo := repository.NewSectionVersionRepository(db)

	conv := NewConverterService()
	queryCache := cache.New(cache.DefaultOptions(), nil)

	env := &testEnv{
		db:       db,
		cfg:      cfg,
		cache:    queryCache,
		courses:  NewCourseService(courseRepo, sectionRepo, queryCache, cfg, db, nil),
		sections: NewSectionService(sectionRepo, courseRepo, versionRepo, conv, queryCache, cfg, db),
		content:  NewContentService(sectionRepo, versionRepo, conv, queryCache, cfg, db),
		versions: NewVersionService(versionRepo, sectionRepo),
		query:    NewQueryService(courseRepo, sectionRepo, conv, queryCache, db),
	}

	ownerUser := &model.User{Name: "Ada", Email: "ada@example.com", Password: "x", Role: model.Creator}
	require.NoError(t, userRepo.Create(ownerUser))
	otherUser := &model.User{Name: "Bob", Email: "bob@example.com", Password: "x", Role: model.Creator}
	require.NoError(t, userRepo.Create(otherUser))

	env.owner = Actor{ID: ownerUser.ID, Name: ownerUser.Name}
	env.other = Actor{ID: otherUser.ID, Name: otherUser.Name}
	return env
}

func (e *testEnv) mustCreateCourse(t *testing.T, title string) *model.Course {
	t.Helper()
	course, err := e.courses.CreateCourse(e.owner, CourseCreateRequest{Title: title, Topic: "testing"})
	require.NoError(t, err)
	return course
}

func (e *testEnv) mustCreateSection(t *testing.T, courseID uint, parentID *uint, title, markup string) *model.Section {
	t.Helper()
	section, err := e.sections.CreateSection(e.owner, SectionCreateRequest{
		CourseID: courseID,
		ParentID: parentID,
		Title:    title,
		Content:  markup,
	})
	require.NoError(t, err)
	return section
}

func (e *testEnv) reload(t *testing.T, id uint) *model.Section {
	t.Helper()
	section, err := loadSection(e.db, id)
	require.NoError(t, err)
	return section
}
