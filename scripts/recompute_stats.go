// 手动触发全量课程统计重算脚本
//
// 统计在每次内容/结构变更后都会增量重算，此脚本仅用于修复场景，
// 例如批量导入数据后或统计列发生过手工改动。
//
// 用法: go run scripts/recompute_stats.go

package main

import (
	"ai_study_backend/internal/config"
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/service"
	"ai_study_backend/pkg/database"
	"ai_study_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	courses := service.NewCourseService(courseRepo, sectionRepo, nil, &cfg, db, nil)

	log.Println("开始重算全部课程统计...")
	count, err := courses.RecomputeAllStats()
	if err != nil {
		log.Fatalf("重算失败（已完成 %d 个）: %v", count, err)
	}
	log.Printf("完成！共重算 %d 个课程", count)
}
