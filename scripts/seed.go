// 演示数据初始化脚本
//
// 创建一名教师、一名学生和一门带章节/课时/测验的已发布课程，
// 用于本地联调和前端演示。重复执行时跳过已存在的账号。
//
// 用法: go run scripts/seed.go

package main

import (
	"log"
	"os"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
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

	teacher := ensureUser(db, "teacher@example.com", "李老师", model.Teacher)
	ensureUser(db, "student@example.com", "王同学", model.Student)

	var existing model.Course
	if err := db.Where("slug = ?", "go-web-development").First(&existing).Error; err == nil {
		log.Println("演示课程已存在，跳过")
		return
	}

	now := time.Now()
	course := model.Course{
		Title:       "Go Web 开发入门",
		Slug:        "go-web-development",
		Description: "从零开始的 Go Web 后端课程",
		Category:    "编程",
		TeacherID:   teacher.ID,
		Level:       model.LevelBeginner,
		Status:      model.CoursePublished,
		IsFree:      true,
		PublishedAt: &now,
	}
	if err := db.Create(&course).Error; err != nil {
		log.Fatalf("创建课程失败: %v", err)
	}

	m := model.CourseModule{CourseID: course.ID, Title: "第一章 基础", Order: 1}
	if err := db.Create(&m).Error; err != nil {
		log.Fatalf("创建章节失败: %v", err)
	}

	lessons := []model.Lesson{
		{
			CourseID: course.ID, ModuleID: &m.ID, TeacherID: teacher.ID,
			Title: "环境搭建", Type: model.LessonArticle,
			Content: "安装 Go 工具链并初始化模块。",
			Order:   1, Status: model.LessonPublished, PublishedAt: &now,
		},
		{
			CourseID: course.ID, ModuleID: &m.ID, TeacherID: teacher.ID,
			Title: "第一章测验", Type: model.LessonQuiz,
			Questions: []model.QuizQuestion{
				{
					Text:         "Go 模块的依赖清单文件是哪个?",
					Options:      []string{"go.mod", "package.json", "Makefile"},
					CorrectIndex: 0,
				},
			},
			Order: 2, Status: model.LessonPublished, PublishedAt: &now,
		},
	}
	for i := range lessons {
		if err := db.Create(&lessons[i]).Error; err != nil {
			log.Fatalf("创建课时失败: %v", err)
		}
	}

	db.Model(&course).Updates(map[string]interface{}{
		"module_count": 1,
		"lesson_count": len(lessons),
	})

	log.Println("演示数据初始化完成")
}

func ensureUser(db *gorm.DB, email, name string, role model.UserRole) *model.User {
	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		return &user
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("密码哈希失败: %v", err)
	}

	user = model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		Rank:     model.RankBeginner,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("创建用户失败: %v", err)
	}
	return &user
}
