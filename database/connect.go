// file: database/connect.go
package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"skoljka/models"
)

var DB *gorm.DB

func Connect() {
	var err error
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:123456@tcp(localhost:3306)/skoljka?charset=utf8mb4&parseTime=True&loc=Local"
	}
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB:", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	// MySQL 的 wait_timeout 会悄悄断开长连接，限制连接的复用寿命
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection successfully established and connection pool configured.")
}

// MigrateTables 开发环境用的自动迁移，线上表结构走 SQL 脚本管理
func MigrateTables() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Competition{},
		&models.Team{},
		&models.TeamMember{},
		&models.Chain{},
		&models.ChainTeam{},
		&models.CompetitionTask{},
		&models.Submission{},
		&models.TaskStatus{},
	)
	if err != nil {
		log.Fatal("Failed to migrate tables:", err)
	}
}
