// file: main.go
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"skoljka/database"
	"skoljka/routes"
)

func main() {
	// .env 缺失不算错误，部署环境直接注入变量
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	database.Connect()
	database.InitRedis()

	// 自动迁移默认关闭，线上表结构走 SQL 脚本管理
	// database.MigrateTables()

	r := routes.SetupRouter()

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Println("Starting server on " + addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
