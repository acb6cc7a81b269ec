package main

import (
	"fmt"
	"log"

	"backend/internal/app/ds"
	"backend/internal/app/dsn"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Утилита для быстрой проверки содержимого БД
func main() {
	_ = godotenv.Load()

	db, err := gorm.Open(postgres.Open(dsn.FromEnv()), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var requests []ds.WorkRequest
	if err := db.Order("id").Find(&requests).Error; err != nil {
		log.Fatal("Failed to get requests:", err)
	}

	fmt.Println("Requests in database:")
	for _, req := range requests {
		executor := "NULL"
		if req.Executor != nil {
			executor = *req.Executor
		}
		fmt.Printf("ID: %d, Kind: %s, Requester: %s, Priority: %s, Status: %s, Executor: %s\n",
			req.ID, req.Kind, req.Requester, req.Priority, req.Status, executor)

		var count int64
		db.Model(&ds.RequestStatusHistory{}).Where("request_id = ?", req.ID).Count(&count)
		fmt.Printf("  history entries: %d\n", count)
	}
}
