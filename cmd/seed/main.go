package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/internal/db"
)

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <stores.xlsx>")
	}

	filePath := os.Args[1]

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	storeRepo := repository.NewStoreRepository(db.GetDB())

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	result, err := readStoresFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", result.TotalRows)
	fmt.Printf("  Valid stores: %d\n", len(result.Stores))
	fmt.Printf("  Skipped rows: %d\n", result.Skipped)

	// 사용자 확인
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	// 배송 지역과 단가까지 함께 저장해야 하므로 한 건씩 생성
	imported := 0
	for i := range result.Stores {
		if err := storeRepo.Create(&result.Stores[i]); err != nil {
			log.Printf("Failed to import store %q: %v", result.Stores[i].BusinessName, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total stores imported: %d\n", imported)
}
