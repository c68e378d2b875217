package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	gormpostgres "gorm.io/driver/postgres"

	catalogmodel "github.com/devrahi999/ihntopup/internal/core/datamodel/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"transactions", "orders", "banners", "topup_cards", "diamond_packs", "categories", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser(db, "admin@ihntopup.com", "IHN Admin", "admin", string(hash))
		seedUser(db, "rahi@mail.com", "Rahi", "customer", string(hash))

		seedCatalog(db)

		fmt.Println("Seeding complete")
	},
}

func seedUser(db *gorm.DB, email, name, role, hash string) {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Println("user already exists:", email)
		return
	}

	if err := db.Exec(
		"INSERT INTO users (email, name, password_hash, role, wallet_balance, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, 0, true, now(), now())",
		email, name, hash, role,
	).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Printf("Seeded %s user: %s (password: password)\n", role, email)
}

func seedCatalog(db *gorm.DB) {
	var count int64
	if err := db.Model(&catalogmodel.Category{}).Count(&count).Error; err != nil {
		log.Fatalf("failed to count categories: %v", err)
	}
	if count > 0 {
		fmt.Println("catalog already seeded; skipping")
		return
	}

	categories := []catalogmodel.Category{
		{Name: "Free Fire", Slug: "free-fire", SortOrder: 1, IsActive: true},
		{Name: "PUBG Mobile", Slug: "pubg-mobile", SortOrder: 2, IsActive: true},
	}
	if err := db.Create(&categories).Error; err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}

	ffID := categories[0].ID
	packs := []catalogmodel.DiamondPack{
		{CategoryID: &ffID, Name: "25 Diamonds", Diamonds: 25, Price: 25, SortOrder: 1, IsActive: true},
		{CategoryID: &ffID, Name: "100 Diamonds", Diamonds: 100, Price: 85, SortOrder: 2, IsActive: true},
		{CategoryID: &ffID, Name: "310 Diamonds", Diamonds: 310, Price: 240, SortOrder: 3, IsActive: true},
		{CategoryID: &ffID, Name: "520 Diamonds", Diamonds: 520, Price: 400, SortOrder: 4, IsActive: true},
		{CategoryID: &ffID, Name: "1060 Diamonds", Diamonds: 1060, Price: 800, SortOrder: 5, IsActive: true},
	}
	if err := db.Create(&packs).Error; err != nil {
		log.Fatalf("failed to seed diamond packs: %v", err)
	}

	cards := []catalogmodel.TopupCard{
		{Name: "Weekly Membership", Description: "7 day membership card", Price: 165, IsActive: true},
		{Name: "Monthly Membership", Description: "30 day membership card", Price: 800, IsActive: true},
	}
	if err := db.Create(&cards).Error; err != nil {
		log.Fatalf("failed to seed topup cards: %v", err)
	}

	banners := []catalogmodel.Banner{
		{Title: "Diamond Sale", ImageURL: "/banners/diamond-sale.png", LinkURL: "/packs", SortOrder: 1, IsActive: true},
	}
	if err := db.Create(&banners).Error; err != nil {
		log.Fatalf("failed to seed banners: %v", err)
	}

	fmt.Printf("Seeded %d categories, %d packs, %d cards, %d banners\n",
		len(categories), len(packs), len(cards), len(banners))
}
