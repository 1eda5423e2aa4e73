package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BIHBOB/ssiteJungle/internal/models"
	"github.com/BIHBOB/ssiteJungle/internal/store"
)

func main() {
	addAdminCmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
	email := addAdminCmd.String("email", "", "Email for the new admin")
	password := addAdminCmd.String("password", "", "Password for the new admin")

	addPromoCmd := flag.NewFlagSet("add-promo", flag.ExitOnError)
	code := addPromoCmd.String("code", "", "Promo code")
	discountType := addPromoCmd.String("type", "percentage", "Discount type: percentage or fixed")
	value := addPromoCmd.Float64("value", 0, "Discount value")
	days := addPromoCmd.Int("days", 30, "Validity in days from now")
	maxUses := addPromoCmd.Int("max-uses", 0, "Max total uses (0 = unlimited)")

	if len(os.Args) < 2 {
		fmt.Println("expected 'add-admin' or 'add-promo' subcommand")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-admin":
		addAdminCmd.Parse(os.Args[2:])
		if *email == "" || *password == "" {
			fmt.Println("email and password are required")
			addAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		createAdmin(*email, *password)
	case "add-promo":
		addPromoCmd.Parse(os.Args[2:])
		if *code == "" || *value <= 0 {
			fmt.Println("code and a positive value are required")
			addPromoCmd.PrintDefaults()
			os.Exit(1)
		}
		createPromo(*code, *discountType, *value, *days, *maxUses)
	default:
		fmt.Println("expected 'add-admin' or 'add-promo' subcommand")
		os.Exit(1)
	}
}

func openStore() *store.Store {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./jungle.db"
	}
	db, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure tables exist if running cli before server
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to init schema: %v", err)
	}
	return db
}

func createAdmin(email, password string) {
	db := openStore()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         "Administrator",
		IsAdmin:      true,
	}
	if err := db.CreateUser(admin); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Admin '%s' created successfully.\n", email)
}

func createPromo(code, discountType string, value float64, days, maxUses int) {
	db := openStore()

	dt := models.DiscountType(discountType)
	if dt != models.DiscountPercentage && dt != models.DiscountFixed {
		log.Fatalf("Unknown discount type %q", discountType)
	}

	now := time.Now().UTC()
	promo := &models.PromoCode{
		Code:          code,
		DiscountType:  dt,
		DiscountValue: value,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, days),
		MaxUses:       maxUses,
		IsActive:      true,
	}
	if err := db.CreatePromoCode(promo); err != nil {
		log.Fatalf("Failed to create promo code: %v", err)
	}

	fmt.Printf("Promo code '%s' created, valid until %s.\n", promo.Code, promo.EndDate.Format("2006-01-02"))
}
