package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/sortyourtrip/hotel-crm-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := flag.String("operator-password", "", "optional operator password to hash with bcrypt")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("Secret Generator for Hotel CRM Backend")
	fmt.Println("===========================================")
	fmt.Println()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)

	if *password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash operator password: %v", err)
		}
		fmt.Printf("OPERATOR_PASSWORD_HASH=%s\n", string(hash))
	}

	fmt.Println()
	fmt.Println("IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
