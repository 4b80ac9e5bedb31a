package main

import (
	"flag"
	"fmt"
	"log"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is the minimum password length requirement
	MinPasswordLength = 8
	// BcryptCost is the cost factor for bcrypt hashing (10 = ~100ms)
	BcryptCost = 10
)

func main() {
	password := flag.String("password", "", "Admin password to hash (required, min 8 chars)")
	flag.Parse()

	if err := validatePassword(*password); err != nil {
		log.Fatalf("Validation error: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println("Set the following environment variable for the API server:")
	fmt.Printf("LLMREFINE_ADMIN_PASSWORD_HASH='%s'\n", string(hashed))
}

// validatePassword enforces the password strength requirements
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return fmt.Errorf("password must contain at least one letter and one number")
	}

	return nil
}
