//go:build ignore

// issue_token mints a session token for local development against a server
// running with AUTH_PROVIDER=jwt. Usage: go run issue_token.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mymedicos/discuss-backend/auth"
)

func main() {
	fmt.Println("🔑 Dev Session Token Issuer")
	fmt.Println("---------------------------")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
		fmt.Println("Continuing with environment variables...")
	}

	secret := getEnv("JWT_SECRET", "")
	issuer := getEnv("JWT_ISSUER", "")
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		fmt.Printf("❌ Invalid TOKEN_TTL: %v\n", err)
		os.Exit(1)
	}

	if secret == "" {
		fmt.Println("❌ JWT_SECRET environment variable is required")
		fmt.Println("Please set it in your .env file or environment")
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	uid := prompt(reader, "1. User uid: ")
	phone := prompt(reader, "2. Phone number (must exist in the legacy directory): ")
	if uid == "" || phone == "" {
		fmt.Println("❌ uid and phone number are both required. Exiting.")
		os.Exit(1)
	}

	verifier, err := auth.NewJWTVerifier(secret, issuer)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	token, err := verifier.Issue(auth.Identity{UID: uid, Phone: phone}, ttl)
	if err != nil {
		fmt.Printf("❌ Error signing token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Token issued. Send it as a bearer token or the accessToken cookie:")
	fmt.Printf("\n%s\n\n", token)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
