// Command devtoken prints a signed access token for local testing against the API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"restaurant_analytics/pkg/utils"

	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "", "e-mail claim; must have a row in restaurant_access")
	role := flag.String("role", "viewer", "role claim")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	if *email == "" {
		log.Fatal("-email is required")
	}
	if err := utils.SetJWTSecret(os.Getenv("JWT_SECRET")); err != nil {
		log.Fatalf("JWT_SECRET: %v", err)
	}

	token, err := utils.GenerateAccessToken(*email, *role, *ttl)
	if err != nil {
		log.Fatalf("generating token: %v", err)
	}
	fmt.Println(token)
}
