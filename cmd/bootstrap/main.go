// Command bootstrap creates the initial OWNER account with a one-time
// password. It exists for deployments where self-registration is closed
// before the first person signs up.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/EvgeniyGal/hr-agency/internal/auth"
	"github.com/EvgeniyGal/hr-agency/internal/config"
	"github.com/EvgeniyGal/hr-agency/internal/database"
	"github.com/EvgeniyGal/hr-agency/internal/rbac"
)

func main() {
	var (
		name    = flag.String("name", "", "owner display name (required)")
		email   = flag.String("email", "", "owner email (required)")
		dbHost  = flag.String("db-host", "", "database host (optional, falls back to DATABASE_HOST)")
		dbPort  = flag.Int("db-port", 0, "database port (optional, falls back to DATABASE_PORT)")
		dbName  = flag.String("db-name", "", "database name (optional, falls back to POSTGRES_DB)")
		dbUser  = flag.String("db-user", "", "database user (optional, falls back to POSTGRES_USER)")
		dbPass  = flag.String("db-password", "", "database password (optional, falls back to POSTGRES_PASSWORD)")
		sslMode = flag.String("db-sslmode", "", "database sslmode (optional, falls back to DATABASE_SSLMODE)")
	)
	flag.Parse()

	ownerName := strings.TrimSpace(*name)
	if ownerName == "" {
		log.Fatal("missing required flag: --name")
	}
	ownerEmail := strings.ToLower(strings.TrimSpace(*email))
	if ownerEmail == "" {
		log.Fatal("missing required flag: --email")
	}

	dbCfg, err := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := db.AutoMigrate(&database.User{}); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	var existing database.User
	switch err := db.Where("email = ?", ownerEmail).First(&existing).Error; {
	case err == nil:
		log.Fatalf("user %q already exists", ownerEmail)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		log.Fatalf("query user: %v", err)
	}

	var owners int64
	if err := db.Model(&database.User{}).Where("role = ?", rbac.RoleOwner).Count(&owners).Error; err != nil {
		log.Fatalf("count owners: %v", err)
	}
	if owners > 0 {
		log.Fatal("an OWNER account already exists; use the invite endpoint for additional users")
	}

	password, err := auth.GenerateOneTimePassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := database.User{
		Name:               ownerName,
		Email:              ownerEmail,
		PasswordHash:       hashed,
		Role:               rbac.RoleOwner,
		MustChangePassword: true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("created initial owner account (password change forced on first login):\n")
	fmt.Printf("email: %s\n", ownerEmail)
	fmt.Printf("one-time password: %s\n", password)
	fmt.Printf("note: log in and change the password now; it is shown only once.\n")
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("DATABASE_HOST")
	}
	if port <= 0 {
		if raw := os.Getenv("DATABASE_PORT"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("POSTGRES_DB")
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("DB_NAME")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("POSTGRES_USER")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("DB_USER")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("POSTGRES_PASSWORD")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("DB_PASSWORD")
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = os.Getenv("DATABASE_SSLMODE")
	}

	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = "disable"
	}
	if strings.TrimSpace(name) == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if strings.TrimSpace(user) == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if strings.TrimSpace(password) == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}
