// seed creates the default roles and can grant the admin role to an
// existing user. Safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/auth_service/internal/db"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/service"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load(".env")

	dsn := flag.String("database-url", os.Getenv("DATABASE_URL"), "database DSN (postgres:// or sqlite://)")
	adminRole := flag.String("admin-role", envOr("ADMIN_ROLE", "admin"), "name of the administrator role")
	adminEmail := flag.String("admin-email", "", "grant the admin role to the user with this email")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("DATABASE_URL is not set; pass -database-url or create a .env")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, *dsn)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close(gdb)

	rp := repo.New(gdb, 5*time.Second)
	roles := &service.RoleService{Repo: rp}

	var admin *models.Role
	for _, name := range []string{*adminRole, "user"} {
		role, err := roles.EnsureRole(ctx, name)
		if err != nil {
			log.Fatalf("ensure role %q: %v", name, err)
		}
		if admin == nil {
			admin = role
		}
		log.Printf("role %q ready (%s)", role.Name, role.ID)
	}

	if *adminEmail == "" {
		return
	}
	user, err := rp.GetUserByEmail(ctx, *adminEmail)
	if err != nil {
		log.Fatalf("find user %q: %v", *adminEmail, err)
	}
	if err := roles.Assign(ctx, user.ID, admin.ID); err != nil {
		log.Fatalf("assign admin: %v", err)
	}
	log.Printf("granted %q to %s", admin.Name, user.Email)
}
