package main

import (
	"database/sql"
	"log"

	"backend-qms/internal/config"
	"backend-qms/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Seeds the default services, one counter assigned to both, and the
// initial admin account (admin / admin123).
func main() {
	config.LoadEnv()
	db := config.InitDB()
	defer db.Close()

	generalID := seedService(db, "General", "A", 100, "General Inquiry")
	pharmacyID := seedService(db, "Pharmacy", "P", 100, "Medicine Collection")

	counterID := seedCounter(db, "Counter 1")
	assign(db, counterID, generalID)
	assign(db, counterID, pharmacyID)

	seedAdmin(db, "admin", "admin123")

	log.Println("Seed complete")
}

func seedService(db *sql.DB, name, prefix string, startNumber int, description string) int64 {
	_, err := db.Exec(`
		INSERT INTO services (name, prefix, start_number, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, NOW(), NOW())
		ON DUPLICATE KEY UPDATE updated_at = NOW()
	`, name, prefix, startNumber, description)
	if err != nil {
		log.Fatalf("seed service %s: %v", name, err)
	}

	var id int64
	if err := db.QueryRow("SELECT id FROM services WHERE name = ?", name).Scan(&id); err != nil {
		log.Fatalf("load service %s: %v", name, err)
	}
	log.Printf("service %s -> id %d", name, id)
	return id
}

func seedCounter(db *sql.DB, name string) int64 {
	_, err := db.Exec(`
		INSERT INTO counters (name, is_available, created_at, updated_at)
		VALUES (?, 1, NOW(), NOW())
		ON DUPLICATE KEY UPDATE updated_at = NOW()
	`, name)
	if err != nil {
		log.Fatalf("seed counter %s: %v", name, err)
	}

	var id int64
	if err := db.QueryRow("SELECT id FROM counters WHERE name = ?", name).Scan(&id); err != nil {
		log.Fatalf("load counter %s: %v", name, err)
	}
	log.Printf("counter %s -> id %d", name, id)
	return id
}

func assign(db *sql.DB, counterID, serviceID int64) {
	_, err := db.Exec(
		"INSERT IGNORE INTO counter_services (counter_id, service_id) VALUES (?, ?)",
		counterID, serviceID,
	)
	if err != nil {
		log.Fatalf("assign service %d to counter %d: %v", serviceID, counterID, err)
	}
}

func seedAdmin(db *sql.DB, username, password string) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash admin password:", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, password, role, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE updated_at = NOW()
	`, username, string(hashed), models.RoleAdmin)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Printf("admin user %s ready", username)
}
