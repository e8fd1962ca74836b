package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedCurrencies(db)
	seedRates(db)
	productIDs := seedProducts(db)
	seedCombos(db, productIDs)
	seedOffers(db)

	log.Println("Seeding completed successfully!")
}

func seedCurrencies(db *sql.DB) {
	currencies := []struct {
		Code string
		Name string
	}{
		{"USD", "US Dollar"},
		{"EUR", "Euro"},
		{"CUP", "Cuban Peso"},
		{"MXN", "Mexican Peso"},
	}

	fmt.Println("Seeding Currencies...")
	for _, c := range currencies {
		_, err := db.Exec(`
			INSERT INTO currencies (code, name) VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		`, c.Code, c.Name)
		if err != nil {
			log.Fatalf("Failed to seed currency %s: %v", c.Code, err)
		}
	}
}

func seedRates(db *sql.DB) {
	rates := []struct {
		From string
		To   string
		Rate float64
	}{
		{"EUR", "USD", 1.10},
		{"USD", "EUR", 0.91},
		{"USD", "CUP", 120},
		{"USD", "MXN", 18.50},
		{"EUR", "CUP", 132},
	}

	fmt.Println("Seeding Exchange Rates...")
	for _, r := range rates {
		_, err := db.Exec(`
			INSERT INTO exchange_rates (from_code, to_code, rate, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (from_code, to_code) DO UPDATE SET rate = EXCLUDED.rate, updated_at = now()
		`, r.From, r.To, r.Rate)
		if err != nil {
			log.Fatalf("Failed to seed rate %s/%s: %v", r.From, r.To, err)
		}
	}
}

func seedProducts(db *sql.DB) map[string]string {
	products := []struct {
		Name     string
		Price    float64
		Currency string
		Stock    int
	}{
		{"Arroz Premium 5kg", 12.50, "USD", 40},
		{"Frijoles Negros 1kg", 4.20, "USD", 60},
		{"Aceite de Girasol 1L", 6.80, "EUR", 25},
		{"Cafe Molido 500g", 9.90, "USD", 30},
		{"Leche en Polvo 1kg", 11.40, "EUR", 0},
	}

	fmt.Println("Seeding Products...")
	ids := make(map[string]string, len(products))
	for _, p := range products {
		var id string
		err := db.QueryRow(`
			INSERT INTO products (name, base_price, base_currency_id, stock)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE
			SET base_price = EXCLUDED.base_price,
			    base_currency_id = EXCLUDED.base_currency_id,
			    stock = EXCLUDED.stock
			RETURNING id
		`, p.Name, p.Price, p.Currency, p.Stock).Scan(&id)
		if err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.Name, err)
		}
		ids[p.Name] = id
	}
	return ids
}

func seedCombos(db *sql.DB, productIDs map[string]string) {
	fmt.Println("Seeding Combos...")

	var comboID string
	err := db.QueryRow(`
		INSERT INTO combos (name, profit_margin, base_total_price)
		VALUES ('Canasta Basica', 35, 28.90)
		ON CONFLICT (name) DO UPDATE SET profit_margin = EXCLUDED.profit_margin
		RETURNING id
	`).Scan(&comboID)
	if err != nil {
		log.Fatalf("Failed to seed combo: %v", err)
	}

	items := []struct {
		Product string
		Qty     float64
	}{
		{"Arroz Premium 5kg", 1},
		{"Frijoles Negros 1kg", 2},
		{"Aceite de Girasol 1L", 1},
	}
	for position, item := range items {
		productID, ok := productIDs[item.Product]
		if !ok {
			log.Fatalf("Combo references unknown product %q", item.Product)
		}
		_, err := db.Exec(`
			INSERT INTO combo_items (combo_id, product_id, qty, position)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (combo_id, product_id) DO UPDATE SET qty = EXCLUDED.qty, position = EXCLUDED.position
		`, comboID, productID, item.Qty, position)
		if err != nil {
			log.Fatalf("Failed to seed combo item %s: %v", item.Product, err)
		}
	}
}

func seedOffers(db *sql.DB) {
	offers := []struct {
		Code     string
		Type     string
		Value    float64
		MinSpend sql.NullFloat64
		MaxOff   sql.NullFloat64
	}{
		{"BIENVENIDA10", "percentage", 10, sql.NullFloat64{}, sql.NullFloat64{Float64: 25, Valid: true}},
		{"ENVIOGRATIS", "fixed_amount", 5, sql.NullFloat64{Float64: 50, Valid: true}, sql.NullFloat64{}},
	}

	fmt.Println("Seeding Offers...")
	for _, o := range offers {
		_, err := db.Exec(`
			INSERT INTO offers (code, discount_type, discount_value, min_purchase_amount, max_discount_amount, active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			ON CONFLICT (code) DO UPDATE
			SET discount_type = EXCLUDED.discount_type,
			    discount_value = EXCLUDED.discount_value,
			    min_purchase_amount = EXCLUDED.min_purchase_amount,
			    max_discount_amount = EXCLUDED.max_discount_amount,
			    active = TRUE
		`, o.Code, o.Type, o.Value, o.MinSpend, o.MaxOff)
		if err != nil {
			log.Fatalf("Failed to seed offer %s: %v", o.Code, err)
		}
	}
}
