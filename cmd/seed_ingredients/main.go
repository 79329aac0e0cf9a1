package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"

	"github.com/pageza/foodgram-v2/backend/config"
	"github.com/pageza/foodgram-v2/backend/internal/database"
	"github.com/pageza/foodgram-v2/backend/internal/models"
)

// Imports the ingredient catalog from a CSV file with name and
// measurement_unit columns. The import is idempotent on the unique name, so
// re-running it only adds missing entries.
func main() {
	path := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		log.Fatalf("Failed to read CSV header: %v", err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}
	nameCol, ok := columns["name"]
	if !ok {
		log.Fatalf("CSV file has no name column")
	}
	unitCol, ok := columns["measurement_unit"]
	if !ok {
		log.Fatalf("CSV file has no measurement_unit column")
	}

	imported := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read CSV record: %v", err)
		}

		ingredient := models.BaseIngredient{
			Name:            record[nameCol],
			MeasurementUnit: record[unitCol],
		}
		result := db.Where("name = ?", ingredient.Name).FirstOrCreate(&ingredient)
		if result.Error != nil {
			log.Fatalf("Failed to import %q: %v", ingredient.Name, result.Error)
		}
		imported += int(result.RowsAffected)
	}

	log.Printf("Imported %d new ingredients", imported)
}
