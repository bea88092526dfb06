//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"sky-catalog/internal/model"

	"github.com/shopspring/decimal"
)

// generateSampleDishes writes a gzipped NDJSON import file for catalog-import.
// The last two records are rejected on import: one is not valid JSON, the
// other has a negative price.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	dishes := []model.DishRequest{
		{
			Name:       "Kung Pao Chicken",
			CategoryID: 7,
			Price:      decimal.RequireFromString("38.00"),
			Status:     model.StatusOnSale,
			Flavors: []model.FlavorRequest{
				{Name: "spice", Values: []string{"mild", "medium", "hot"}},
				{Name: "peanuts", Values: []string{"yes", "no"}},
			},
		},
		{
			Name:       "Mapo Tofu",
			CategoryID: 7,
			Price:      decimal.RequireFromString("18.00"),
			Status:     model.StatusOnSale,
			Flavors: []model.FlavorRequest{
				{Name: "spice", Values: []string{"numbing", "hot"}},
			},
		},
		{
			Name:       "Twice Cooked Pork",
			CategoryID: 7,
			Price:      decimal.RequireFromString("42.50"),
			Status:     model.StatusOffSale,
		},
		{
			Name:        "Steamed Rice",
			CategoryID:  11,
			Price:       decimal.RequireFromString("2.00"),
			Status:      model.StatusOnSale,
			Description: "Jasmine rice",
		},
		{
			Name:       "Sour Plum Drink",
			CategoryID: 12,
			Price:      decimal.RequireFromString("6.00"),
			Status:     model.StatusOnSale,
			Flavors: []model.FlavorRequest{
				{Name: "ice", Values: []string{"none", "less", "normal"}},
				{Name: "sugar", Values: []string{"none", "half", "full"}},
			},
		},
		{
			Name:       "Broken Price Dish",
			CategoryID: 7,
			Price:      decimal.RequireFromString("-1"),
		},
	}

	filePath := filepath.Join(dataDir, "dishes.ndjson.gz")
	if err := writeImportFile(filePath, dishes); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d records\n", filePath, len(dishes)+1)
	fmt.Println("\nImport with: go run ./cmd/catalog-import -file", filePath)
}

func writeImportFile(filePath string, dishes []model.DishRequest) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for i, dish := range dishes {
		if i == len(dishes)-1 {
			if _, err := fmt.Fprintln(gzipWriter, `{"name": "Truncated`); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
		if err := encoder.Encode(dish); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}
