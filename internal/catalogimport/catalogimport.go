// Package catalogimport bulk-loads dishes from gzipped NDJSON files, one dish
// create request per line, read from S3 or the local file system.
package catalogimport

import (
	"context"

	"sky-catalog/internal/model"
)

// Record is one line of an import file. Err is set when the line could not be
// decoded; such records are reported as failures and never created.
type Record struct {
	Line    int
	Request model.DishRequest
	Err     error
}

// Loader reads the records of an import file.
type Loader interface {
	// Load reads a gzipped NDJSON file and returns its non-blank lines in order.
	Load(ctx context.Context, path string) ([]Record, error)
}

// Creator creates one dish with its flavors. service.DishService satisfies it.
type Creator interface {
	CreateWithFlavors(ctx context.Context, req *model.DishRequest) (int64, error)
}
