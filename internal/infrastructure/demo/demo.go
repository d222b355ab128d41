// Package demo ships a built-in product catalog used when no data file is configured.
package demo

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pension/backend/internal/domain/product"
)

// Source names the demo catalog in logs and load results
const Source = "builtin:demo"

//go:embed products.yaml
var productsYAML []byte

type dataset struct {
	Products []product.RawRow `yaml:"products"`
}

// Rows decodes the embedded dataset. Each call returns fresh rows.
func Rows() ([]product.RawRow, error) {
	var ds dataset
	if err := yaml.Unmarshal(productsYAML, &ds); err != nil {
		return nil, fmt.Errorf("decode demo dataset: %w", err)
	}
	return ds.Products, nil
}
