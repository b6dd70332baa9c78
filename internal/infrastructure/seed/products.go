// Package seed lee catálogos de productos para la carga inicial.
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
)

// Options formato del archivo.
type Options struct {
	Comma  rune // separador; 0 = ','
	Latin1 bool // el archivo viene en ISO-8859-1 (exportes de Excel en español)
}

// ParseProducts lee un CSV con cabecera. Columnas reconocidas (sin distinguir mayúsculas):
// name, description, category, price, quantity, minimum_stock. name y price son obligatorias.
// Las filas vacías se ignoran; los errores indican la línea del archivo.
func ParseProducts(r io.Reader, opts Options) ([]dto.CreateProductRequest, error) {
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catálogo vacío")
		}
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"name", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	var out []dto.CreateProductRequest
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if field("name") == "" && field("price") == "" {
			continue
		}

		p, err := parseRow(field)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func parseRow(field func(string) string) (dto.CreateProductRequest, error) {
	p := dto.CreateProductRequest{
		Name:        field("name"),
		Description: field("description"),
		Category:    field("category"),
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(field("price"), ",", "."))
	if err != nil {
		return p, fmt.Errorf("price %q: %w", field("price"), err)
	}
	p.Price = price

	if v := field("quantity"); v != "" {
		if p.Quantity, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("quantity %q: %w", v, err)
		}
	}
	if v := field("minimum_stock"); v != "" {
		minimum, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("minimum_stock %q: %w", v, err)
		}
		p.MinimumStock = &minimum
	}
	return p, nil
}
