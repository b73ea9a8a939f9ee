// seed genera un script SQL para poblar el catálogo de productos a partir
// del CSV exportado del sistema anterior (Productos.csv, ISO-8859-1,
// separado por punto y coma: codigo;nombre;categoria).
//
// Uso: go run ./cmd/seed [ruta/Productos.csv]
// Por defecto busca Productos.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalog.sql
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	csvPath := "Productos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// El export del sistema anterior viene en ISO-8859-1 (acentos).
	reader := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	// Filas únicas por nombre; el export trae duplicados por sede.
	type product struct{ code, name, category string }
	seen := make(map[string]product)
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue // cabecera o fila corta
		}
		name := strings.TrimSpace(row[1])
		if name == "" {
			continue
		}
		category := ""
		if len(row) > 2 {
			category = strings.TrimSpace(row[2])
		}
		seen[strings.ToLower(name)] = product{
			code:     strings.TrimSpace(row[0]),
			name:     name,
			category: category,
		}
	}

	// Orden estable por nombre para que el script sea reproducible.
	var names []string
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Catálogo de productos del banco de alimentos\n")
	out.WriteString("-- Generado desde Productos.csv (export del sistema anterior)\n\n")
	out.WriteString("INSERT INTO products (id, name, category) VALUES\n")
	for i, k := range names {
		p := seen[k]
		sep := ","
		if i == len(names)-1 {
			sep = ""
		}
		fmt.Fprintf(out, "  ('%s', '%s', '%s')%s\n",
			uuid.New().String(), escapeSQL(p.name), escapeSQL(p.category), sep)
	}
	out.WriteString("ON CONFLICT (name) DO UPDATE SET category = EXCLUDED.category;\n")

	fmt.Printf("Generado %s: %d productos\n", outPath, len(names))
}

// escapeSQL duplica comillas simples para literales SQL.
func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// findModuleRoot sube directorios hasta encontrar go.mod.
func findModuleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}
