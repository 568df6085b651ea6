// seed_catalog carga en PostgreSQL el catálogo de productos exportado por el sistema
// de inventario (CSV ';' en UTF-8 o ISO-8859-1).
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.csv]
// Por defecto busca catalogo.csv en el directorio actual. Usa la misma configuración que la API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/infrastructure/catalogfile"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/farmacia-pos/pkg/config"
)

func main() {
	path := "catalogo.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if err := run(path); err != nil {
		fmt.Fprintf(os.Stderr, "seed_catalog: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	products, err := catalogfile.LoadFile(path)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	n, err := postgres.NewProductCatalog(tx).Upsert(ctx, products)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	fmt.Printf("Productos leídos: %d, filas afectadas: %d\n", len(products), n)
	return nil
}
