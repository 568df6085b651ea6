// terminal_token emite el Bearer Token con el que una caja opera contra la API.
//
// Uso: go run ./cmd/terminal_token -user u-001 -terminal CAJA1 -role cajero
// Firma con JWT_SECRET y JWT_ISSUER de la configuración de la API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/jwt"
)

func main() {
	user := flag.String("user", "", "identificador del cajero")
	terminal := flag.String("terminal", "", "identificador de la caja (ej. CAJA1)")
	role := flag.String("role", jwt.RoleCajero, "cajero | supervisor | admin")
	flag.Parse()

	if err := run(*user, *terminal, *role); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_token: %v\n", err)
		os.Exit(1)
	}
}

func run(user, terminal, role string) error {
	switch role {
	case jwt.RoleCajero, jwt.RoleSupervisor, jwt.RoleAdmin:
	default:
		return fmt.Errorf("rol desconocido %q", role)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	token, err := jwt.Generate(cfg.JWT.Secret, jwt.Identity{
		UserID:     user,
		TerminalID: terminal,
		Role:       role,
	}, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
