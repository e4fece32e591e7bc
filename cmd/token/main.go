// Command token emite un JWT firmado con JWT_SECRET para pruebas locales de la API.
//
//	go run ./cmd/token -user ana -role operator
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/warehouse-ledger/pkg/config"
	"github.com/jhoicas/warehouse-ledger/pkg/jwt"
)

func main() {
	user := flag.String("user", "local-admin", "user_id del token")
	role := flag.String("role", jwt.RoleAdmin, "rol: admin | operator | viewer")
	exp := flag.Int("exp", 0, "minutos de vigencia (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	switch *role {
	case jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer:
	default:
		fmt.Fprintf(os.Stderr, "rol %q no soportado\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	minutes := cfg.JWT.Expiration
	if *exp > 0 {
		minutes = *exp
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, minutes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
