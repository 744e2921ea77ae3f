// admin runs one-off maintenance against the configured store.
//
//	go run ./cmd/admin init-schema
//	go run ./cmd/admin list-users -limit 20
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ErlanBelekov/superrichie/config"
	"github.com/ErlanBelekov/superrichie/internal/bootstrap"
	"github.com/ErlanBelekov/superrichie/internal/infrastructure/postgres"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <init-schema|list-users> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadStore()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.StoreBackend == "memory" {
		log.Fatal("admin: STORE_BACKEND=memory has nothing to administer")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stores, err := bootstrap.OpenStores(ctx, cfg, bootstrap.NewLogger("local", slog.LevelWarn))
	if err != nil {
		log.Fatalf("stores: %v", err)
	}
	defer stores.Close()

	switch os.Args[1] {
	case "init-schema":
		err = initSchema(ctx, stores)
	case "list-users":
		fs := flag.NewFlagSet("list-users", flag.ExitOnError)
		limit := fs.Int("limit", 0, "show at most this many users (0 = all)")
		_ = fs.Parse(os.Args[2:])
		err = listUsers(ctx, stores, *limit)
	default:
		usage()
	}
	if err != nil {
		stores.Close()
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func initSchema(ctx context.Context, stores *bootstrap.Stores) error {
	switch {
	case stores.Pool != nil:
		if err := postgres.Migrate(ctx, stores.Pool); err != nil {
			return err
		}
	case stores.Mosaic != nil:
		if err := stores.Mosaic.InitSchema(ctx, postgres.Schema); err != nil {
			return err
		}
	default:
		return fmt.Errorf("no SQL store configured")
	}
	fmt.Printf("Schema applied (%d statements)\n", len(postgres.Schema))
	return nil
}

func listUsers(ctx context.Context, stores *bootstrap.Stores, limit int) error {
	users, err := stores.Users.List(ctx)
	if err != nil {
		return err
	}
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tCREATED\tLAST LOGIN")
	for _, u := range users {
		last := "never"
		if u.LastLogin != nil {
			last = u.LastLogin.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.CreatedAt.Format(time.RFC3339), last)
	}
	return w.Flush()
}
