// Command sheetdesk-members manages the member records that gate /sw/typo.
//
//	sheetdesk-members put <email> <docId>
//	sheetdesk-members delete <email>
//	sheetdesk-members list
//	sheetdesk-members seed <file.json>
//
// The application defaults to TYPO and can be changed with -app.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ryanbastic/go-sheetdesk/internal/storage"
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := storage.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	store := storage.NewPostgresStore(pool, 5*time.Second)
	if err := run(ctx, os.Args[1:], store, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

var errUsage = errors.New("usage: sheetdesk-members [-app APP] put <email> <docId> | delete <email> | list | seed <file.json>")

func run(ctx context.Context, args []string, store storage.MemberStore, out io.Writer) error {
	fs := flag.NewFlagSet("sheetdesk-members", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	appID := fs.String("app", storage.AppTypo, "application id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	args = fs.Args()
	if len(args) == 0 {
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; {
	case cmd == "put" && len(rest) == 2:
		m, err := store.PutMember(ctx, storage.Member{AppID: *appID, Email: rest[0], DocID: rest[1]})
		if err != nil {
			return fmt.Errorf("put member: %w", err)
		}
		fmt.Fprintf(out, "%s %s -> %s\n", m.AppID, m.Email, m.DocID)
		return nil

	case cmd == "delete" && len(rest) == 1:
		if err := store.DeleteMember(ctx, *appID, rest[0]); err != nil {
			return fmt.Errorf("delete member: %w", err)
		}
		fmt.Fprintf(out, "deleted %s %s\n", *appID, rest[0])
		return nil

	case cmd == "list" && len(rest) == 0:
		members, err := store.ListMembers(ctx, *appID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "EMAIL\tDOC\tCREATED")
		for _, m := range members {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Email, m.DocID, m.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()

	case cmd == "seed" && len(rest) == 1:
		return seed(ctx, rest[0], *appID, store, out)

	default:
		return errUsage
	}
}

// seed loads [{"email": ..., "doc_id": ...}, ...] and upserts every entry.
func seed(ctx context.Context, path, appID string, store storage.MemberStore, out io.Writer) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var members []storage.Member
	if err := json.Unmarshal(b, &members); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	fmt.Fprintf(out, "Seeding %d members into %s...\n", len(members), appID)
	for _, m := range members {
		if m.AppID == "" {
			m.AppID = appID
		}
		if _, err := store.PutMember(ctx, m); err != nil {
			return fmt.Errorf("seed %s: %w", m.Email, err)
		}
		fmt.Fprintf(out, "  [member] %s -> %s\n", m.Email, m.DocID)
	}
	return nil
}
