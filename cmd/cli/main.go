// Command shipctl is the operator CLI for the shipment desk: password hashing,
// user provisioning, and an HTTP client for the shipment API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/cargodesk/internal/crypto"
	"github.com/and161185/cargodesk/internal/repository/postgres"
	"github.com/and161185/cargodesk/internal/request"
	"github.com/and161185/cargodesk/internal/service"
)

// ---- utils ----

func readAll(stdin io.Reader, p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(p)
}

func writeJSON(w io.Writer, raw []byte) {
	_, _ = w.Write(raw)
	if len(raw) == 0 || raw[len(raw)-1] != '\n' {
		_, _ = io.WriteString(w, "\n")
	}
}

// sqlQuote renders s as a single-quoted SQL literal.
func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

const usageText = `shipctl CLI
Usage:
  shipctl [-server URL] <cmd> [args]

Commands:
  version
  hash     -p <password> [-email <email> -tenant <id>]   (prints hash, or an INSERT when -email is set)
  verify   -hash <encoded> -p <password>
  adduser  -dsn <postgres dsn> -email <email> -p <password> [-tenant <id>]
  login    -email <email> -p <password> [-tenant <id>]   (saves token)
  create   -file <shipment.json | ->
  list     [-page N] [-limit N] [-search text]
  get      -id <uuid>
`

var errUsage = errors.New("usage")

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	cancel()
	switch {
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run dispatches subcommands.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	global := flag.NewFlagSet("shipctl", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	server := global.String("server", envOr("SHIPCTL_SERVER", "http://localhost:8080"), "API base URL")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() < 1 {
		return errUsage
	}
	cmd, rest := global.Arg(0), global.Args()[1:]

	switch cmd {

	case "version":
		fmt.Fprintf(stdout, "shipctl %s (%s)\n", version, buildDate)
		return nil

	case "hash":
		fs := flag.NewFlagSet("hash", flag.ContinueOnError)
		p := fs.String("p", "", "password")
		email := fs.String("email", "", "email (emit INSERT statement)")
		tenant := fs.String("tenant", "", "tenant id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *p == "" {
			return errors.New("need -p")
		}
		h, err := pkgcrypto.HashPassword(*p)
		if err != nil {
			return err
		}
		if *email == "" {
			fmt.Fprintln(stdout, h)
			return nil
		}
		if *tenant == "" {
			fmt.Fprintf(stdout, "INSERT INTO users (email, password) VALUES (%s, %s);\n", sqlQuote(*email), sqlQuote(h))
			return nil
		}
		fmt.Fprintf(stdout, "INSERT INTO users (email, password, tenant_id) VALUES (%s, %s, %s);\n",
			sqlQuote(*email), sqlQuote(h), sqlQuote(*tenant))
		return nil

	case "verify":
		fs := flag.NewFlagSet("verify", flag.ContinueOnError)
		h := fs.String("hash", "", "encoded argon2id hash")
		p := fs.String("p", "", "password")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *h == "" || *p == "" {
			return errors.New("need -hash and -p")
		}
		ok, err := pkgcrypto.VerifyPassword(*h, *p)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("password does NOT match hash")
		}
		fmt.Fprintln(stdout, "ok: password matches hash")
		return nil

	case "adduser":
		fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
		dsn := fs.String("dsn", os.Getenv("DATABASE_DSN"), "PostgreSQL DSN")
		email := fs.String("email", "", "email")
		p := fs.String("p", "", "password")
		tenant := fs.String("tenant", "", "tenant id (server default when empty)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *dsn == "" {
			return errors.New("need -dsn or DATABASE_DSN")
		}
		db, err := postgres.New(ctx, *dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		auth := service.NewAuthService(postgres.NewUserRepo(db), nil, 0, nil)
		sum, err := auth.CreateUser(ctx, request.NewUser{Email: *email, Password: *p, TenantID: *tenant})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s %s %s\n", sum.ID, sum.Email, sum.TenantID)
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		email := fs.String("email", "", "email")
		p := fs.String("p", "", "password")
		tenant := fs.String("tenant", "", "tenant id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *email == "" || *p == "" {
			return errors.New("need -email and -p")
		}
		resp, err := newAPIClient(*server, "").login(ctx, *email, *p, *tenant)
		if err != nil {
			return err
		}
		exp, err := tokenExpiry(resp.Token)
		if err != nil {
			exp = time.Now().Add(24 * time.Hour)
		}
		if err := saveToken(tokenFile{
			Server:      *server,
			AccessToken: resp.Token,
			ExpiresAt:   exp,
			Email:       resp.User.Email,
			TenantID:    resp.User.TenantID,
		}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "ok: %s (tenant %s) until %s\n", resp.User.Email, resp.User.TenantID, exp.Format(time.RFC3339))
		return nil

	case "create", "list", "get":
		tf, err := loadToken()
		if err != nil {
			return err
		}
		base := *server
		if tf.Server != "" && !flagSet(global, "server") {
			base = tf.Server
		}
		cli := newAPIClient(base, tf.AccessToken)
		return runAuthed(ctx, cli, cmd, rest, stdin, stdout)

	default:
		return errUsage
	}
}

// runAuthed handles commands that need a saved session token.
func runAuthed(ctx context.Context, cli *apiClient, cmd string, rest []string, stdin io.Reader, stdout io.Writer) error {
	switch cmd {
	case "create":
		fs := flag.NewFlagSet("create", flag.ContinueOnError)
		file := fs.String("file", "", "shipment JSON file, - for stdin")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *file == "" {
			return errors.New("need -file")
		}
		payload, err := readAll(stdin, *file)
		if err != nil {
			return err
		}
		out, err := cli.createShipment(ctx, payload)
		if err != nil {
			return err
		}
		writeJSON(stdout, out)

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		page := fs.Int("page", 0, "page number")
		limit := fs.Int("limit", 0, "page size")
		search := fs.String("search", "", "substring over awb/sender/receiver/origin/destination")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		out, err := cli.listShipments(ctx, *page, *limit, *search)
		if err != nil {
			return err
		}
		writeJSON(stdout, out)

	case "get":
		fs := flag.NewFlagSet("get", flag.ContinueOnError)
		id := fs.String("id", "", "shipment id (uuid)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("need -id")
		}
		out, err := cli.getShipment(ctx, *id)
		if err != nil {
			return err
		}
		writeJSON(stdout, out)
	}
	return nil
}

func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
