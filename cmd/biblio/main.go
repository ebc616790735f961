package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/biblio/internal/config"
	"github.com/naveenspark/biblio/internal/credential"
	"github.com/naveenspark/biblio/internal/gateway"
	"github.com/naveenspark/biblio/internal/guard"
	"github.com/naveenspark/biblio/internal/nav"
	"github.com/naveenspark/biblio/internal/session"
	"github.com/naveenspark/biblio/internal/token"
	"github.com/naveenspark/biblio/internal/tui"
	"github.com/naveenspark/biblio/pkg/client"
	"github.com/naveenspark/biblio/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// biblio holds the wiring shared by every command.
type biblio struct {
	cfg    *config.Config
	log    *slog.Logger
	creds  credential.Store
	codec  *token.Codec
	nav    *nav.Channel
	client *client.Client
}

func setup() (*biblio, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, closeLog, err := cfg.OpenLogger()
	if err != nil {
		return nil, nil, err
	}

	creds := credential.NewFileStore(cfg.TokenFile)
	navCh := nav.NewChannel()
	tr := gateway.New(creds, navCh,
		gateway.WithBasePath(cfg.BasePath()),
		gateway.WithPublicPaths(cfg.PublicPaths),
		gateway.WithLocator(navCh),
		gateway.WithLogger(log),
	)
	b := &biblio{
		cfg:    cfg,
		log:    log,
		creds:  creds,
		codec:  token.NewCodec(),
		nav:    navCh,
		client: client.New(cfg.APIURL, tr, cfg.Timeout),
	}
	return b, closeLog, nil
}

// newSession returns a fresh session over the shared credential slot.
func (b *biblio) newSession() *session.Store {
	return session.New(b.creds, b.codec, session.WithNavigator(b.nav), session.WithLogger(b.log))
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(stdout, "biblio "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(stdout)
		return nil
	case "", "login", "logout", "whoami":
	default:
		return fmt.Errorf("unknown command %q (see: biblio help)", cmd)
	}

	b, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck
	b.log.Debug("start", "command", cmd, "version", version, "api_url", b.cfg.APIURL)

	switch cmd {
	case "login":
		return b.runLogin(args[1:], stdin, stdout)
	case "logout":
		return b.runLogout(stdout)
	case "whoami":
		return b.runWhoami(stdout)
	}
	return b.runTUI()
}

func (b *biblio) runTUI() error {
	app := tui.NewApp(tui.Deps{
		Client:     b.client,
		NewSession: b.newSession,
		Guard:      guard.Default(),
		Nav:        b.nav,
		Version:    version,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// runLogin authenticates email with a password read from the first line
// of stdin.
func (b *biblio) runLogin(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return errors.New("usage: biblio login <email>  (password on stdin)")
	}
	email := strings.TrimSpace(args[0])
	if err := domain.ValidateEmail(email); err != nil {
		return fmt.Errorf("email: %w", err)
	}

	if f, ok := stdin.(*os.File); ok && isTerminal(f) {
		fmt.Fprint(stdout, "password: ")
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("empty password")
	}

	// A rejected password must not evict the credential already in the slot.
	b.nav.SetLocation(nav.Login)
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.Timeout)
	defer cancel()
	raw, err := b.client.Login(ctx, client.Credentials{Email: email, Password: password})
	switch {
	case errors.Is(err, client.ErrInactiveUser):
		return errors.New(client.InactiveUserMessage)
	case client.IsStatus(err, 401), client.IsStatus(err, 403):
		return errors.New("invalid email or password")
	case err != nil:
		return err
	}

	p, err := b.newSession().Login(raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Logged in as %s (%s)\n", p.Email, p.Role)
	return nil
}

func (b *biblio) runLogout(stdout io.Writer) error {
	s := b.newSession()
	s.Bootstrap()
	if !s.Current().Authenticated {
		// An expired credential is evicted by bootstrap; a malformed one
		// is left behind, so clear the slot anyway.
		if err := b.creds.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Already logged out.")
		return nil
	}
	if err := s.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Logged out.")
	return nil
}

func (b *biblio) runWhoami(stdout io.Writer) error {
	s := b.newSession()
	s.Bootstrap()
	cur := s.Current()
	if !cur.Authenticated {
		printGreeting(stdout)
		return nil
	}

	fmt.Fprintf(stdout, "%s  %s\n", cur.Principal.Email, cur.Role())
	if raw, ok, _ := b.creds.Load(); ok {
		if exp, ok := b.codec.ExpiresAt(raw); ok {
			fmt.Fprintf(stdout, "session expires %s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Minute))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.Timeout)
	defer cancel()
	u, err := b.client.CurrentUser(ctx)
	if err != nil {
		b.log.Warn("whoami: current user", "err", err)
		fmt.Fprintf(stdout, "server did not confirm the session: %v\n", err)
		return nil
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
