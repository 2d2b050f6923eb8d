package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tinytelemetry/orbit/internal/authclient"
)

func newLoginCmd(configPath *string) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd, *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			in := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if username == "" {
				if username, err = in.line("Username: "); err != nil {
					return err
				}
			}
			password, err := in.secret("Password: ")
			if err != nil {
				return err
			}
			if strings.TrimSpace(username) == "" || password == "" {
				return errors.New("username and password are required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.HTTPTimeout)
			defer cancel()
			rec, err := rt.auth.Login(ctx, strings.TrimSpace(username), password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := rt.gate.Login(rec); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			rt.logger.Info().Str("user", rec.Username).Msg("logged in")
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", rec.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when omitted)")
	return cmd
}

func newLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd, *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			token, tokErr := rt.gate.Token()
			if err := rt.gate.Logout(); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}
			if tokErr == nil {
				ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.HTTPTimeout)
				defer cancel()
				if err := rt.auth.Logout(ctx, token); err != nil {
					rt.logger.Warn().Err(err).Msg("server logout")
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user as the service sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd, *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			token, err := rt.gate.Token()
			if err != nil {
				return errors.New("not logged in (run orbit-tui login)")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), rt.cfg.HTTPTimeout)
			defer cancel()
			claims, err := rt.auth.Profile(ctx, token)
			if authclient.IsUnauthorized(err) {
				_ = rt.gate.Logout()
				return errors.New("session expired (run orbit-tui login)")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", claims.Username)
			if claims.ExpiresAt != nil {
				fmt.Fprintf(out, "  expires %s\n", claims.ExpiresAt.Time.Local().Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "  session %s\n", shortenPath(rt.store.Path()))
			return nil
		},
	}
}

// prompter reads answers from a terminal or, when piped, one per line.
type prompter struct {
	in   io.Reader
	r    *bufio.Reader
	echo io.Writer
}

func newPrompter(in io.Reader, echo io.Writer) *prompter {
	return &prompter{in: in, r: bufio.NewReader(in), echo: echo}
}

func (p *prompter) tty() (*os.File, bool) {
	f, ok := p.in.(*os.File)
	return f, ok && term.IsTerminal(int(f.Fd()))
}

func (p *prompter) line(prompt string) (string, error) {
	if _, ok := p.tty(); ok {
		fmt.Fprint(p.echo, prompt)
	}
	s, err := p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *prompter) secret(prompt string) (string, error) {
	f, ok := p.tty()
	if !ok {
		return p.line(prompt)
	}
	fmt.Fprint(p.echo, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.echo)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
