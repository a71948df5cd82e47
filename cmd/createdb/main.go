// Command createdb prepares the heroes database: schema migrations, seed data, spreadsheet
// imports and user accounts.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/helper"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/pkg/seed"
	"heroes/heroes_go_service/storage"
	"heroes/heroes_go_service/storage/postgres"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "createdb",
		Short:         "Create and populate the heroes database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logger.LevelInfo, "Log level (debug, info, warn, error)")

	newLog := func() logger.LoggerI { return logger.NewLogger("createdb", logLevel) }

	cmd.AddCommand(
		migrateCmd(newLog),
		seedCmd(newLog),
		importHeroesCmd(newLog),
		createUserCmd(newLog),
	)

	return cmd
}

// withStorage runs fn against a migrated postgres store.
func withStorage(ctx context.Context, log logger.LoggerI, fn func(storage.StorageI) error) error {
	cfg := config.Load()
	cfg.MigrateOnStart = true

	strg, err := postgres.NewPostgres(ctx, cfg, log)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer strg.CloseDB()

	return fn(strg)
}

func migrateCmd(newLog func() logger.LoggerI) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLog()
			defer logger.Cleanup(log)

			return postgres.Migrate(config.Load(), log)
		},
	}
}

func seedCmd(newLog func() logger.LoggerI) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users and replace all heroes with the seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLog()
			defer logger.Cleanup(log)

			data, err := seed.Default()
			if file != "" {
				data, err = seed.Load(file)
			}
			if err != nil {
				return err
			}

			return withStorage(cmd.Context(), log, func(strg storage.StorageI) error {
				return seed.Apply(cmd.Context(), strg, data, log)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed YAML file (defaults to the built-in seed)")

	return cmd
}

func importHeroesCmd(newLog func() logger.LoggerI) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import-heroes",
		Short: "Append heroes from an xlsx spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLog()
			defer logger.Cleanup(log)

			heroes, err := seed.ReadHeroesXLSX(file)
			if err != nil {
				return err
			}

			return withStorage(cmd.Context(), log, func(strg storage.StorageI) error {
				n, err := seed.ImportHeroes(cmd.Context(), strg, heroes, log)
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d heroes\n", n)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&file, "xlsx", "", "Spreadsheet with a header row: name, alterEgo, power, rating, powerDate")
	_ = cmd.MarkFlagRequired("xlsx")

	return cmd
}

func createUserCmd(newLog func() logger.LoggerI) *cobra.Command {
	var (
		username   string
		firstName  string
		lastName   string
		theme      string
		privileges []string
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user and its login; the password is prompted for",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLog()
			defer logger.Cleanup(log)

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			if err := helper.ValidPassword(password); err != nil {
				return err
			}

			for i, p := range privileges {
				privileges[i] = strings.ToUpper(strings.TrimSpace(p))
			}

			return withStorage(cmd.Context(), log, func(strg storage.StorageI) error {
				user, err := strg.User().Create(cmd.Context(), &models.CreateUserRequest{
					FirstName:      firstName,
					LastName:       lastName,
					PreferredTheme: theme,
					Privileges:     privileges,
				})
				if err != nil {
					return err
				}

				err = strg.LoginInfo().Create(cmd.Context(), &models.LoginInfo{
					Username: username,
					Password: password,
					UserID:   user.ID,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "created user %s with id %d\n", username, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "Preferred UI theme")
	cmd.Flags().StringSliceVar(&privileges, "privilege", []string{config.PrivilegeView}, "Privileges, repeatable (VIEW, ADMIN)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// readPassword prompts twice without echo on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var password string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &password); err != nil {
			return "", errors.Wrap(err, "read password")
		}
		return password, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
