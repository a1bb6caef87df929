package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var userEmail string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var addUserCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	Long:  `Create a user interactively. The password is read from the terminal without echo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(userEmail)
		if email == "" {
			fmt.Print("Email: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read email: %w", err)
			}
			email = strings.TrimSpace(line)
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}

		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.close()

		ctx := context.Background()
		app, err := newApplication(ctx, deps.Config, deps.Gorm, deps.DB, deps.Logger)
		if err != nil {
			return err
		}

		result, err := app.Auth.Register(ctx, auth.RegisterDTO{
			Email:           email,
			Password:        password,
			ConfirmPassword: confirm,
		})
		if err != nil {
			return err
		}

		fmt.Println("Created user", result.User.Email, "with id", result.User.ID)
		return app.Bus.Wait(ctx)
	},
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password prompt needs a terminal")
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func init() {
	addUserCmd.Flags().StringVar(&userEmail, "email", "", "email of the new user")
	userCmd.AddCommand(addUserCmd)
}
