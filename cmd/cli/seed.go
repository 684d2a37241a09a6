package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourorg/imnotdurnk/internal/models"
	"github.com/yourorg/imnotdurnk/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a verified demo user",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		users := repository.NewUserRepository(db)
		exists, err := users.ExistsByEmail(ctx, seedEmail)
		if err != nil {
			return err
		}
		if exists {
			warn("user %s already exists", seedEmail)
			return nil
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if _, err := users.Create(ctx, &models.User{
			Email:        seedEmail,
			PasswordHash: string(hash),
			Name:         "Demo",
			Nickname:     "demo",
			SojuUnit:     1,
			SojuAmount:   1,
			BeerUnit:     1,
			BeerAmount:   1,
		}); err != nil {
			return err
		}
		if err := users.MarkVerified(ctx, seedEmail); err != nil {
			return err
		}
		success("created %s with password %q", seedEmail, seedPassword)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "demo@example.com", "demo user email")
	seedCmd.Flags().StringVar(&seedPassword, "password", "demo1234", "demo user password")
}
