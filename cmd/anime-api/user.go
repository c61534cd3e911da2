package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deppfellow/anime-api/internal/database"
	"github.com/deppfellow/anime-api/internal/lib/utils"
	"github.com/deppfellow/anime-api/internal/model"
	"github.com/deppfellow/anime-api/internal/repository"
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user that can call the API",
	Long: `Create a user with a bcrypt hashed password.

Roles are USER and ADMIN; an ADMIN is always given USER as well. Only ADMIN
users may delete animes or use the admin lookup route.`,
	Example: `  anime-api user create --name "Jane" --username jane --password s3cret! --role ADMIN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		roles, _ := cmd.Flags().GetStringSlice("role")
		if name == "" {
			name = username
		}

		cfg, loggerService, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer loggerService.Shutdown()

		db, err := database.New(cfg, log, loggerService)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		srv := &server.Server{Config: cfg, Logger: log, LoggerService: loggerService, DB: db}
		auth := service.NewAuthService(srv, repository.NewUserRepository(db, *log))

		input := model.CreateUserInput{
			Name:     name,
			Username: username,
			Password: password,
		}
		for _, role := range roles {
			input.Roles = append(input.Roles, model.Role(role))
		}

		user, err := auth.CreateUser(cmd.Context(), input)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return utils.PrintJSON(cmd.OutOrStdout(), user)
	},
}

func init() {
	userCreateCmd.Flags().String("name", "", "display name (defaults to the username)")
	userCreateCmd.Flags().String("username", "", "login name (unique)")
	userCreateCmd.Flags().String("password", "", "plain text password, at least 6 characters")
	userCreateCmd.Flags().StringSlice("role", []string{string(model.RoleUser)}, "role to grant (USER or ADMIN); repeatable")

	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}
