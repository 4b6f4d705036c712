package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/repository"
	"github.com/noah-isme/court-facilities-api/internal/service"
	"github.com/noah-isme/court-facilities-api/pkg/database"
)

const passwordEnv = "FACILITIESCTL_PASSWORD"

func newCreateUserCmd() *cobra.Command {
	var req service.CreateUserRequest
	var role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account",
		Long:  "Creates an active account. The password comes from --password or the " + passwordEnv + " environment variable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = os.Getenv(passwordEnv)
			}
			if req.Password == "" {
				return fmt.Errorf("password required: pass --password or set %s", passwordEnv)
			}
			req.Role = models.UserRole(role)

			cfg, logr, err := bootstrap()
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck

			db, err := database.NewPostgres(cmd.Context(), cfg.Database, logr)
			if err != nil {
				return err
			}
			defer db.Close()

			auth := service.NewAuthService(repository.NewUserRepository(db), nil, logr, service.AuthConfig{
				AccessTokenSecret: cfg.JWT.Secret,
				Issuer:            cfg.JWT.Issuer,
			})
			user, err := auth.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", user.Email, user.ID, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&role, "role", string(models.RoleViewer), "ADMIN, FACILITIES_MANAGER or VIEWER")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prefer "+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
