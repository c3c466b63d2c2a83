package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edvin/buildcrm/internal/core"
	"github.com/edvin/buildcrm/internal/db"
	"github.com/edvin/buildcrm/internal/events"
	"github.com/edvin/buildcrm/seeds/catalog"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the plan and module catalog and create the super admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.ServiceName+"-seed")
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		services, err := core.NewServices(pool, nil, events.Nop{}, core.ServicesConfig{
			JWTSecret: cfg.JWTSecret,
			JWTIssuer: cfg.JWTIssuer,
			JWTTTL:    cfg.JWTTTL,
		})
		if err != nil {
			return err
		}
		return seedAll(ctx, services)
	},
}

// seedAll upserts the embedded catalog and makes sure the platform
// administrator exists. It is safe to run on every start.
func seedAll(ctx context.Context, services *core.Services) error {
	c, err := catalog.Load()
	if err != nil {
		return err
	}
	if err := services.Entitlement.SeedCatalog(ctx, c.Plans, c.Modules); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info().Int("plans", len(c.Plans)).Int("modules", len(c.Modules)).Msg("catalog seeded")

	created, err := services.Identity.SeedSuperAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword)
	if err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}
	if created {
		logger.Info().Str("email", cfg.SuperAdminEmail).Msg("super admin created")
	}
	return nil
}
