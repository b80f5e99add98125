package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/habitdesk/habitdesk-api/internal/core/domain"
	"github.com/habitdesk/habitdesk-api/internal/core/ports"
	mongodb "github.com/habitdesk/habitdesk-api/internal/infrastructure/db/mongo"
	redisdb "github.com/habitdesk/habitdesk-api/internal/infrastructure/db/redis"
	"github.com/habitdesk/habitdesk-api/internal/pkg/config"
	"github.com/habitdesk/habitdesk-api/internal/pkg/id"
)

var setAdminEmail string

var setAdminCmd = &cobra.Command{
	Use:   "set-admin",
	Short: "Promote a user to admin by email",
	Long:  "Assigns the admin role to the user with the given email and revokes their outstanding sessions so the next login carries the new claims.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if setAdminEmail == "" {
			return fmt.Errorf("--email is required")
		}

		return withStores(func(ctx context.Context, db *mongodriver.Database, cfg *config.Config) error {
			users := mongodb.NewUserRepository(db)
			user, err := users.FindByEmail(ctx, setAdminEmail)
			if err != nil {
				return err
			}
			if err := users.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
				return err
			}

			rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
			if err != nil {
				return fmt.Errorf("role updated but session revocation failed: %w", err)
			}
			defer rdb.Close()

			if _, err := redisdb.NewSessionStore(rdb).Bump(ctx, user.ID); err != nil {
				return fmt.Errorf("role updated but session revocation failed: %w", err)
			}

			fmt.Printf("%s is now admin (uid %s)\n", user.Email, user.ID)
			return nil
		})
	},
}

var syncUsersCmd = &cobra.Command{
	Use:   "sync-users",
	Short: "Re-derive therapist profile fields from used invites",
	Long:  "Walks every used invite and re-applies its grant (sub-types, license validity, contract reference) to the assigned user. Repairs profiles that drifted from their invite.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(func(ctx context.Context, db *mongodriver.Database, cfg *config.Config) error {
			invites := mongodb.NewInviteRepository(db)
			users := mongodb.NewUserRepository(db)

			used, err := invites.List(ctx, domain.InviteStatusUsed)
			if err != nil {
				return err
			}

			var synced, skipped int
			for _, inv := range used {
				if inv.AssignedUID == "" {
					skipped++
					continue
				}
				err := users.ApplyInviteGrant(ctx, inv.AssignedUID, ports.InviteGrant{
					TherapistTypes:    inv.GrantedSubTypes,
					LicenseValidUntil: inv.LicenseValidUntil,
					ContractRef:       inv.ContractRef,
					InviteID:          inv.ID,
				})
				switch err {
				case nil:
					synced++
				case domain.ErrUserNotFound:
					fmt.Printf("skipped invite %s: assigned user %s not found\n", inv.ID, inv.AssignedUID)
					skipped++
				default:
					return err
				}
			}

			fmt.Printf("synced %d users, skipped %d invites\n", synced, skipped)
			return nil
		})
	},
}

var seedDataCmd = &cobra.Command{
	Use:   "seed-data",
	Short: "Seed the therapist-type catalog and demo templates",
	Long:  "Inserts the default therapist sub-types and a demo task template per type. Existing entries are left untouched.",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := map[string]string{
			"physiotherapie": "Physiotherapie",
			"ergotherapie":   "Ergotherapie",
			"logopaedie":     "Logopädie",
			"psychotherapie": "Psychotherapie",
		}

		return withStores(func(ctx context.Context, db *mongodriver.Database, cfg *config.Config) error {
			types := mongodb.NewTherapistTypeRepository(db)
			now := time.Now().UTC()
			for name, display := range defaults {
				err := types.Create(ctx, &domain.TherapistType{
					ID:          id.New(),
					Name:        name,
					DisplayName: display,
					CreatedAt:   now,
				})
				switch err {
				case nil:
					fmt.Printf("created type %s\n", name)
				case domain.ErrTherapistTypeExists:
					fmt.Printf("skipped type %s (exists)\n", name)
					continue
				default:
					return err
				}

				// Demo template only alongside a freshly created type, so
				// rerunning the command never duplicates templates.
				tmpl := &domain.TaskTemplate{
					ID:            id.New(),
					Title:         fmt.Sprintf("%s: Tagesübung", display),
					Description:   "Demo-Aufgabe aus seed-data.",
					TherapistType: name,
					TaskType:      domain.TaskTypeTimer,
					Config:        domain.TimerConfig{DurationSeconds: 300, Countdown: true},
					CreatedBy:     "seed-data",
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := mongodb.NewTaskTemplateRepository(db).Create(ctx, tmpl); err != nil {
					return err
				}
				fmt.Printf("created demo template for %s\n", name)
			}
			return nil
		})
	},
}

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "List all users with their roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(func(ctx context.Context, db *mongodriver.Database, cfg *config.Config) error {
			users, err := mongodb.NewUserRepository(db).ListAll(ctx)
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Printf("%-36s  %-10s  %s\n", u.ID, u.Role, u.Email)
			}
			return nil
		})
	},
}

func init() {
	setAdminCmd.Flags().StringVar(&setAdminEmail, "email", "", "email of the user to promote")
}

// withStores loads config, connects to MongoDB, and runs fn with a
// bounded context.
func withStores(fn func(ctx context.Context, db *mongodriver.Database, cfg *config.Config) error) error {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(ctx) }()

	return fn(ctx, db, cfg)
}
