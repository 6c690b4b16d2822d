package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/showlog/showlogbackend/handlers"
	"github.com/showlog/showlogbackend/repository"
)

// withGroups opens the database and runs fn against the alias group store.
func (a *app) withGroups(fn func(db *gorm.DB, groups *repository.AliasGroupRepository) error) error {
	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)
	return fn(db, repository.NewAliasGroupRepository(db))
}

// resolveBand accepts an exact band name or a band id. Names win so a band called
// "1984" is still found by name.
func resolveBand(db *gorm.DB, ref string) (uint, error) {
	band, err := repository.NewBandRepository(db).GetByName(ref)
	if err == nil {
		return band.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}
	if id, parseErr := strconv.ParseUint(ref, 10, 64); parseErr == nil && id > 0 {
		return uint(id), nil
	}
	return 0, err
}

func groupsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List and edit band alias groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGroups(func(_ *gorm.DB, groups *repository.AliasGroupRepository) error {
				list, err := groups.ListGroups()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(w, "No band groups.")
					return nil
				}
				for _, g := range list {
					fmt.Fprintf(w, "%s [%d]: %d shows\n", g.Primary.Name, g.Primary.ID, g.EffectiveShowCount)
					fmt.Fprintf(w, "  %s: %d\n", g.Primary.Name, g.Primary.ShowCount)
					for _, alias := range g.Aliases {
						fmt.Fprintf(w, "  %s [%d]: %d\n", alias.Name, alias.ID, alias.ShowCount)
					}
				}
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <primary> <alias>...",
		Short: "Fold one or more bands into a primary band",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGroups(func(db *gorm.DB, groups *repository.AliasGroupRepository) error {
				primaryID, err := resolveBand(db, args[0])
				if err != nil {
					return err
				}
				aliasIDs := make([]uint, 0, len(args)-1)
				for _, ref := range args[1:] {
					id, err := resolveBand(db, ref)
					if err != nil {
						return err
					}
					aliasIDs = append(aliasIDs, id)
				}
				if err := groups.CreateGroup(primaryID, aliasIDs); err != nil {
					return err
				}
				count, err := groups.EffectiveShowCount(primaryID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Grouped %d aliases under %s (%d shows)\n", len(aliasIDs), args[0], count)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <primary> <alias>",
		Short: "Add a band to an existing group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGroups(func(db *gorm.DB, groups *repository.AliasGroupRepository) error {
				primaryID, err := resolveBand(db, args[0])
				if err != nil {
					return err
				}
				aliasID, err := resolveBand(db, args[1])
				if err != nil {
					return err
				}
				if err := groups.AddAlias(primaryID, aliasID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", args[1], args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <alias>",
		Short: "Make an alias band standalone again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGroups(func(db *gorm.DB, groups *repository.AliasGroupRepository) error {
				aliasID, err := resolveBand(db, args[0])
				if err != nil {
					return err
				}
				if err := groups.RemoveAlias(aliasID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is standalone\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disband <primary>",
		Short: "Release every alias of a primary band",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGroups(func(db *gorm.DB, groups *repository.AliasGroupRepository) error {
				primaryID, err := resolveBand(db, args[0])
				if err != nil {
					return err
				}
				if err := groups.DisbandGroup(primaryID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Disbanded group %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}
			hash, err := handlers.HashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ADMIN_PASSWORD_HASH='%s'\n", hash)
			return nil
		},
	}
}

// readPassword reads one line from stdin so the password stays out of shell history.
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
