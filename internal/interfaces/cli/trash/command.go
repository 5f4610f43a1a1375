package trash

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"paranoid/internal/infrastructure/config"
	"paranoid/internal/infrastructure/database"
	"paranoid/internal/infrastructure/persistence"
	"paranoid/internal/infrastructure/persistence/models"
	apperrors "paranoid/internal/shared/errors"
	"paranoid/internal/shared/logger"
	"paranoid/internal/softdelete"
)

var (
	configPath     string
	format         string
	skipDependents bool
)

// NewCommand builds the trash command tree: inspect archived rows, restore
// them (with or without their dependents), or purge them for good.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and manage archived records",
		Long:  `List, restore and purge soft-deleted records. Plain queries never see these rows; this command is the administrative window into them.`,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newListCommand(),
		newRestoreCommand(),
		newPurgeCommand(),
	)

	return cmd
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list <entity>",
		Short:     "List archived records of an entity",
		Args:      cobra.ExactArgs(1),
		ValidArgs: entityNames(),
		RunE:      runList,
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, yaml)")

	return cmd
}

func newRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "restore <entity> <id>",
		Short:     "Restore an archived record",
		Long:      `Restore an archived record together with the dependents that were archived along with it.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: entityNames(),
		RunE:      runRestore,
	}

	cmd.Flags().BoolVar(&skipDependents, "skip-dependents", false, "Restore only the record itself, leaving archived dependents in the trash")

	return cmd
}

func newPurgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "purge <entity> <id>",
		Short:     "Permanently delete an archived record",
		Long:      `Remove the record row from the database. This bypasses the archive entirely and cannot be undone.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: entityNames(),
		RunE:      runPurge,
	}
}

// entityHandle gives the subcommands a uniform, type-erased view over the
// per-model stores.
type entityHandle struct {
	listTrashed func(ctx context.Context) (any, error)
	restore     func(ctx context.Context, id uint, withDependents bool) error
	purge       func(ctx context.Context, id uint) error
}

func entityNames() []string {
	return []string{"project", "task", "comment", "note"}
}

func handleFor[T any](db *gorm.DB, registry *softdelete.Registry) (entityHandle, error) {
	store, err := softdelete.NewStore[T](db, registry)
	if err != nil {
		return entityHandle{}, err
	}
	return entityHandle{
		listTrashed: func(ctx context.Context) (any, error) {
			return store.DestroyedOnly().All(ctx)
		},
		restore: func(ctx context.Context, id uint, withDependents bool) error {
			return store.Restore(ctx, id, softdelete.RestoreOptions{
				IncludeDestroyedDependents: withDependents,
			})
		},
		purge: func(ctx context.Context, id uint) error {
			return store.Delete(ctx, id)
		},
	}, nil
}

func initEnv(entity string) (entityHandle, logger.Interface, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return entityHandle{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return entityHandle{}, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return entityHandle{}, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log := logger.NewLogger().Named("trash").With("op_id", uuid.NewString())

	registry, err := persistence.BuildRegistry(log)
	if err != nil {
		return entityHandle{}, nil, fmt.Errorf("failed to build registry: %w", err)
	}

	db := database.Get()

	var handle entityHandle
	switch entity {
	case "project":
		handle, err = handleFor[models.ProjectModel](db, registry)
	case "task":
		handle, err = handleFor[models.TaskModel](db, registry)
	case "comment":
		handle, err = handleFor[models.CommentModel](db, registry)
	case "note":
		handle, err = handleFor[models.NoteModel](db, registry)
	default:
		err = apperrors.NewValidationError("unknown entity", fmt.Sprintf("%s is not one of %v", entity, entityNames()))
	}
	if err != nil {
		return entityHandle{}, nil, err
	}

	return handle, log, nil
}

func runList(cmd *cobra.Command, args []string) error {
	handle, log, err := initEnv(args[0])
	if err != nil {
		return err
	}
	defer database.Close()

	rows, err := handle.listTrashed(cmd.Context())
	if err != nil {
		log.Errorw("failed to list archived records", "entity", args[0], "error", err)
		return fmt.Errorf("failed to list archived records: %w", err)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(rows)
	case "table":
		return printTable(rows)
	default:
		return fmt.Errorf("unknown format %q (expected table, json or yaml)", format)
	}
}

func runRestore(cmd *cobra.Command, args []string) error {
	handle, log, err := initEnv(args[0])
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	if err := handle.restore(cmd.Context(), id, !skipDependents); err != nil {
		log.Errorw("restore failed", "entity", args[0], "id", id, "error", err)
		return fmt.Errorf("restore failed: %w", err)
	}

	log.Infow("record restored", "entity", args[0], "id", id, "with_dependents", !skipDependents)
	fmt.Printf("Restored %s %d\n", args[0], id)
	return nil
}

func runPurge(cmd *cobra.Command, args []string) error {
	handle, log, err := initEnv(args[0])
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	if err := handle.purge(cmd.Context(), id); err != nil {
		log.Errorw("purge failed", "entity", args[0], "id", id, "error", err)
		return fmt.Errorf("purge failed: %w", err)
	}

	log.Infow("record purged", "entity", args[0], "id", id)
	fmt.Printf("Purged %s %d\n", args[0], id)
	return nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return uint(id), nil
}

func printTable(rows any) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	switch rs := rows.(type) {
	case []models.ProjectModel:
		fmt.Fprintln(w, "ID\tSID\tNAME\tDELETED AT")
		for _, r := range rs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.SID, r.Name, formatTime(r.DeletedAt))
		}
	case []models.TaskModel:
		fmt.Fprintln(w, "ID\tSID\tPROJECT\tTITLE\tDELETED AT")
		for _, r := range rs {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", r.ID, r.SID, r.ProjectID, r.Title, formatTime(r.DeletedAt))
		}
	case []models.CommentModel:
		fmt.Fprintln(w, "ID\tSID\tTASK\tAUTHOR\tDELETED AT")
		for _, r := range rs {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", r.ID, r.SID, r.TaskID, r.AuthorID, formatTime(r.DeletedAt))
		}
	case []models.NoteModel:
		fmt.Fprintln(w, "ID\tSID\tPROJECT\tDELETED AT")
		for _, r := range rs {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.ID, r.SID, r.ProjectID, formatTime(r.DeletedAt))
		}
	default:
		return fmt.Errorf("unsupported row type %T", rows)
	}
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
