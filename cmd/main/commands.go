package main

import (
	"errors"
	"fmt"
	"io"

	"factorio/wiki/internal/config"
	"factorio/wiki/internal/container"
	"factorio/wiki/internal/domain"
	"factorio/wiki/internal/view"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errEmptyCatalog = errors.New("catalog is empty, run the build command first")

type commandContext struct {
	configPath string
	itemName   string
	logger     *log.Logger
	out        io.Writer
}

func newRootCommand(logger *log.Logger, out io.Writer) *cobra.Command {
	ctx := &commandContext{logger: logger, out: out}

	rootCmd := &cobra.Command{
		Use:           "factorio-wiki",
		Short:         "Show the recipe of a cached catalog item (the first one by default)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.loadCatalog(cmd)
			if err != nil {
				return err
			}
			if len(catalog) == 0 {
				return errEmptyCatalog
			}

			item := catalog[0]
			if ctx.itemName != "" {
				if item = catalog.Find(ctx.itemName); item == nil {
					return fmt.Errorf("item %q not found in catalog", ctx.itemName)
				}
			}

			fragment, err := view.RenderRecipe(item)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.out, fragment)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&ctx.itemName, "item", "i", "", "Item name to show instead of the first one")

	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))

	return rootCmd
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Scrape the wiki and update the local item cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.container(cmd, false)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx.logger.Info("Starting catalog build...")
			catalog, err := app.Service.Init(cmd.Context(), false)
			if err != nil {
				return err
			}
			ctx.logger.Infof("Catalog has %d items, %d without recipe", len(catalog), catalog.MissingRecipes())
			return nil
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.loadCatalog(cmd)
			if err != nil {
				return err
			}
			if len(catalog) == 0 {
				return errEmptyCatalog
			}
			fmt.Fprintln(ctx.out, view.RenderTable(catalog))
			return nil
		},
	}
}

func (c *commandContext) container(cmd *cobra.Command, readonly bool) (*container.Container, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	c.logger.SetLevel(level)

	return container.New(cmd.Context(), cfg, c.logger, readonly)
}

func (c *commandContext) loadCatalog(cmd *cobra.Command) (domain.Catalog, error) {
	app, err := c.container(cmd, true)
	if err != nil {
		return nil, err
	}
	defer app.Close()

	return app.Service.Init(cmd.Context(), true)
}
