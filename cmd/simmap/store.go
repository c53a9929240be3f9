package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/kv"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func storeCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the map definitions in the pebble map store",
	}
	cmd.PersistentFlags().StringVarP(&storePath, "store", "s", "", "pebble directory of the map store")

	open := func(cmd *cobra.Command) (*kv.MapStore, *slog.Logger, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, nil, err
		}
		if cmd.Flags().Changed("store") {
			cfg.StorePath = storePath
		}
		if cfg.StorePath == "" {
			return nil, nil, domain.WrapErrorf(nil, domain.ErrInvalidArgument, "no store path configured")
		}
		logger := newLogger(cfg).Logger
		ms, err := kv.Open(cfg.StorePath, kv.WithLogger(logger), kv.WithWorkers(cfg.Workers))
		return ms, logger, err
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "put [map-file...]",
		Short: "Store map definition files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := make([]*roadmap.Definition, 0, len(args))
			for _, path := range args {
				def, err := roadmap.Load(path)
				if err != nil {
					return err
				}
				defs = append(defs, def)
			}

			ms, logger, err := open(cmd)
			if err != nil {
				return err
			}
			defer ms.Close()

			bar := newBar(len(defs), "[cyan][1/1][reset] compressing maps...")
			err = ms.PutAll(defs, bar)
			finish(bar, logger)
			return err
		},
	})

	var out string
	get := &cobra.Command{
		Use:   "get [name]",
		Short: "Print a stored map definition as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, _, err := open(cmd)
			if err != nil {
				return err
			}
			defer ms.Close()

			def, err := ms.Get(args[0])
			if err != nil {
				return err
			}
			bb, err := yaml.Marshal(def)
			if err != nil {
				return domain.WrapErrorf(err, domain.ErrInternalServerError, "cannot encode map %s", args[0])
			}
			if out != "" {
				return os.WriteFile(out, bb, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(bb)
			return err
		},
	}
	get.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	cmd.AddCommand(get)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the stored map names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ms, _, err := open(cmd)
			if err != nil {
				return err
			}
			defer ms.Close()

			names, err := ms.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, _, err := open(cmd)
			if err != nil {
				return err
			}
			defer ms.Close()
			return ms.Delete(args[0])
		},
	})
	return cmd
}
