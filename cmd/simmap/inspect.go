package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/JensKlimke/SimMap-sub000/pkg/graph"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/JensKlimke/SimMap-sub000/pkg/shape"
	"github.com/JensKlimke/SimMap-sub000/pkg/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	var geojsonOut string

	cmd := &cobra.Command{
		Use:   "inspect [map-file]",
		Short: "Build a map definition and print its roads and lanes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			def, err := roadmap.Load(args[0])
			if err != nil {
				return err
			}

			bar := newBar(-1, "[cyan][1/1][reset] discretizing lanes...")
			m, err := roadmap.Build(def, append(cfg.BuildOptions(), roadmap.WithLogger(logger.Logger), roadmap.WithProgress(bar))...)
			finish(bar, logger.Logger)
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), m)

			if geojsonOut == "" {
				return nil
			}
			fc, err := shape.Lanes(m)
			if err != nil {
				return err
			}
			bb, err := shape.Marshal(fc)
			if err != nil {
				return err
			}
			if geojsonOut == "-" {
				_, err = cmd.OutOrStdout().Write(bb)
				return err
			}
			return os.WriteFile(geojsonOut, bb, 0o644)
		},
	}

	cmd.Flags().StringVarP(&geojsonOut, "geojson", "g", "", "write the lanes as GeoJSON to this file (- for stdout)")
	return cmd
}

func printSummary(w io.Writer, m *roadmap.Map) {
	fmt.Fprintf(w, "map %s: %d roads, %d lanes, %d indexed segments\n", m.Name, len(m.Roads), m.Graph.Len(), m.Index.Size())

	byRoad := lo.GroupBy(m.Graph.Edges(), func(e *graph.Edge) string {
		return e.TrackElement().Road
	})
	roads := lo.Keys(byRoad)
	sort.Strings(roads)

	for _, id := range roads {
		r := m.Roads[id]
		fmt.Fprintf(w, "road %s  length %.3f\n", id, util.RoundFloat(r.Length, 3))
		for _, e := range byRoad[id] {
			fmt.Fprintf(w, "  %-16s %-9s %8.3f  next %d  prev %d  objects %d\n",
				e.Name(), e.Orientation(), util.RoundFloat(e.Length(), 3), len(e.Nexts()), len(e.Prevs()), len(e.Objects()))
		}
	}
}
