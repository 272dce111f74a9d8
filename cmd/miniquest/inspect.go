package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/spf13/cobra"

	"github.com/miniquest/miniquest/internal/tiled"
	"github.com/miniquest/miniquest/internal/world"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <map>",
	Short: "Describe a map's authoring data",
	Long: `Load a map from the assets directory and print its size, metadata,
layers, portals and any entity names the world would not recognise.

Examples:
  miniquest inspect village
  miniquest inspect dungeon --config ./dev.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return inspect(cmd.OutOrStdout(), os.DirFS(cfg.AssetsDir), newRegistry(), args[0])
	},
}

// entityLayers are object groups whose object names must be registered types.
var entityLayers = []string{world.LayerEnemies, world.LayerNPCs, world.LayerGameObjects}

func inspect(w io.Writer, assets fs.FS, reg *world.Registry, id string) error {
	m, err := tiled.Load(assets, path.Join(mapsDir, id+".tmj"))
	if err != nil {
		return err
	}
	pw, ph := m.PixelSize()
	fmt.Fprintf(w, "map %s: %dx%d tiles of %dx%d (%.0fx%.0f px)\n",
		id, m.Width, m.Height, m.TileWidth, m.TileHeight, pw, ph)
	fmt.Fprintf(w, "interior=%v light_level=%d music=%q\n",
		m.Properties.Bool("interior", false), m.Properties.Int("light_level", 10), m.Properties.String("music", ""))
	for _, ts := range m.Tilesets {
		fmt.Fprintf(w, "tileset %q firstgid=%d tiles=%d image=%s\n", ts.Name, ts.FirstGID, ts.TileCount, ts.Image)
	}

	fmt.Fprintln(w, "\nlayers:")
	for _, l := range m.AllLayers() {
		switch l.Type {
		case tiled.TileLayer:
			used := 0
			for _, gid := range l.Data {
				if gid != 0 {
					used++
				}
			}
			fmt.Fprintf(w, "  %-16s tiles    %d/%d cells\n", l.Name, used, len(l.Data))
		case tiled.ObjectGroup:
			fmt.Fprintf(w, "  %-16s objects  %d\n", l.Name, len(l.Objects))
		}
	}
	if len(m.TileLayersWithPrefix(world.LayerFloor)) == 0 {
		fmt.Fprintf(w, "  warning: no %q tile layer, the map will not load\n", world.LayerFloor)
	}

	if portals := m.Objects(world.LayerPortal); len(portals) > 0 {
		fmt.Fprintln(w, "\nportals:")
		for _, obj := range portals {
			spec, err := tiled.ParsePortal(obj)
			if err != nil {
				fmt.Fprintf(w, "  #%d invalid: %v\n", obj.ID, err)
				continue
			}
			fmt.Fprintf(w, "  #%d -> %s (%.0f,%.0f)", obj.ID, spec.Map, spec.DestX, spec.DestY)
			if len(spec.QuestActive) > 0 {
				fmt.Fprintf(w, " active=%v", spec.QuestActive)
			}
			if len(spec.QuestCompleted) > 0 {
				fmt.Fprintf(w, " completed=%v", spec.QuestCompleted)
			}
			fmt.Fprintln(w)
		}
	}

	unknown := unknownTypes(m, reg)
	if len(unknown) > 0 {
		fmt.Fprintln(w, "\nunknown entity types:")
		for _, u := range unknown {
			fmt.Fprintf(w, "  %s\n", u)
		}
	}
	return nil
}

// unknownTypes lists "layer/name" for every entity object the registry
// cannot build.
func unknownTypes(m *tiled.Map, reg *world.Registry) []string {
	seen := map[string]bool{}
	for _, layer := range entityLayers {
		for _, obj := range m.Objects(layer) {
			if obj.Name == "" {
				continue
			}
			known := false
			if layer == world.LayerGameObjects {
				_, err := reg.Object(obj.Name)
				known = err == nil
			} else {
				_, known = reg.KindOf(obj.Name)
			}
			if !known {
				seen[layer+"/"+obj.Name] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
