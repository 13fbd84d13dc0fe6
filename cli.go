package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/micha/aeonium-menu/hotkey"
	"github.com/micha/aeonium-menu/renderer"
	"github.com/micha/aeonium-menu/shortcuts"
)

// printDevices lists input devices with their seat and whether the menu
// would listen to them. It returns the process exit code.
func printDevices(w io.Writer) int {
	devices, err := hotkey.ListDevices()
	if err != nil {
		fmt.Fprintf(w, "Error listing devices: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(w, "No input devices found.")
		return 0
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSEAT\tKEYS\tWHEEL\tNAME")
	for _, d := range devices {
		if d.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%s (%v)\n", d.Path, d.Name, d.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Path, d.Seat, yesNo(d.Keys), yesNo(d.Wheel), d.Name)
	}
	tw.Flush()
	return 0
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// printConfig prints the effective configuration as JSON, including the
// resolved renderer path.
func printConfig(w io.Writer, dir string) int {
	cfg, err := loadSettings(dir)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(w, "# %s\n%s\n", dir, data)

	if path, err := renderer.FindBinary(cfg.Renderer); err != nil {
		fmt.Fprintf(w, "# renderer: %v\n", err)
	} else {
		fmt.Fprintf(w, "# renderer: %s\n", path)
	}
	return 0
}

// printShortcuts lists the menu items in segment order.
func printShortcuts(w io.Writer, dir string) int {
	items, err := shortcuts.Load(dir)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEGMENT\tNAME\tCOMMAND\tICON")
	for i, s := range items {
		icon, ok := items.Icon(i)
		if !ok {
			icon = renderer.DefaultIcon
		}
		cmd := s.Program
		for _, a := range s.Args {
			cmd += " " + a
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, s.Name, cmd, icon)
	}
	tw.Flush()
	return 0
}
