package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/micha/aeonium-menu/hotkey"
	"github.com/micha/aeonium-menu/logger"
	"github.com/micha/aeonium-menu/menu"
	"github.com/micha/aeonium-menu/notify"
	"github.com/micha/aeonium-menu/renderer"
	"github.com/micha/aeonium-menu/setup"
	"github.com/micha/aeonium-menu/shortcuts"
)

func main() {
	configDir := flag.String("config", "", "Configuration directory (default: $XDG_CONFIG_HOME/aeonium-menu)")
	verbose := flag.Bool("v", false, "Enable debug logging")
	listDevices := flag.Bool("list-devices", false, "List input devices with their seat and capabilities and exit")
	showConfig := flag.Bool("show-config", false, "Print the effective configuration and exit")
	listShortcuts := flag.Bool("list-shortcuts", false, "Print the menu items in segment order and exit")
	check := flag.Bool("check", false, "Check the environment, offer fixes and exit")

	flag.Parse()
	logger.SetVerbose(*verbose)

	dir, err := resolveConfigDir(*configDir)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	switch {
	case *listDevices:
		os.Exit(printDevices(os.Stdout))
	case *showConfig:
		os.Exit(printConfig(os.Stdout, dir))
	case *listShortcuts:
		os.Exit(printShortcuts(os.Stdout, dir))
	case *check:
		scanner := bufio.NewScanner(os.Stdin)
		cfg, err := loadSettings(dir)
		rendererPath := ""
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		} else {
			rendererPath = cfg.Renderer
		}
		if err := setup.EnsureEnvironment(scanner, setup.Options{ConfigDir: dir, Renderer: rendererPath}); err != nil {
			fmt.Printf("Setup incomplete: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := run(dir); err != nil {
		notify.Error("Aeonium Menu stopped", err.Error())
		log.Fatalf("Fatal: %v", err)
	}
}

// run is the daemon: it listens on the configured seat and drives the menu
// until SIGINT or SIGTERM, or until something fatal happens.
func run(configDir string) error {
	stateDir, err := stateDir()
	if err != nil {
		return err
	}
	if err := logger.Init(stateDir); err != nil {
		log.Printf("Warning: logging to stderr only: %v", err)
	}
	defer logger.Close()
	defer logger.CatchPanic()

	if notify.DisableIfHeadless() {
		log.Printf("[notify] no DISPLAY or WAYLAND_DISPLAY, desktop notifications off")
	}

	cfg, err := loadSettings(configDir)
	if err != nil {
		return err
	}
	binding, err := cfg.Binding()
	if err != nil {
		return err
	}

	items, err := shortcuts.Load(configDir)
	if err != nil {
		return err
	}
	for i, s := range items {
		logger.Debugf("[shortcuts] segment %d: %s", i, s)
	}

	rendererPath, err := renderer.FindBinary(cfg.Renderer)
	if err != nil {
		return err
	}

	src := hotkey.NewSeatSource()
	if err := src.AssignSeat(cfg.Seat); err != nil {
		return err
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rendererOpts := renderer.Options{
		Path:    rendererPath,
		LogPath: filepath.Join(stateDir, rendererLogName),
	}
	spawn := func(args []string) (menu.Session, error) {
		s, err := renderer.Spawn(ctx, rendererOpts, args)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	ctrl, err := menu.NewController(items, spawn, menu.Options{
		IdleTimeout:   cfg.IdleTimeout(),
		CheckInterval: cfg.CheckEvery(),
		Notify:        notify.Error,
	})
	if err != nil {
		return err
	}

	listener := hotkey.NewListener(src, binding)
	listenerDone := make(chan error, 1)
	logger.GoSafe(func() error { return listener.Start(ctx) }, listenerDone)

	log.Printf("[menu] ready: %d shortcuts on %s, idle timeout %s", items.Len(), cfg.Seat, cfg.IdleTimeout())
	runErr := ctrl.Run(ctx, listener.Events())

	stop()
	listenErr := <-listenerDone
	if errors.Is(runErr, menu.ErrChannelDisconnected) && listenErr != nil {
		return fmt.Errorf("%w: %w", runErr, listenErr)
	}
	if runErr == nil {
		log.Println("Stopped.")
	}
	return runErr
}
