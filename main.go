package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"zone-radar.klederson.com/internal/app"
	"zone-radar.klederson.com/internal/config"
	"zone-radar.klederson.com/internal/device"
)

var (
	flagConfig   string
	flagDevice   string
	flagGateway  string
	flagListen   string
	flagLogFile  string
	flagLogLevel string
	flagIDPolicy string
	flagDemo     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zone-radar",
		Short: "ZONE-RADAR - Terminal zone editor for presence sensors",
		Long: `ZONE-RADAR draws the room seen by a presence sensor, shows live target
positions and lets you place up to three detection zones with the mouse.

Press E to edit: drag a zone's border to resize it, its interior to move it.
Leaving edit mode sends the final zone set to the device.
Use --demo to run against a simulated device.`,
		SilenceUsage: true,
		RunE:         run,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "YAML config file")
	pf.StringVar(&flagDevice, "device", "", "Device address (host or host:port)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.Flags().StringVar(&flagGateway, "gateway", "", "Route zone reads and writes through a zone gateway at this URL")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Log file (the terminal is owned by the UI)")
	rootCmd.Flags().StringVar(&flagIDPolicy, "id-policy", "", "Zone id policy: count, position or lowest-free")
	rootCmd.Flags().BoolVar(&flagDemo, "demo", false, "Run against an in-process simulated device")

	rootCmd.AddCommand(serveCmd(), mockCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig applies command-line overrides on top of file and environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("device") {
		cfg.Device = flagDevice
	}
	if flags.Changed("gateway") {
		cfg.Gateway = flagGateway
	}
	if flags.Changed("listen") {
		cfg.Listen = flagListen
	}
	if flags.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("id-policy") {
		cfg.IDPolicy = config.IDPolicy(flagIDPolicy)
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logFile, err := setupFileLogging(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if flagDemo {
		addr, err := startDemoDevice(ctx)
		if err != nil {
			return fmt.Errorf("failed to start demo device: %w", err)
		}
		cfg.Device = addr
		cfg.Gateway = ""
	}

	model := app.New(app.Options{
		Device:   cfg.Device,
		Gateway:  cfg.Gateway,
		IDPolicy: cfg.IDPolicy,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithFPS(config.TargetFPS),
	)

	// Feed events and push results are delivered through the program.
	model.Attach(p)

	log.Info().Str("device", cfg.Device).Str("gateway", cfg.Gateway).Bool("demo", flagDemo).Msg("starting")
	_, err = p.Run()
	model.Shutdown()
	return err
}

// startDemoDevice serves a simulated device on a loopback port and returns
// its address.
func startDemoDevice(ctx context.Context) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}

	mock := device.NewMock()
	server := &http.Server{Handler: mock.Handler()}

	go mock.Run(ctx)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("demo device stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	addr := ln.Addr().String()
	log.Info().Str("addr", addr).Msg("demo device listening")
	return addr, nil
}
