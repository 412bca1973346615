// Package driftctl is the command-line composition root for the
// driftmap particle-transport engine: it wires configuration, the
// current/diffusivity field services, the release manager, and the
// particle engine into the run/bake/play/serve subcommands.
package driftctl

import (
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information for every subcommand, the same
// shape as the teacher's own composition-root config object: a single
// *viper.Viper wrapped in a struct carrying the command tree.
type Cfg struct {
	*viper.Viper

	Root, runCmd, bakeCmd, playCmd, serveCmd *cobra.Command
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets                []*pflag.FlagSet
}

// InitializeConfig builds the command tree and registers every
// configuration option's flag and viper binding.
func InitializeConfig() *Cfg {
	cfg := &Cfg{Viper: viper.New()}

	cfg.Root = &cobra.Command{
		Use:   "driftctl",
		Short: "A Lagrangian ocean radionuclide particle-transport engine.",
		Long: `driftctl drives the driftmap particle-transport engine. Use the
subcommands below to run a simulation headlessly, bake a snapshot
archive, replay one, or serve a live run over a websocket.

Configuration can be set with a configuration file (--config), with
command-line flags, or with environment variables in the form
'DRIFTCTL_var'.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setConfig(cfg)
		},
	}

	cfg.runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a simulation headlessly and print summary statistics.",
		Long:  `run advances the engine for DurationDays and reports final aggregate statistics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunHeadless(cmd.Context(), cfg)
		},
		DisableAutoGenTag: true,
	}

	cfg.bakeCmd = &cobra.Command{
		Use:   "bake",
		Short: "Run a simulation and record a snapshot archive.",
		Long:  `bake runs the engine at the fixed bake sub-step and writes a snapshot archive to OutputFile.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunBake(cmd.Context(), cfg)
		},
		DisableAutoGenTag: true,
	}

	cfg.playCmd = &cobra.Command{
		Use:   "play",
		Short: "Replay a snapshot archive.",
		Long:  `play loads a snapshot archive and steps through it at Play.Speed simulation-days per second.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunPlay(cmd.Context(), cfg)
		},
		DisableAutoGenTag: true,
	}

	cfg.serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run a simulation and broadcast live frames over a websocket.",
		Long:  `serve runs the engine and pushes a frame to every connected websocket client at each Advance tick.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServe(cmd.Context(), cfg)
		},
		DisableAutoGenTag: true,
	}

	cfg.Root.AddCommand(cfg.runCmd, cfg.bakeCmd, cfg.playCmd, cfg.serveCmd)

	options := []option{
		{
			name:       "config",
			usage:      "config specifies the configuration file location.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Tracer.ID",
			usage:      "Tracer.ID is the tracer identifier to release, e.g. Cs-137.",
			defaultVal: "Cs-137",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Phases",
			usage:      `Phases is a JSON array of release phases, e.g. [{"start":0,"end":30,"total":16.2,"unit":"PBq"}].`,
			defaultVal: `[{"start":0,"end":30,"total":16.2,"unit":"PBq"}]`,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Engine.ReferenceLon",
			usage:      "Engine.ReferenceLon is the local-plane origin longitude and default release-site center.",
			defaultVal: 141.0325,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Engine.ReferenceLat",
			usage:      "Engine.ReferenceLat is the local-plane origin latitude and default release-site center.",
			defaultVal: 37.4213,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Engine.PoolSize",
			usage:      "Engine.PoolSize is the number of particle slots the engine allocates up front.",
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Engine.DiffusivityScale",
			usage:      "Engine.DiffusivityScale multiplies the field-service eddy diffusivity before use.",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Engine.VerticalMixing",
			usage:      "Engine.VerticalMixing enables depth-dependent vertical mixing and Ekman/convective terms.",
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Engine.RK4Enabled",
			usage:      "Engine.RK4Enabled selects adaptive RK4 advection instead of Euler.",
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Engine.RandSeed",
			usage:      "Engine.RandSeed seeds the engine's random source. 0 selects a time-derived seed.",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Land.Enabled",
			usage:      "Land.Enabled enables the post-move land-reflection rule (spec §4.5.5 rule 2).",
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "Land.MaxSearchRadius",
			usage:      "Land.MaxSearchRadius bounds the nearest-ocean-cell search radius, in grid cells, used by the land-reflection rule.",
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "CurrentField.DataDir",
			usage:      "CurrentField.DataDir is the directory or blob-bucket prefix holding the daily velocity grids.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "CurrentField.BaseDate",
			usage:      "CurrentField.BaseDate is the calendar date (YYYY-MM-DD) that simulation day 0 corresponds to.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "CurrentField.MaxDaysInMemory",
			usage:      "CurrentField.MaxDaysInMemory bounds the resident velocity day-cache.",
			defaultVal: 2,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "DiffusivityField.BaseDate",
			usage:      "DiffusivityField.BaseDate is the calendar date (YYYY-MM-DD) that simulation day 0 corresponds to.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "DiffusivityField.DataDir",
			usage:      "DiffusivityField.DataDir is the directory or blob-bucket prefix holding the daily diffusivity grids.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "DiffusivityField.MaxDaysInMemory",
			usage:      "DiffusivityField.MaxDaysInMemory bounds the resident diffusivity day-cache.",
			defaultVal: 2,
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name:       "DurationDays",
			usage:      "DurationDays is how many simulation days run, bake, and serve advance for.",
			defaultVal: 30.0,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.bakeCmd.Flags(), cfg.serveCmd.Flags()},
		},
		{
			name:       "StepDays",
			usage:      "StepDays is run and serve's per-tick advance size, in simulation days.",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{cfg.runCmd.Flags(), cfg.serveCmd.Flags()},
		},
		{
			name:       "Bake.SnapshotFrequency",
			usage:      "Bake.SnapshotFrequency captures a snapshot every this many simulation days.",
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{cfg.bakeCmd.Flags()},
		},
		{
			name:       "Bake.AutoSaveEvery",
			usage:      "Bake.AutoSaveEvery, if > 0, writes a partial archive to OutputFile every this many simulation days.",
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{cfg.bakeCmd.Flags()},
		},
		{
			name:       "OutputFile",
			usage:      "OutputFile is the snapshot-archive path bake writes to and play reads from.",
			defaultVal: "driftmap-archive.toml",
			flagsets:   []*pflag.FlagSet{cfg.bakeCmd.Flags(), cfg.playCmd.Flags()},
		},
		{
			name:       "Play.Speed",
			usage:      "Play.Speed is the playback rate, in simulation-days per wall-clock second.",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{cfg.playCmd.Flags()},
		},
		{
			name:       "Serve.Address",
			usage:      "Serve.Address is the listen address for the live websocket frame broadcast.",
			defaultVal: "localhost:7272",
			flagsets:   []*pflag.FlagSet{cfg.serveCmd.Flags()},
		},
	}

	cfg.SetEnvPrefix("DRIFTCTL")
	cfg.AutomaticEnv()
	registerOptions(cfg, options)

	return cfg
}

// registerOptions adds a flag for each option to its first flagset and
// mirrors it onto the rest, then binds it into viper, matching the
// teacher's own generic option-registration loop.
func registerOptions(cfg *Cfg, options []option) {
	for _, opt := range options {
		for i, set := range opt.flagsets {
			if i != 0 {
				set.AddFlag(opt.flagsets[0].Lookup(opt.name))
				continue
			}
			switch v := opt.defaultVal.(type) {
			case string:
				if opt.shorthand == "" {
					set.String(opt.name, v, opt.usage)
				} else {
					set.StringP(opt.name, opt.shorthand, v, opt.usage)
				}
			case bool:
				set.Bool(opt.name, v, opt.usage)
			case int:
				set.Int(opt.name, v, opt.usage)
			case float64:
				set.Float64(opt.name, v, opt.usage)
			default:
				panic(fmt.Errorf("driftctl: invalid option default type: %T", opt.defaultVal))
			}
			cfg.BindPFlag(opt.name, set.Lookup(opt.name))
		}
	}
}

// setConfig finds and reads in the configuration file, if one was given.
func setConfig(cfg *Cfg) error {
	if path := cfg.GetString("config"); path != "" {
		cfg.SetConfigFile(path)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("driftctl: problem reading configuration file: %v", err)
		}
	}
	return nil
}
