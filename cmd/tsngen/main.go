package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iti/tsngen"
)

var (
	cfgFile   string // path to the scenario settings file
	outputDir string // overrides the settings file's output directory
	seed      int64  // overrides the settings file's seed
	logLevel  string // log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tsngen",
	Short: "Generator of TSN test topologies and traffic scenarios",
}

// runCmd generates one scenario from a settings file and emits its artifacts
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a scenario and emit its artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		settings, err := tsngen.ReadScenarioConfig(cfgFile, []byte{})
		if err != nil {
			logrus.Fatalf("unable to read scenario settings %s: %v", cfgFile, err)
		}

		if cmd.Flags().Changed("seed") {
			settings.Seed = seed
		}
		if len(outputDir) > 0 {
			settings.OutputDir = outputDir
		}

		logrus.Infof("Generating scenario %s: family=%s switches=%d nodes/switch=%d seed=%d",
			settings.Name, settings.Network.Type, settings.Network.NumSwitches,
			settings.Network.NodesPerSwitch, settings.Seed)

		scenario, err := tsngen.GenerateScenario(settings)
		if err != nil {
			logrus.Fatalf("generation failed: %v", err)
		}

		logrus.Infof("Scenario %s: %d switches, %d end systems, %d links, %d streams",
			settings.Name, len(scenario.Cfg.Switches), len(scenario.Cfg.EndSys),
			len(scenario.Cfg.Links), len(scenario.Streams.Streams))

		emitted, err := scenario.Emit()
		if err != nil {
			logrus.Fatalf("emission failed: %v", err)
		}

		if len(emitted.TopoFile) > 0 {
			logrus.Infof("Wrote %s and %s", emitted.TopoFile, emitted.ScenarioFile)
		}
		if len(emitted.TopoCSV) > 0 {
			logrus.Infof("Wrote %s and %s", emitted.TopoCSV, emitted.StreamsCSV)
		}
		if len(emitted.DotFile) > 0 {
			logrus.Infof("Wrote %s", emitted.DotFile)
		}

		logrus.Info("Generation complete.")
	},
}

func init() {
	runCmd.Flags().StringVarP(&cfgFile, "config", "c", "scenario.yaml", "scenario settings file")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "override the settings output directory")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "override the settings seed")
	runCmd.Flags().StringVar(&logLevel, "loglevel", "info", "log verbosity level")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
