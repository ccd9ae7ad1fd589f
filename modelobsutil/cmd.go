/*
Copyright © 2020 the ModelObs authors.
This file is part of ModelObs.

ModelObs is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ModelObs is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ModelObs.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package modelobsutil wires the modelobs library into a command-line
// interface.
package modelobsutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spacemodel/modelobs"

	// Register the instrument plugins.
	_ "github.com/spacemodel/modelobs/gemini3d"
	_ "github.com/spacemodel/modelobs/sami2"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var logger = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Platform",
			usage: `
              Platform is the model platform identifier (e.g. pygemini, sami2py).`,
			shorthand:  "p",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Name",
			usage: `
              Name is the model name within the platform (e.g. gemini3d, sami2).`,
			shorthand:  "n",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Tag",
			usage: `
              Tag selects the dataset variant to operate on.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InstID",
			usage: `
              InstID selects the instrument ID variant to operate on.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DataPath",
			usage: `
              DataPath is the directory holding model output files.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "StartDate",
			usage: `
              StartDate is the first date to download, in YYYYMMDD format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{downloadCmd.Flags()},
		},
		{
			name: "EndDate",
			usage: `
              EndDate is the last date to download (inclusive), in YYYYMMDD format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{downloadCmd.Flags()},
		},
		{
			name: "ObsFile",
			usage: `
              ObsFile is the observation data file (netCDF). It may be a
              local path or an http:// or https:// URL.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{pairCmd.Flags()},
		},
		{
			name: "ObsTimeVar",
			usage: `
              ObsTimeVar names the observation variable holding Unix epoch
              seconds.`,
			defaultVal: "time",
			flagsets:   []*pflag.FlagSet{pairCmd.Flags()},
		},
		{
			name: "VariableMap",
			usage: `
              VariableMap maps observation variable names to the model
              variables they are compared with.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{pairCmd.Flags()},
		},
		{
			name: "CoordMap",
			usage: `
              CoordMap maps model spatial dimension names to the observation
              variables holding positions along them.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{pairCmd.Flags()},
		},
		{
			name: "DerivedVariables",
			usage: `
              DerivedVariables maps new model variable names to expressions
              of existing model variables, evaluated before matching. For
              example: {"Ne": "deneO + deneH"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{pairCmd.Flags()},
		},
		{
			name: "Window",
			usage: `
              Window is the maximum time difference allowed between an
              observation and the model record matched to it (e.g. 30m, 1h).`,
			defaultVal: "30m",
			flagsets:   []*pflag.FlagSet{pairCmd.Flags()},
		},
		{
			name: "Method",
			usage: `
              Method selects how model values are sampled at observation
              locations: nearest or linear.`,
			defaultVal: "nearest",
			flagsets:   []*pflag.FlagSet{pairCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the netCDF file the matched pairs are written to.`,
			shorthand:  "o",
			defaultVal: "pairs.nc",
			flagsets:   []*pflag.FlagSet{pairCmd.Flags()},
		},
		{
			name: "PairFile",
			usage: `
              PairFile is a netCDF file of matched pairs written by the pair
              command.`,
			defaultVal: "pairs.nc",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "ObsVar",
			usage: `
              ObsVar is the observation variable in the pair file to compare.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "ModelVar",
			usage: `
              ModelVar is the model variable in the pair file to compare.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "Metrics",
			usage: `
              Metrics lists the comparison metrics to calculate.`,
			defaultVal: []string{"meanBias", "RMSE", "corr"},
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile, if set, is a PNG file to write a scatter plot of the
              compared pairs to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("MODELOBS")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(instrumentsCmd)
	Root.AddCommand(downloadCmd)
	Root.AddCommand(listCmd)
	Root.AddCommand(pairCmd)
	Root.AddCommand(compareCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("modelobs: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "modelobs",
	Short: "Load and compare upper-atmosphere model output.",
	Long: `ModelObs loads output from ionosphere models and matches and
compares it against observational data.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'MODELOBS_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ModelObs.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ModelObs v%s\n", modelobs.Version)
	},
	DisableAutoGenTag: true,
}

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List the registered model instruments",
	Long: `instruments prints the platform/name keys of all model instruments
this build knows how to load.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range modelobs.Instruments() {
			cmd.Println(k)
		}
	},
	DisableAutoGenTag: true,
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download model test data",
	Long: `download retrieves model data for the configured date range into
DataPath. Only the "test" tag currently has downloadable data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := lookupInstrument()
		if err != nil {
			return err
		}
		dates, err := dateRange(Cfg.GetString("StartDate"), Cfg.GetString("EndDate"))
		if err != nil {
			return err
		}
		return inst.Download(context.Background(), dates,
			Cfg.GetString("Tag"), Cfg.GetString("InstID"), Cfg.GetString("DataPath"))
	},
	DisableAutoGenTag: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available model output files",
	Long: `list prints the model output files in DataPath belonging to the
configured tag and inst_id, in chronological order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := lookupInstrument()
		if err != nil {
			return err
		}
		files, err := inst.ListFiles(Cfg.GetString("DataPath"),
			Cfg.GetString("Tag"), Cfg.GetString("InstID"))
		if err != nil {
			return err
		}
		for _, f := range files {
			cmd.Println(f)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Match observations with model output",
	Long: `pair loads the configured model output files and the observation
file, matches each observation with the nearest model record within the
time window, samples the model at the observation locations, and writes
the resulting pairs to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Pair(
			Cfg.GetString("ObsFile"),
			Cfg.GetString("ObsTimeVar"),
			GetStringMapString("VariableMap", Cfg),
			GetStringMapString("CoordMap", Cfg),
			GetStringMapString("DerivedVariables", Cfg),
			Cfg.GetString("Window"),
			Cfg.GetString("Method"),
			Cfg.GetString("OutputFile"),
		)
	},
	DisableAutoGenTag: true,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Calculate comparison statistics for matched pairs",
	Long: `compare reads a pair file written by the pair command, calculates
the configured metrics for one observation/model variable pair, and
prints them as JSON. If PlotFile is set, a scatter plot is saved too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := CompareFile(
			Cfg.GetString("PairFile"),
			Cfg.GetString("ObsVar"),
			Cfg.GetString("ModelVar"),
			Cfg.GetStringSlice("Metrics"),
			Cfg.GetString("PlotFile"),
		)
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(report, "", "\t")
		if err != nil {
			return err
		}
		cmd.Println(string(b))
		return nil
	},
	DisableAutoGenTag: true,
}

func lookupInstrument() (modelobs.Instrument, error) {
	inst, err := modelobs.Lookup(Cfg.GetString("Platform"), Cfg.GetString("Name"))
	if err != nil {
		return nil, err
	}
	if err := inst.Init(logger); err != nil {
		return nil, err
	}
	return inst, nil
}
