// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/luthersystems/reactor/diagnostic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reactor",
	Short: "reactor — semantic analysis playground",
	Long: `reactor drives the demo expression language through reactor-based
semantic analysis and reports the computed attributes and errors.

Getting started:
  reactor analyze file.rx        Analyze a source file
  reactor analyze -t file.rx     Also dump the attributed tree
  reactor analyze -i file.rx     Explore the result interactively

The language:
  Bindings are declared with let and are file scoped; a binding may be
  referenced before its declaration.  Values are integers and strings.
  "+" adds integers or concatenates strings, "-" subtracts integers.
  Comments run from "#" to end of line.

  let greeting = "hello " + name
  let name = "world"
  greeting`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.reactor.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".reactor" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".reactor")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// colorMode maps the --color flag (or its viper override) to a
// diagnostic color mode.
func colorMode() diagnostic.ColorMode {
	mode := colorFlag
	if viper.IsSet("color") {
		mode = viper.GetString("color")
	}
	switch mode {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}
