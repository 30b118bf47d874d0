package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"diamond-node/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "diamondd",
	Short: "Diamond proof-of-work chain node",
	Long: `diamondd maintains a proof-of-work header chain: it tracks the
difficulty retarget schedule, validates block proof of work, and serves
the chain state over a REST API.`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(startNodeCmd)
	rootCmd.AddCommand(bitsCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.diamondd/config.yaml or ./config.yaml)")

	rootCmd.PersistentFlags().String("datadir", config.DefaultConfig.DataDir, "Data directory for chain data")
	rootCmd.PersistentFlags().String("network", config.DefaultConfig.Network, "Network to follow (mainnet, testnet, regtest)")
	rootCmd.PersistentFlags().Bool("enable_rpc", config.DefaultConfig.EnableRPC, "Serve the REST API")
	rootCmd.PersistentFlags().Int("rpcport", config.DefaultConfig.RPCPort, "REST API port")
	rootCmd.PersistentFlags().String("rpcaddr", config.DefaultConfig.RPCAddr, "REST API address (0.0.0.0 to listen on all interfaces)")
	rootCmd.PersistentFlags().String("log_level", config.DefaultConfig.LogLevel, "Logging level (debug, info, warn, error, fatal)")

	viper.BindPFlag("datadir", rootCmd.PersistentFlags().Lookup("datadir"))
	viper.BindPFlag("network", rootCmd.PersistentFlags().Lookup("network"))
	viper.BindPFlag("enable_rpc", rootCmd.PersistentFlags().Lookup("enable_rpc"))
	viper.BindPFlag("rpcport", rootCmd.PersistentFlags().Lookup("rpcport"))
	viper.BindPFlag("rpcaddr", rootCmd.PersistentFlags().Lookup("rpcaddr"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".diamondd"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DIAMONDD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
