package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"diamond-node/config"
	"diamond-node/core"
	"diamond-node/database"
	"diamond-node/logger"
	"diamond-node/rpc"

	"github.com/spf13/cobra"
)

var startNodeCmd = &cobra.Command{
	Use:   "startnode",
	Short: "Start the chain node",
	Long:  `Start the chain node: open the header store, replay the chain through consensus validation, and serve the REST API until interrupted.`,
	RunE:  runStartNode,
}

func runStartNode(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.GetLogLevel())

	p, err := cfg.Params()
	if err != nil {
		return err
	}
	logger.Infof("Starting node on %s", p.Name)

	db, err := database.NewLevelDB(cfg.ChainDataDir())
	if err != nil {
		return fmt.Errorf("open header store: %w", err)
	}
	defer db.Close()

	chain := core.NewChainIndex(p, db, core.LogSink{})
	if err := chain.Load(); err != nil {
		return fmt.Errorf("load chain index: %w", err)
	}
	logger.Infof("Chain index loaded, height %d", chain.Height())

	var server *rpc.Server
	if cfg.EnableRPC {
		server = rpc.NewServer(&rpc.Config{Host: cfg.RPCAddr, Port: cfg.RPCPort}, chain, p)
		if err := server.Start(); err != nil {
			return fmt.Errorf("start REST API: %w", err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down")
	if server != nil {
		server.Stop()
	}
	return nil
}
