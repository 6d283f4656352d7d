// ============================================================================
// Jobsteal-store CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra-based command line interface for the collision controller
// demo and the page store inspection/demo tools.
//
// Command Structure:
//   collisionctl                      # Root command
//   ├── serve                         # Run the collision engine + metrics HTTP server
//   │   └── --config, -c             # Specify config file
//   ├── demo collision                # Run an in-process collision demo
//   ├── demo pagestore                # Run an in-process page store demo
//   └── pagestore inspect <path>      # Print a page file's header and stats
//
// Configuration Management:
//   Uses YAML format config file (default: configs/default.yaml), loaded
//   through internal/config.
// ============================================================================

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChuLiYu/jobsteal-store/internal/cluster"
	"github.com/ChuLiYu/jobsteal-store/internal/config"
	"github.com/ChuLiYu/jobsteal-store/internal/metrics"
	"github.com/ChuLiYu/jobsteal-store/pkg/collision"
	"github.com/ChuLiYu/jobsteal-store/pkg/pagestore"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var configFile string

// BuildCLI assembles the root command tree.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "collisionctl",
		Short: "collisionctl: job-stealing collision controller and page store tools",
		Long: `collisionctl hosts a job-stealing collision controller node and its
paged on-disk storage engine:
- Priority-ordered job activation with peer-to-peer work stealing
- Single-file paged storage with header/CRC integrity checks
- Prometheus metrics`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "config file path")

	rootCmd.AddCommand(buildServeCommand())
	rootCmd.AddCommand(buildDemoCommand())
	rootCmd.AddCommand(buildPageStoreCommand())

	return rootCmd
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		slog.Warn("could not load config file, using defaults", "path", configFile, "error", err)
		return config.Default()
	}
	return cfg
}

// buildServeCommand starts the Prometheus endpoint alongside a live
// collision engine wired to an in-memory NodeTable, the same
// engine+table+broker shape buildDemoCollisionCommand assembles, so the
// exposed gauges/counters track a real (if otherwise unfed) controller
// instead of an idle collector.
func buildServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the collision engine and Prometheus metrics HTTP server until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if !cfg.Metrics.Enabled {
				return fmt.Errorf("metrics are disabled in %s", configFile)
			}

			collector := metrics.NewCollector()
			go func() {
				if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
					slog.Error("metrics server exited", "error", err)
				}
			}()
			slog.Info("metrics server listening", "port", cfg.Metrics.Port)

			selfID := uuid.New()
			table := collision.NewNodeTable()
			broker := cluster.NewBroker()
			engine, err := collision.NewEngine(cfg.CollisionConfig(), table, broker.TransportFor(selfID), selfID)
			if err != nil {
				return err
			}
			engine.SetMetrics(collector)
			broker.Register(selfID, engine.OnStealRequest)
			slog.Info("collision engine started", "node", selfID)

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			for {
				select {
				case <-ticker.C:
					engine.OnCollision(collision.CollisionContext{})
				case <-sigCh:
					slog.Info("shutting down")
					return nil
				}
			}
		},
	}
}

func buildDemoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an in-process demonstration",
	}
	cmd.AddCommand(buildDemoCollisionCommand())
	cmd.AddCommand(buildDemoPageStoreCommand())
	return cmd
}

// buildDemoCollisionCommand wires two in-process Engines over a Broker, runs
// one collision pass on the idle engine, and prints how many steal requests
// the busy engine received and its resulting pending steal capacity.
func buildDemoCollisionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collision",
		Short: "Simulate two nodes, one overloaded and one idle, and watch job stealing happen",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			collisionCfg := cfg.CollisionConfig()
			collisionCfg.StealingEnabled = true

			broker := cluster.NewBroker()
			idleID := uuid.New()
			busyID := uuid.New()

			idleTable := collision.NewNodeTable()
			idleEngine, err := collision.NewEngine(collisionCfg, idleTable, broker.TransportFor(idleID), idleID)
			if err != nil {
				return err
			}
			busyEngine, err := collision.NewEngine(collisionCfg, collision.NewNodeTable(), broker.TransportFor(busyID), busyID)
			if err != nil {
				return err
			}

			broker.Register(idleID, idleEngine.OnStealRequest)
			broker.Register(busyID, busyEngine.OnStealRequest)

			// The busy node drops steal requests from peers it has not
			// seen join, so it must learn about the idle node first.
			busyEngine.OnNodeJoined(cluster.NewNode(idleID, collisionCfg.PublishedAttributes()))

			busyNode := cluster.NewNode(busyID, collisionCfg.PublishedAttributes())
			busyNode.UpdateMetrics(collision.NodeMetrics{CurrentWaitingJobs: 40})
			idleTable.Join(busyNode)

			fmt.Println("idle node polling an overloaded peer...")
			idleEngine.OnCollision(collision.CollisionContext{})

			time.Sleep(50 * time.Millisecond)
			snap := busyEngine.Snapshot()
			fmt.Printf("busy node received steal requests: %d, pending capacity: %d\n",
				snap.StealRequestsReceived, snap.StealReqs)
			return nil
		},
	}
}

func buildDemoPageStoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pagestore",
		Short: "Create a scratch page file, allocate and write a few pages, then read them back",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			path := cfg.PageStore.Dir + "/demo.page"

			pf := pagestore.NewPageFile(path, 1, cfg.PageStore.PageSize, false)
			defer pf.Stop(true)

			var ids []pagestore.PageID
			for i := 0; i < 3; i++ {
				id, err := pf.AllocatePage()
				if err != nil {
					return fmt.Errorf("allocate: %w", err)
				}
				buf := make([]byte, cfg.PageStore.PageSize)
				for j := range buf {
					buf[j] = byte(i)
				}
				if err := pf.Write(id, buf, 1); err != nil {
					return fmt.Errorf("write: %w", err)
				}
				fmt.Printf("allocated and wrote page %d\n", id)
				ids = append(ids, id)
			}

			for _, id := range ids {
				buf := make([]byte, cfg.PageStore.PageSize)
				if err := pf.Read(id, buf, false); err != nil {
					return fmt.Errorf("read: %w", err)
				}
				fmt.Printf("read back page %d (CRC verified)\n", id)
			}

			fmt.Printf("total pages (including super page): %d\n", pf.Pages())
			return nil
		},
	}
}

func buildPageStoreCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "pagestore", Short: "Page store maintenance commands"}
	cmd.AddCommand(buildPageStoreInspectCommand())
	return cmd
}

func buildPageStoreInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <path>",
		Short: "Print a page file's header fields and allocation stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg := loadConfig()

			pf := pagestore.NewPageFile(path, 1, cfg.PageStore.PageSize, false)
			if !pf.Exists() {
				return fmt.Errorf("%s does not exist", path)
			}
			if err := pf.Ensure(); err != nil {
				return err
			}
			defer pf.Stop(false)

			fmt.Printf("path:      %s\n", path)
			fmt.Printf("tag:       %d\n", pf.Tag())
			fmt.Printf("allocated: %d bytes\n", pf.Allocated())
			fmt.Printf("pages:     %d\n", pf.Pages())
			return nil
		},
	}
}
