// Command slsk is a CLI client for the Soulseek network: global connection
// flags via kong, search/browse/download subcommands via urfave/cli, and
// reflective `config get/set` subcommands generated from slskcfg.Config via
// recli, mirroring the shape of the teacher's own cmd/syncthing/cli.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AudriusButkevicius/recli"
	"github.com/alecthomas/kong"
	"github.com/urfave/cli"

	"github.com/nyatla/slsk-go/lib/coordinator"
	"github.com/nyatla/slsk-go/lib/logger"
	"github.com/nyatla/slsk-go/lib/model"
	"github.com/nyatla/slsk-go/lib/serverconn"
	"github.com/nyatla/slsk-go/lib/slskcfg"
)

var l = logger.DefaultLogger.NewFacility("cli", "command line interface")

// globalFlags mirrors the teacher's preCli: connection parameters parsed by
// kong before the urfave/cli subcommand dispatch takes over.
type globalFlags struct {
	Server   string `name:"server" help:"Soulseek server host." default:""`
	Port     int    `name:"port" help:"Soulseek server port." default:"0"`
	Account  string `name:"account" help:"Soulseek username."`
	Password string `name:"password" help:"Soulseek password."`
}

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "slsk:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := globalFlags{}
	parser, err := kong.New(&flags, kong.Name("slsk"), kong.Exit(func(int) {}))
	if err != nil {
		return err
	}
	// kong only needs to consume the global flags; anything it doesn't
	// recognize is left for the urfave/cli subcommand dispatch below.
	if _, err := parser.Parse(filterGlobalArgs(args[1:])); err != nil {
		l.Debugln("global flag parse:", err)
	}

	cfg := slskcfg.FromEnv()
	if flags.Server != "" {
		cfg.ServerHost = flags.Server
	}
	if flags.Port != 0 {
		cfg.ServerPort = flags.Port
	}
	if flags.Account != "" {
		cfg.Username = flags.Account
	}
	if flags.Password != "" {
		cfg.Password = flags.Password
	}

	recliCfg := recli.DefaultConfig
	configCommands, err := recli.New(recliCfg).Construct(&cfg)
	if err != nil {
		return err
	}

	app := cli.NewApp()
	app.Name = "slsk"
	app.Usage = "Soulseek peer-to-peer file sharing client"
	app.Metadata = map[string]interface{}{"config": &cfg}
	app.Commands = []cli.Command{
		{
			Name:        "config",
			Usage:       "View or change client configuration",
			Subcommands: configCommands,
		},
		searchCommand(&cfg),
		browseCommand(&cfg),
		downloadCommand(&cfg),
	}
	return app.Run(args)
}

// filterGlobalArgs strips the subcommand and its arguments so kong only
// sees the global flags, matching the teacher's own parseFlags comment
// ("kong only needs to parse the global arguments... before the
// subcommand").
func filterGlobalArgs(args []string) []string {
	var out []string
	for _, a := range args {
		if len(a) > 0 && a[0] != '-' {
			break
		}
		out = append(out, a)
	}
	return out
}

func searchCommand(cfg *slskcfg.Config) cli.Command {
	return cli.Command{
		Name:      "search",
		Usage:     "Search the network for files and print the best result",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			query := c.Args().First()
			if query == "" {
				return fmt.Errorf("search requires a query")
			}
			coord, sess, err := connect(cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := context.WithTimeout(context.Background(), model.AggregationWindow+10*time.Second)
			defer cancel()
			results, err := coord.Search(ctx, query, model.SearchInteractive, query)
			if err != nil {
				return err
			}
			fmt.Printf("%d result(s) for %q\n", len(results), query)
			best, ok := model.PickBestFile(results)
			if !ok {
				return fmt.Errorf("no audio files found for %q", query)
			}
			fmt.Printf("best match: %s (%s, %d bytes)\n", best.File.Filename, best.Username, best.File.Size)
			return nil
		},
	}
}

func browseCommand(cfg *slskcfg.Config) cli.Command {
	return cli.Command{
		Name:      "browse",
		Usage:     "Browse a user's shared files",
		ArgsUsage: "<username>",
		Action: func(c *cli.Context) error {
			username := c.Args().First()
			if username == "" {
				return fmt.Errorf("browse requires a username")
			}
			coord, sess, err := connect(cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			listing, err := coord.Browse(username)
			if err != nil {
				return err
			}
			for _, dir := range listing.Directories {
				fmt.Println(dir.Path)
				for _, f := range dir.Files {
					fmt.Printf("  %s (%d bytes)\n", f.Filename, f.Size)
				}
			}
			return nil
		},
	}
}

func downloadCommand(cfg *slskcfg.Config) cli.Command {
	return cli.Command{
		Name:      "download",
		Usage:     "Search, pick the best match, and download it from its owner",
		ArgsUsage: "<query>",
		Action: func(c *cli.Context) error {
			query := c.Args().First()
			if query == "" {
				return fmt.Errorf("download requires a query")
			}
			coord, sess, err := connect(cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := context.WithTimeout(context.Background(), model.AggregationWindow+10*time.Second)
			defer cancel()
			results, err := coord.Search(ctx, query, model.SearchInteractive, query)
			if err != nil {
				return err
			}
			best, ok := model.PickBestFile(results)
			if !ok {
				return fmt.Errorf("no audio files found for %q", query)
			}
			l.Infof("downloading %q from %s (%d bytes)", best.File.Filename, best.Username, best.File.Size)

			dl, err := coord.Download(best.Username, best.File.Filename, best.File.Size, func(downloaded uint64) {
				l.Debugf("%s: %d/%d bytes", best.File.Filename, downloaded, best.File.Size)
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s (%d/%d bytes)\n", dl.Filename, dl.State, dl.Downloaded, dl.ExpectedSize)
			if dl.State == model.DownloadFailed {
				return fmt.Errorf("download failed: %s", dl.FailReason)
			}
			return nil
		},
	}
}

// connect validates cfg, binds the coordinator's inbound acceptor, logs
// into the server advertising that acceptor's port, attaches the session to
// the coordinator, and starts its event-dispatch loop in the background.
// Callers own the returned session's lifetime (defer sess.Close()); the
// coordinator's Run goroutine exits on its own once the session closes.
func connect(cfg *slskcfg.Config) (*coordinator.Coordinator, *serverconn.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	coord, err := coordinator.New(coordinator.Config{Username: cfg.Username, DownloadDir: "downloads"})
	if err != nil {
		return nil, nil, err
	}
	sess, err := serverconn.ConnectAndLogin(cfg.ServerHost, cfg.ServerPort, cfg.Username, cfg.Password, coord.Port())
	if err != nil {
		return nil, nil, err
	}
	coord.AttachSession(sess)
	go func() {
		if err := coord.Run(context.Background()); err != nil {
			l.Debugln("coordinator run loop exited:", err)
		}
	}()
	return coord, sess, nil
}
