package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/canopy-network/ballot/cmd/rpc"
	"github.com/canopy-network/ballot/controller"
	"github.com/canopy-network/ballot/fsm"
	"github.com/canopy-network/ballot/lib"
	"github.com/canopy-network/ballot/store"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rootCmd = &cobra.Command{
	Use:   "ballot",
	Short: "a binary choice voting node",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(rpc.SoftwareVersion)
	},
}

var (
	client, config, l = &rpc.Client{}, lib.Config{}, lib.LoggerI(nil)
	DataDir           = ""
)

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.PersistentFlags().StringVar(&DataDir, "data-dir", "", "custom data directory location (default $HOME/.ballot)")
	cobra.OnInitialize(initialize)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// initialize() loads the configuration and builds the logger and rpc client before any command runs
func initialize() {
	if DataDir == "" {
		DataDir = lib.DefaultDataDirPath()
	}
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	config = InitializeDataDirectory(DataDir, lib.NewDefaultLogger())
	l = lib.NewLogger(lib.LoggerConfig{Level: config.GetLogLevel()}, config.DataDirPath)
	client = rpc.NewClient(config.RPCUrl, config.AdminRPCUrl, time.Duration(config.TimeoutS)*time.Second, time.Duration(config.RetryMaxS)*time.Second)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "start the voting node",
	Run: func(cmd *cobra.Command, args []string) {
		Start()
	},
}

var initCmd = &cobra.Command{
	Use:   "init <administrator>",
	Short: "write the genesis file naming the contract administrator",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := filepath.Join(config.DataDirPath, lib.GenesisFilePath)
		if _, err := os.Stat(path); err == nil {
			l.Fatalf("%s already exists", path)
		}
		if err := fsm.WriteGenesisFile(config.DataDirPath, &fsm.GenesisState{Administrator: lib.Principal(args[0])}); err != nil {
			l.Fatal(err.Error())
		}
		l.Infof("Created %s with administrator %s", path, args[0])
	},
}

// Start() is the entrypoint of the application
func Start() {
	// initialize the metrics server
	metrics := lib.NewMetricsServer(config.MetricsConfig, l)
	// create a new database object from the config
	db, err := NewStore(config.StoreConfig, l)
	if err != nil {
		l.Fatal(err.Error())
	}
	// initialize the state machine, deploying from genesis if needed
	sm, err := fsm.New(config, db, metrics, l)
	if err != nil {
		l.Fatal(err.Error())
	}
	// create a new instance of the application
	app, err := controller.New(sm, config, metrics, l)
	if err != nil {
		l.Fatal(err.Error())
	}
	// initialize the rpc server
	rpcServer := rpc.NewServer(app, config, l)
	// start the metrics server
	metrics.Start()
	// run the block clock and the rpc server until a kill signal is received or either fails
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGABRT)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Run(ctx) })
	g.Go(func() error { return rpcServer.Start(ctx) })
	if e := g.Wait(); e != nil {
		l.Error(e.Error())
	}
	l.Info("Stopping the node")
	// gracefully stop the app
	app.Stop()
	// gracefully stop the metrics server
	metrics.Stop()
}

// NewStore() opens the configured database
func NewStore(c lib.StoreConfig, log lib.LoggerI) (lib.StoreI, lib.ErrorI) {
	if c.InMemory {
		return store.NewStoreInMemory(log)
	}
	return store.NewStore(c, log)
}

// InitializeDataDirectory() populates the data directory with the configuration file if missing
func InitializeDataDirectory(dataDirPath string, log lib.LoggerI) (c lib.Config) {
	// make the data dir if missing
	if err := os.MkdirAll(dataDirPath, os.ModePerm); err != nil {
		log.Fatal(err.Error())
	}
	// make the config.json file if missing
	configFilePath := filepath.Join(dataDirPath, lib.ConfigFilePath)
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		log.Infof("Creating %s file", lib.ConfigFilePath)
		if err = lib.DefaultConfig().WriteToFile(configFilePath); err != nil {
			log.Fatal(err.Error())
		}
	}
	c, err := lib.NewConfigFromFile(configFilePath)
	if err != nil {
		log.Fatal(err.Error())
	}
	c.DataDirPath = dataDirPath
	return
}

func writeToConsole(a any, err error) {
	if err != nil {
		l.Fatal(err.Error())
	}
	switch a.(type) {
	case int, uint32, uint64:
		p := message.NewPrinter(language.English)
		if _, err := p.Printf("%d\n", a); err != nil {
			l.Fatal(err.Error())
		}
	case string:
		fmt.Println(a)
	case *string:
		fmt.Println(*a.(*string))
	default:
		s, err := lib.MarshalJSONIndentString(a)
		if err != nil {
			l.Fatal(err.Error())
		}
		fmt.Println(s)
	}
}

// writeTxResult() prints the result of a transaction and exits non-zero if the contract rejected it
func writeTxResult(result *lib.TxResult, err lib.ErrorI) {
	if err != nil {
		l.Fatal(err.Error())
	}
	writeToConsole(result, nil)
	if !result.Success() {
		os.Exit(1)
	}
}
