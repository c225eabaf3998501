package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/google/uuid"

	"github.com/scusemua/resource-accountant/common/configuration"
	"github.com/scusemua/resource-accountant/common/metrics"
	"github.com/scusemua/resource-accountant/common/scheduling/resource"
	"github.com/scusemua/resource-accountant/common/utils"
)

var globalLogger = config.GetLogger("")

const defaultResourceSpec = "cpu=16,gpu=2,memory=64"

func usage() {
	fmt.Fprintln(os.Stderr, "usage: accountant <serve|inspect> [flags]")
	fmt.Fprintln(os.Stderr, "  serve   run the /metrics and /debug HTTP surface for a node")
	fmt.Fprintln(os.Stderr, "  inspect print the resolved options and an initial resource snapshot, then exit")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serve(os.Args[2:])
	case "inspect":
		inspect(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

// resolveOptions parses the flags common to both subcommands: an optional
// -config TOML file (applied first, so flags given on the command line still
// win) plus every AccountantOptions field registered directly on fs.
func resolveOptions(fs *flag.FlagSet, args []string) (*configuration.AccountantOptions, string) {
	opts := configuration.DefaultOptions()
	opts.RegisterFlags(fs)

	configPath := fs.String("config", "", "path to a TOML file overriding the default options")
	resourcesFlag := fs.String("resources", defaultResourceSpec,
		"comma-separated name=quantity pairs describing this node's total resource capacity")

	if err := fs.Parse(args); err != nil {
		globalLogger.Error("Failed to parse flags: %v", err)
		os.Exit(1)
	}

	if *configPath != "" {
		loaded, err := configuration.LoadFromFile(*configPath)
		if err != nil {
			globalLogger.Error("Failed to load config file %q: %v", *configPath, err)
			os.Exit(1)
		}
		*opts = *loaded

		// Parse again so that flags given on the command line override the file.
		if err := fs.Parse(args); err != nil {
			globalLogger.Error("Failed to parse flags: %v", err)
			os.Exit(1)
		}
	}

	return opts, *resourcesFlag
}

func serve(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	opts, resourcesFlag := resolveOptions(fs, args)

	rs, err := parseResourceSpec(resourcesFlag)
	if err != nil {
		globalLogger.Error("Invalid -resources spec: %v", err)
		os.Exit(1)
	}

	instanceID := uuid.NewString()

	resources := resource.NewSchedulingResources(rs)
	resources.SetMemoryBlockSizeMiB(opts.MemoryBlockSizeMiB)

	if opts.PrettyPrintOptions {
		globalLogger.Info("Starting accountant instance %s on node %s with options:\n%s",
			instanceID, opts.NodeID, opts.PrettyString(2))
	} else {
		globalLogger.Info("Starting accountant instance %s on node %s.", instanceID, opts.NodeID)
	}

	var metricsManager *metrics.Manager
	stopRefresh := make(chan struct{})
	if !opts.DisableMetrics {
		metricsManager = metrics.NewManager(opts.NodeID, opts.PrometheusPort, resources)
		resources.SetObserver(metricsManager)
		resources.PublishSnapshot()

		if err := metricsManager.Start(); err != nil {
			globalLogger.Error("Failed to start metrics server: %v", err)
			os.Exit(1)
		}
		globalLogger.Info(utils.GreenStyle.Render(
			fmt.Sprintf("Serving /metrics and /debug on port %d", opts.PrometheusPort)))

		go refreshGaugesPeriodically(resources, opts.PrometheusInterval, stopRefresh)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	globalLogger.Info("Shutting down accountant instance %s.", instanceID)

	close(stopRefresh)

	if metricsManager != nil {
		if err := metricsManager.Stop(); err != nil {
			globalLogger.Error("Error while stopping metrics server: %v", err)
		}
	}
}

// refreshGaugesPeriodically re-publishes resources's current snapshot to
// its observer every intervalSeconds, so the gauges stay current even
// across a stretch with no capacity- or usage-affecting call, per
// configuration.AccountantOptions.PrometheusInterval. Acquire/Release/
// UpdateResourceCapacity/AddResource/DeleteResource already publish on
// every mutation; this is the idle-period backstop.
func refreshGaugesPeriodically(resources *resource.SchedulingResources, intervalSeconds int, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Duration(intervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			resources.PublishSnapshot()
		case <-stop:
			return
		}
	}
}

func inspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	opts, resourcesFlag := resolveOptions(fs, args)

	rs, err := parseResourceSpec(resourcesFlag)
	if err != nil {
		globalLogger.Error("Invalid -resources spec: %v", err)
		os.Exit(1)
	}

	resources := resource.NewSchedulingResources(rs)
	resources.SetMemoryBlockSizeMiB(opts.MemoryBlockSizeMiB)

	fmt.Println(utils.BlueStyle.Render(fmt.Sprintf("Node: %s", opts.NodeID)))
	fmt.Println(utils.GrayStyle.Render(opts.PrettyString(2)))
	fmt.Println(utils.GreenStyle.Render(resources.DebugString()))
}

// parseResourceSpec parses a comma-separated "name=quantity" list into a
// ResourceSet, the same shape of input a -resources flag accepts. Names are
// sorted before insertion only for deterministic error messages; ResourceSet
// itself does not require any ordering.
func parseResourceSpec(spec string) (*resource.ResourceSet, error) {
	rs := resource.NewResourceSet()
	if strings.TrimSpace(spec) == "" {
		return rs, nil
	}

	pairs := strings.Split(spec, ",")
	sort.Strings(pairs)

	for _, pair := range pairs {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed resource entry %q, expected name=quantity", pair)
		}

		name := strings.TrimSpace(kv[0])
		qty, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed quantity for resource %q: %w", name, err)
		}

		rs.AddOrUpdate(name, resource.NewFixedPointFromFloat(qty))
	}

	return rs, nil
}
