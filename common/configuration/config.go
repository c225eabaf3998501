package configuration

import (
	"flag"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
)

// AccountantOptions includes every configuration parameter accepted by the
// accountant binary. It follows the same tagged-struct, pretty-printable
// shape as the teacher's own options structs, but trimmed to what a
// per-node resource accountant actually needs.
type AccountantOptions struct {
	NodeID string `name:"node_id" toml:"node_id" json:"node_id" description:"Identifies this node in logs and on the metrics/debug HTTP surface."`

	PrometheusPort     int  `name:"prometheus_port" toml:"prometheus_port" json:"prometheus_port" description:"Port on which this node serves Prometheus metrics and the /debug endpoint."`
	PrometheusInterval int  `name:"prometheus_interval" toml:"prometheus_interval" json:"prometheus_interval" description:"Frequency in seconds of how often cached gauges are refreshed."`
	DisableMetrics     bool `name:"disable_metrics" toml:"disable_metrics" json:"disable_metrics" description:"If true, the metrics/debug HTTP server is never started."`

	// MemoryBlockSizeMiB is the size, in MiB, of one stored unit of a
	// memory-family resource. DebugString renders memory quantities as
	// q * MemoryBlockSizeMiB / 1024 GiB. This must be configuration, not a
	// constant, since adopters may declare memory resources at a different
	// granularity.
	MemoryBlockSizeMiB int64 `name:"memory_block_size_mib" toml:"memory_block_size_mib" json:"memory_block_size_mib" description:"Size, in MiB, of one stored unit of a memory-family resource."`

	DebugMode bool `name:"debug_mode" toml:"debug_mode" json:"debug_mode" description:"Enable verbose/trace logging."`

	PrettyPrintOptions bool `name:"pretty_print_options" toml:"pretty_print_options" json:"pretty_print_options"`
}

// DefaultOptions returns an AccountantOptions populated with the defaults
// every field would need to behave sanely if never overridden.
func DefaultOptions() *AccountantOptions {
	return &AccountantOptions{
		NodeID:             "node-0",
		PrometheusPort:     8089,
		PrometheusInterval: 5,
		MemoryBlockSizeMiB: 50,
	}
}

// RegisterFlags binds every AccountantOptions field to fs, the way
// hanfei1991-microcosm's pkg/metastore/config.go binds its Config fields to
// a flag.FlagSet before parsing.
func (opts *AccountantOptions) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&opts.NodeID, "node_id", opts.NodeID, "Identifies this node in logs and on the metrics/debug HTTP surface.")
	fs.IntVar(&opts.PrometheusPort, "prometheus_port", opts.PrometheusPort, "Port on which this node serves Prometheus metrics and the /debug endpoint.")
	fs.IntVar(&opts.PrometheusInterval, "prometheus_interval", opts.PrometheusInterval, "Frequency in seconds of how often cached gauges are refreshed.")
	fs.BoolVar(&opts.DisableMetrics, "disable_metrics", opts.DisableMetrics, "If true, the metrics/debug HTTP server is never started.")
	fs.Int64Var(&opts.MemoryBlockSizeMiB, "memory_block_size_mib", opts.MemoryBlockSizeMiB, "Size, in MiB, of one stored unit of a memory-family resource.")
	fs.BoolVar(&opts.DebugMode, "debug_mode", opts.DebugMode, "Enable verbose/trace logging.")
	fs.BoolVar(&opts.PrettyPrintOptions, "pretty_print_options", opts.PrettyPrintOptions, "Pretty-print the resolved options on startup.")
}

// LoadFromFile decodes a TOML file into a fresh AccountantOptions seeded
// with DefaultOptions, the same toml.Decode-into-struct pattern
// pkg/metastore/config.go uses.
func LoadFromFile(path string) (*AccountantOptions, error) {
	opts := DefaultOptions()
	if _, err := toml.DecodeFile(path, opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// PrettyString is the same as String, except that PrettyString calls
// json.MarshalIndent instead of json.Marshal.
func (opts *AccountantOptions) PrettyString(indentSize int) string {
	indentBuilder := strings.Builder{}
	for i := 0; i < indentSize; i++ {
		indentBuilder.WriteString(" ")
	}

	m, err := json.MarshalIndent(opts, "", indentBuilder.String())
	if err != nil {
		panic(err)
	}

	return string(m)
}

// Clone returns a shallow copy of opts.
func (opts *AccountantOptions) Clone() *AccountantOptions {
	clone := *opts
	return &clone
}

func (opts *AccountantOptions) String() string {
	m, err := json.Marshal(opts)
	if err != nil {
		panic(err)
	}

	return string(m)
}
