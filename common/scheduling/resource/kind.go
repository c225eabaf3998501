package resource

import (
	"fmt"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
)

// Kind identifies the offending resource in a validation failure. It plays
// the same role as the teacher's Kind enum in manager.go: a value good
// enough to name "which resource went negative" in a log line or a fatal
// diagnostic without forcing every caller to pass around a bare string.
type Kind string

const (
	NoResource Kind = "N/A"
	CPU        Kind = "CPU"
	GPU        Kind = "GPU"
	VRAM       Kind = "VRAM"
	Memory     Kind = "Memory"
	Other      Kind = "Other"
)

func (k Kind) String() string {
	return string(k)
}

// log is the package-level logger shared by every mutating operation in
// this package, initialized the way the teacher initializes per-struct
// loggers via config.InitLogger in allocation_manager.go and
// transaction.go.
var log logger.Logger

func init() {
	config.InitLogger(&log, "scheduling-resource")
}

// fatalf logs an Error-level diagnostic and panics. Used for programming
// errors per the error-handling classes in this package's design: these
// guard the node's accounting and must never be silently corrected.
func fatalf(format string, args ...interface{}) {
	log.Error(format, args...)
	panic(fmt.Errorf(format, args...))
}
