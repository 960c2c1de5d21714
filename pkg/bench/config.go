package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/informalsystems/go-actor/internal/monitor"
	"gopkg.in/yaml.v3"
)

// Overflow strategies accepted in the configuration. They only apply to
// bounded mailboxes.
const (
	OverflowBlock = "block"
	OverflowFail  = "fail"
)

// Config represents the configuration for a single benchmark run.
type Config struct {
	Producers        int      `json:"producers" yaml:"producers"`                 // The number of producer actors sending to the sink.
	Messages         int      `json:"messages" yaml:"messages"`                   // The number of messages each producer sends.
	MailboxCapacity  int      `json:"mailbox_capacity" yaml:"mailbox_capacity"`   // The capacity of every mailbox (0 for unbounded).
	OverflowStrategy string   `json:"overflow_strategy" yaml:"overflow_strategy"` // What sends do when a bounded mailbox is full ("block" or "fail").
	Timeout          Duration `json:"timeout" yaml:"timeout"`                     // The maximum time to allow for the run.
	StatsOutputFile  string   `json:"stats_output_file" yaml:"stats_output_file"` // Where to write aggregate statistics as CSV (optional).
	MonitorEnabled   bool     `json:"monitor_enabled" yaml:"monitor_enabled"`     // Whether to serve metrics and events over HTTP during the run.
	MonitorWait      Duration `json:"monitor_wait" yaml:"monitor_wait"`           // How long to keep the monitor up after the run completes.

	// Only used if MonitorEnabled is set.
	Monitor monitor.Config `json:"monitor" yaml:"monitor"`
}

// DefaultConfig returns the configuration used when neither a config file
// nor flags say otherwise.
func DefaultConfig() Config {
	return Config{
		Producers:        4,
		Messages:         10000,
		MailboxCapacity:  0,
		OverflowStrategy: OverflowBlock,
		Timeout:          Duration(time.Minute),
		Monitor:          monitor.DefaultConfig(),
	}
}

// LoadConfigFile reads the YAML file at filename over the given base
// configuration. Fields absent from the file keep their base values.
func LoadConfigFile(filename string, base Config) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return base, NewError(ErrFailedToReadConfigFile, err, filename)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, NewError(ErrFailedToDecodeConfig, err, filename)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Producers < 1 {
		return fmt.Errorf("Expected producers to be >= 1, but was %d", c.Producers)
	}
	if c.Messages < 1 {
		return fmt.Errorf("Expected messages per producer to be >= 1, but was %d", c.Messages)
	}
	if c.MailboxCapacity < 0 {
		return fmt.Errorf("Expected mailbox capacity to be >= 0, but was %d", c.MailboxCapacity)
	}
	if c.OverflowStrategy != OverflowBlock && c.OverflowStrategy != OverflowFail {
		return fmt.Errorf("Expected overflow strategy to be one of \"%s\" or \"%s\", but was %s", OverflowBlock, OverflowFail, c.OverflowStrategy)
	}
	if c.Timeout.Duration() <= 0 {
		return fmt.Errorf("Expected timeout to be positive, but was %s", c.Timeout)
	}
	if c.MonitorWait.Duration() < 0 {
		return fmt.Errorf("Expected monitor wait to be >= 0, but was %s", c.MonitorWait)
	}
	if c.MonitorEnabled {
		if len(c.Monitor.BindAddr) == 0 {
			return fmt.Errorf("Monitor bind address must be specified")
		}
		if len(c.Monitor.AdminUsername) > 0 && len(c.Monitor.AdminPasswordHash) == 0 {
			return fmt.Errorf("Admin password hash must be specified along with the admin username")
		}
	}
	return nil
}

func (c Config) ToJSON() string {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%v", c)
	}
	return string(b)
}
