package main

import (
	"os"

	"github.com/informalsystems/go-actor/pkg/bench"
)

const appLongDesc = `Benchmarking tool for the go-actor runtime.
Spawns a number of producer actors that each send a sequence of messages to a
single sink actor, and reports the aggregate throughput. The sink verifies that
each producer's messages arrive exactly once and in order.

To run a benchmark with 8 producers sending 100000 messages each:
    actor-bench -p 8 -N 100000

To use bounded mailboxes that reject messages when full:
    actor-bench -p 8 -N 100000 --mailbox-capacity 1024 --overflow fail

To load settings from a YAML file and expose metrics while running:
    actor-bench --config bench.yaml --monitor --monitor-bind localhost:26680
`

func main() {
	os.Exit(bench.RunCLI(&bench.CLIConfig{
		AppName:      "actor-bench",
		AppShortDesc: "Benchmarking tool for the go-actor runtime",
		AppLongDesc:  appLongDesc,
	}))
}
