package bench

// Version is the current version of the benchmarking tool.
const Version = "v0.1.0"
