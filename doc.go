// Package typesplit sorts the lines of one or more text files into three
// typed partitions (integers, floats and strings), writes each partition to
// its own output file and reports statistics about what it found.
//
// # Usage
//
//	typesplit [flags] file...
//
// Flags and file names may be interleaved:
//
//	typesplit -o out -p result_ in1.txt -f in2.txt.gz
//
// writes out/result_integers.txt, out/result_floats.txt and
// out/result_strings.txt and prints full statistics to stdout.
//
// # Classification
//
// Each line is tested in order. A line of optional minus sign and digits is
// an integer and must fit in 64 bits. A line with an optional sign, a
// decimal point followed by digits and an optional exponent is a float and
// must be finite. Anything else is a string, the empty line included. Lines that look numeric but cannot be
// represented are dropped with a notice.
//
// # Merging
//
// Files are read in parallel and their lines are interleaved round-robin:
// the first line of every file, then the second line of every file, and so
// on. The default drain policy consumes every line of every file. The keyed
// policy stops as soon as the second file runs out.
//
// # Key Packages
//
//	internal/classify  - Line classification
//	internal/pipeline  - Load, merge and write stages
//	internal/stats     - Partition statistics and report rendering
//	pkg/config         - Run configuration with YAML files and ${VAR} expansion
//	pkg/compression    - gzip, zstd, snappy, s2 and lz4 streams
//	pkg/errors         - Structured error handling
//	pkg/logger         - Structured logging
//	pkg/metrics        - Prometheus metrics with textfile export
//	pkg/observability  - OpenTelemetry tracing
//	pkg/profiling      - pprof capture
//
// # Configuration
//
// A YAML file passed with --config supplies defaults that flags override:
//
//	output_dir: ${OUT_DIR}
//	prefix: result_
//	stats: full
//	stats_format: json
//	merge_policy: drain
//	compression:
//	  algorithm: zstd
//
// Environment variables are expanded with ${VAR_NAME} syntax and a .env file
// in the working directory is loaded at startup.
package typesplit
