// Package config provides run configuration for typesplit.
//
// # Sources
//
// A RunConfig is assembled from three layers, later layers winning:
//
//  1. DefaultRunConfig()
//  2. an optional YAML file passed with --config
//  3. command-line flags that were explicitly set
//
// # YAML
//
//	output_dir: ${OUT_DIR}
//	prefix: batch1_
//	append: true
//	stats: full
//	stats_format: json
//	merge_policy: drain
//	compression:
//	  algorithm: zstd
//	  level: better
//	workers: 8
//	log:
//	  level: info
//	  format: json
//	metrics_file: /var/lib/node_exporter/typesplit.prom
//
// ## Environment Variable Substitution
//
// Any ${VAR_NAME} in the file is replaced with the value of the environment
// variable before parsing. Unset variables become empty strings, which then
// fall back to defaults. A .env file in the working directory is loaded by
// the CLI before the config file is read.
package config
