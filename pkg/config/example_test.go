package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/typesplit/pkg/config"
)

// ExampleDefaultRunConfig shows the defaults of a bare invocation.
func ExampleDefaultRunConfig() {
	cfg := config.DefaultRunConfig()

	fmt.Printf("Output dir: %s\n", cfg.OutputDir)
	fmt.Printf("Stats: %s\n", cfg.Stats)
	fmt.Printf("Merge policy: %s\n", cfg.MergePolicy)
	fmt.Printf("Compression: %s\n", cfg.Compression.Algorithm)

	// Output:
	// Output dir: .
	// Stats: none
	// Merge policy: drain
	// Compression: none
}

// ExampleRunConfig_Validate shows how to validate a configuration
// before using it.
func ExampleRunConfig_Validate() {
	cfg := config.DefaultRunConfig()
	cfg.Stats = config.StatsFull
	cfg.Workers = 2

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	fmt.Println("Configuration is valid!")

	cfg.MergePolicy = "sideways"
	fmt.Println(cfg.Validate())

	// Output:
	// Configuration is valid!
	// validation: unknown merge policy
}
