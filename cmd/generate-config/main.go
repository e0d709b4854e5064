package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/storelink/storelink/pkg/config"
)

func main() {
	cfg := config.GetDefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling config: %v\n", err)
		os.Exit(1)
	}

	header := "# storelink configuration\n" +
		"# Values can be overridden with STORELINK_-prefixed environment variables,\n" +
		"# e.g. STORELINK_SERVER_LISTEN_ADDRESS=:9090\n\n"

	outputFile := "config.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if err := os.WriteFile(outputFile, append([]byte(header), data...), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Default configuration written to %s\n", outputFile)
}
