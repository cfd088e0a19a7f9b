package main

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/nfcond/cmd"
)

const defaultConfigFile = "/etc/nfcond/nfcond.hcl"

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)
		configFile := serveFlags.String("config", defaultConfigFile, "Configuration file")
		serveFlags.StringVar(configFile, "c", defaultConfigFile, "Configuration file (short)")
		serveFlags.Parse(os.Args[2:])

		if err := cmd.RunServe(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Serve failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		configFile := checkFlags.String("config", defaultConfigFile, "Configuration file")
		checkFlags.StringVar(configFile, "c", defaultConfigFile, "Configuration file (short)")
		checkFlags.Parse(os.Args[2:])

		if err := cmd.RunCheck(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("nfcond %s\n", version)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`nfcond - runtime condition variables for packet-filter rules

Usage:
  nfcond serve [-c config]   Run the daemon
  nfcond check [-c config]   Validate a configuration file
  nfcond version             Print version`)
}
