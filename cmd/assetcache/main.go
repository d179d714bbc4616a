// Package main provides the assetcache CLI tool for reading game assets
// through the cache and replaying recorded access traces against it.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
