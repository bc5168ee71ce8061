// Package main provides the volpack CLI tool for compressing,
// inspecting and distributing chunked 3D volume containers.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
