package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/mothball/pkg/style"
)

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.NewTerminalRenderer().RenderError(err))
		os.Exit(1)
	}
}
