package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func success(format string, args ...any) {
	fmt.Println(color.GreenString("✓ ") + fmt.Sprintf(format, args...))
}

func warn(format string, args ...any) {
	fmt.Println(color.YellowString("! ") + fmt.Sprintf(format, args...))
}
