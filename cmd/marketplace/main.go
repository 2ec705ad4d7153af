package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marketplace/internal/interfaces/cli/migrate"
	"marketplace/internal/interfaces/cli/server"
)

func main() {
	root := &cobra.Command{
		Use:   "marketplace",
		Short: "Subscription marketplace API",
	}
	root.AddCommand(server.NewCommand())
	root.AddCommand(migrate.NewCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
