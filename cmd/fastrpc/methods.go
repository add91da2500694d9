package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func methodsCmd(globals *globalFlags) *cobra.Command {
	var (
		protoPaths []string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "methods [proto files or directories...]",
		Short: "List the methods in the catalog",
		Long: `List every method declared by the configured proto files plus any
given as arguments.

Examples:
  fastrpc methods api/
  fastrpc methods --proto-path third_party -v api/orders.proto`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}
			cfg.Methods = append(cfg.Methods, args...)
			cfg.ProtoPaths = append(cfg.ProtoPaths, protoPaths...)

			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !verbose {
				for _, name := range reg.ListMethods() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			for _, method := range reg.Methods() {
				fmt.Fprintf(out, "%s(%s) returns (%s)\n", method.FullName(), method.Request, method.Response)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&protoPaths, "proto-path", nil, "Directories searched for proto imports")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show request and response types")

	return cmd
}
