package main

import (
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage the persisted header mapping",
}

var mappingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted header mapping and custom fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		mapping, customFields, err := st.LoadMapping(ctx)
		if err != nil {
			return err
		}
		if len(mapping) == 0 {
			cmd.Println("no persisted mapping")
			return nil
		}

		headers := make([]string, 0, len(mapping))
		for h := range mapping {
			headers = append(headers, h)
		}
		sort.Strings(headers)
		for _, h := range headers {
			cmd.Printf("%s -> %s\n", h, mapping[h])
		}
		if len(customFields) > 0 {
			cmd.Println("custom fields:")
			for _, key := range customFields {
				cmd.Printf("  %s\n", key)
			}
		}
		return nil
	},
}

var mappingClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the persisted header mapping and custom fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ClearMapping(ctx); err != nil {
			return err
		}
		cmd.Println("mapping cleared")
		return nil
	},
}

func init() {
	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingClearCmd)
	rootCmd.AddCommand(mappingCmd)
}
