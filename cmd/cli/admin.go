package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "operator only operations for the node",
}

func init() {
	adminCmd.AddCommand(advanceCmd)
	adminCmd.AddCommand(resourceUsageCmd)
	adminCmd.AddCommand(configCmd)
	adminCmd.AddCommand(populateCmd)
}

var (
	advanceCmd = &cobra.Command{
		Use:   "advance [height]",
		Short: "commit the current block and move to [height], or the next height if omitted",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var h uint64
			if len(args) == 1 {
				var err error
				if h, err = strconv.ParseUint(args[0], 10, 64); err != nil {
					l.Fatal(err.Error())
				}
			}
			writeToConsole(client.AdvanceHeight(h))
		},
	}

	resourceUsageCmd = &cobra.Command{
		Use:   "resource-usage",
		Short: "get node resource usage",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.ResourceUsage())
		},
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "retrieve the config being used by the node",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Config())
		},
	}

	populateCmd = &cobra.Command{
		Use:   "populate <count>",
		Short: "cast <count> votes from randomly named principals into the active round",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			count, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				l.Fatal(err.Error())
			}
			Populate(count)
			writeToConsole(client.Results())
		},
	}
)
