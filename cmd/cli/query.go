package cli

import (
	"fmt"
	"time"

	"github.com/canopy-network/ballot/lib"
	"github.com/nsf/jsondiff"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "query the voting node rpc",
}

var (
	height, eligible = uint64(0), uint64(0)
	interval         = time.Second
)

func init() {
	eventsCmd.Flags().Uint64Var(&height, "height", 0, "height of the events, 0 is the current height")
	turnoutCmd.Flags().Uint64Var(&eligible, "eligible", 0, "size of the electorate, 0 uses the node configuration")
	watchCmd.Flags().DurationVar(&interval, "interval", time.Second, "how often the results are polled")
	queryCmd.AddCommand(heightCmd)
	queryCmd.AddCommand(resultsCmd)
	queryCmd.AddCommand(statusCmd)
	queryCmd.AddCommand(winnerCmd)
	queryCmd.AddCommand(turnoutCmd)
	queryCmd.AddCommand(voterCmd)
	queryCmd.AddCommand(votersCmd)
	queryCmd.AddCommand(eventsCmd)
	queryCmd.AddCommand(watchCmd)
}

var (
	heightCmd = &cobra.Command{
		Use:   "height",
		Short: "query the height of the block being built",
		Run: func(cmd *cobra.Command, args []string) {
			h, err := client.Height()
			if err != nil {
				l.Fatal(err.Error())
			}
			writeToConsole(h.Height, nil)
		},
	}

	resultsCmd = &cobra.Command{
		Use:   "results",
		Short: "query the tallies of the round",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Results())
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "query the state of the voting window",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Status())
		},
	}

	winnerCmd = &cobra.Command{
		Use:   "winner",
		Short: "query the leading choice and the differential",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Winner())
		},
	}

	turnoutCmd = &cobra.Command{
		Use:   "turnout --eligible=100",
		Short: "query the share of the electorate that voted",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Turnout(eligible))
		},
	}

	voterCmd = &cobra.Command{
		Use:   "voter <principal>",
		Short: "query the vote of a principal in the round",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Voter(lib.Principal(args[0])))
		},
	}

	votersCmd = &cobra.Command{
		Use:   "voters",
		Short: "query every voter of the round",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.Voters())
		},
	}

	eventsCmd = &cobra.Command{
		Use:   "events --height=1",
		Short: "query the events emitted at a height",
		Run: func(cmd *cobra.Command, args []string) {
			h := height
			if h == 0 {
				current, err := client.Height()
				if err != nil {
					l.Fatal(err.Error())
				}
				h = current.Height
			}
			writeToConsole(client.EventsByHeight(h))
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch --interval=1s",
		Short: "print every change to the results until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			var last []byte
			opts := jsondiff.DefaultConsoleOptions()
			for ; ; time.Sleep(interval) {
				results, err := client.Results()
				if err != nil {
					l.Fatal(err.Error())
				}
				bz, err := lib.MarshalJSONIndent(results)
				if err != nil {
					l.Fatal(err.Error())
				}
				if last == nil {
					fmt.Println(string(bz))
				} else if diff, explanation := jsondiff.Compare(last, bz, &opts); diff != jsondiff.FullMatch {
					fmt.Println(explanation)
				}
				last = bz
			}
		},
	}
)
