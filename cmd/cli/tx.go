package cli

import (
	"strconv"
	"strings"

	"github.com/canopy-network/ballot/lib"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "submit a contract transaction to the node",
}

func init() {
	txCmd.AddCommand(txInitializeCmd)
	txCmd.AddCommand(txVoteCmd)
	txCmd.AddCommand(txCloseCmd)
}

var (
	txInitializeCmd = &cobra.Command{
		Use:   "initialize <caller> <duration>",
		Short: "start a new round lasting <duration> blocks, administrator only",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			duration, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				l.Fatal(err.Error())
			}
			writeTxResult(client.InitializeVoting(lib.Principal(args[0]), duration))
		},
	}

	txVoteCmd = &cobra.Command{
		Use:   "vote <caller> <A|B>",
		Short: "cast the caller's vote of the round",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			writeTxResult(client.Vote(lib.Principal(args[0]), lib.Choice(strings.ToUpper(args[1]))))
		},
	}

	txCloseCmd = &cobra.Command{
		Use:   "close <caller>",
		Short: "end the active round at the current block, administrator only",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeTxResult(client.CloseVotingEarly(lib.Principal(args[0])))
		},
	}
)
