package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/pm/internal/dispatch"
)

var listOps bool

var callCmd = &cobra.Command{
	Use:   "call <op> [params]",
	Short: "run a single operation with JSON params",
	Long: `Run a single named operation, e.g.

  pm call entries.list '{"project_id":"...","query":"draft"}'

Params are read from stdin when omitted and stdin is piped. The response is
printed as {"ok":true,"result":...} or {"ok":false,"error":{"kind":...}}.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if listOps {
			return cobra.NoArgs(cmd, args)
		}

		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		d := newDispatcher(r)
		if listOps {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(d.Ops(), "\n"))
			return nil
		}

		var params json.RawMessage
		switch {
		case len(args) == 2:
			params = json.RawMessage(args[1])
		case stdinPiped(cmd):
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading params: %w", err)
			}
			params = data
		}

		resp := d.Do(ctx, &dispatch.Request{Op: args[0], Params: params})
		if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
			return err
		}

		if !resp.OK {
			return resp.Error
		}

		return nil
	},
}

func init() {
	callCmd.Flags().BoolVarP(&listOps, "list", "l", false, "list the available operations")
	rootCmd.AddCommand(callCmd)
}
