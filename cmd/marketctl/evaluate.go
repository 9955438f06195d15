package main

import (
	"github.com/go-resty/resty/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <session-id>",
	Short: "Rate a completed session (1-5)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, _ := cmd.Flags().GetInt("rating")
		comment, _ := cmd.Flags().GetString("comment")
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		res, err := c.do(resty.MethodPost, "/sessions/"+args[0]+"/evaluation",
			map[string]any{"rating": rating, "comment": comment}, nil)
		if err != nil {
			return err
		}
		if !viper.GetBool("json") {
			pterm.Success.Printfln("Evaluation %s recorded with rating %d", res.Get("data.id").String(), res.Get("data.rating").Int())
		}
		return nil
	},
}

func init() {
	evaluateCmd.Flags().Int("rating", 0, "rating from 1 to 5")
	evaluateCmd.Flags().String("comment", "", "optional comment")
	_ = evaluateCmd.MarkFlagRequired("rating")
}
