package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and move job sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		query := map[string]string{}
		for _, name := range []string{"status", "template", "from", "to"} {
			v, _ := cmd.Flags().GetString(name)
			if v == "" {
				continue
			}
			key := name
			if name == "template" {
				key = "template_id"
			}
			query[key] = v
		}
		if mine, _ := cmd.Flags().GetBool("mine"); mine {
			query["assigned_to"] = viper.GetString("actor-id")
		}
		res, err := c.do(resty.MethodGet, "/sessions", nil, query)
		if err != nil {
			return err
		}
		printSessions(res.Get("data").Array())
		return nil
	},
}

var sessionGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "Show a session and its completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		res, err := c.do(resty.MethodGet, "/sessions/"+args[0], nil, nil)
		if err != nil {
			return err
		}
		printSession(res.Get("data"))
		comp, err := c.do(resty.MethodGet, "/sessions/"+args[0]+"/completion", nil, nil)
		if err != nil {
			return err
		}
		printCompletion(comp.Get("data"))
		return nil
	},
}

var sessionPriceCmd = &cobra.Command{
	Use:   "price <session-id> <amount|none>",
	Short: "Override a session's price, or clear the override with none",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var price *float64
		if !strings.EqualFold(args[1], "none") {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			price = &v
		}
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		res, err := c.do(resty.MethodPut, "/sessions/"+args[0]+"/price", map[string]any{"price_override": price}, nil)
		if err != nil {
			return err
		}
		printSession(res.Get("data"))
		return nil
	},
}

func sessionAction(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}
			res, err := c.do(resty.MethodPost, "/sessions/"+args[0]+path, nil, nil)
			if err != nil {
				return err
			}
			printSession(res.Get("data"))
			return nil
		},
	}
}

func init() {
	sessionListCmd.Flags().String("status", "", "comma separated statuses")
	sessionListCmd.Flags().String("template", "", "template id")
	sessionListCmd.Flags().String("from", "", "first date (YYYY-MM-DD)")
	sessionListCmd.Flags().String("to", "", "last date (YYYY-MM-DD)")
	sessionListCmd.Flags().Bool("mine", false, "only sessions assigned to the current actor")

	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionGetCmd)
	sessionCmd.AddCommand(sessionPriceCmd)
	sessionCmd.AddCommand(sessionAction("claim", "Claim an OFFERED session", "/claim"))
	sessionCmd.AddCommand(sessionAction("approve", "Approve a claim", "/approve"))
	sessionCmd.AddCommand(sessionAction("refuse", "Refuse a claim", "/refuse"))
	sessionCmd.AddCommand(sessionAction("start", "Start an approved session", "/start"))
	sessionCmd.AddCommand(sessionAction("complete", "Complete a session", "/complete"))
	sessionCmd.AddCommand(sessionAction("cancel", "Cancel a session", "/cancel"))
}
