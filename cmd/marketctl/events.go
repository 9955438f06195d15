package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print domain events (use --follow to poll)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		after, _ := cmd.Flags().GetUint64("after")
		follow, _ := cmd.Flags().GetBool("follow")
		interval, _ := cmd.Flags().GetDuration("interval")

		for {
			res, err := c.do(resty.MethodGet, "/events", nil, map[string]string{"after": fmt.Sprint(after)})
			if err != nil {
				return err
			}
			for _, ev := range res.Get("data").Array() {
				if !viper.GetBool("json") {
					pterm.Printfln("%6d  %-22s  %-36s  %s -> %s",
						ev.Get("seq").Uint(),
						ev.Get("kind").String(),
						ev.Get("session_id").String(),
						ev.Get("from_status").String(),
						ev.Get("to_status").String())
				}
			}
			after = res.Get("meta.next").Uint()
			if !follow {
				return nil
			}
			time.Sleep(interval)
		}
	},
}

func init() {
	eventsCmd.Flags().Uint64("after", 0, "only events after this sequence number")
	eventsCmd.Flags().Bool("follow", false, "keep polling for new events")
	eventsCmd.Flags().Duration("interval", 2*time.Second, "poll interval with --follow")
}
