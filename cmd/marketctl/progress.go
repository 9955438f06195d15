package main

import (
	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step <session-id> <step-id>",
	Short: "Mark a step done (or --undo)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		undo, _ := cmd.Flags().GetBool("undo")
		return toggle("/sessions/"+args[0]+"/steps/"+args[1], map[string]bool{"completed": !undo})
	},
}

var checklistCmd = &cobra.Command{
	Use:   "check <session-id> <item-id>",
	Short: "Check a checklist item (or --undo)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		undo, _ := cmd.Flags().GetBool("undo")
		return toggle("/sessions/"+args[0]+"/checklist/"+args[1], map[string]bool{"checked": !undo})
	},
}

func toggle(path string, body map[string]bool) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}
	res, err := c.do(resty.MethodPut, path, body, nil)
	if err != nil {
		return err
	}
	printCompletion(res.Get("data"))
	return nil
}

func init() {
	stepCmd.Flags().Bool("undo", false, "mark the step as not done")
	checklistCmd.Flags().Bool("undo", false, "uncheck the item")
}
