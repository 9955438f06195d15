package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage job templates",
}

var templateCreateCmd = &cobra.Command{
	Use:   "create -f template.json",
	Short: "Create a DRAFT template from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		res, err := c.do(resty.MethodPost, "/templates", body, nil)
		if err != nil {
			return err
		}
		if !viper.GetBool("json") {
			pterm.Success.Printfln("Created template %s (%s)", res.Get("data.id").String(), res.Get("data.job_code").String())
		}
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		mine, _ := cmd.Flags().GetBool("mine")
		query := map[string]string{"status": status}
		if mine {
			query["employer_id"] = viper.GetString("actor-id")
		}
		res, err := c.do(resty.MethodGet, "/templates", nil, query)
		if err != nil || viper.GetBool("json") {
			return err
		}
		rows := res.Get("data").Array()
		if len(rows) == 0 {
			pterm.Info.Println("No templates found.")
			return nil
		}
		data := pterm.TableData{{"ID", "CODE", "TITLE", "STATUS", "DAYS", "STEPS"}}
		for _, t := range rows {
			data = append(data, []string{
				t.Get("id").String(),
				t.Get("job_code").String(),
				t.Get("title").String(),
				t.Get("status").String(),
				t.Get("weekdays").String(),
				fmt.Sprint(len(t.Get("steps").Array())),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func templateAction(use, short, path, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <template-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}
			res, err := c.do(resty.MethodPost, "/templates/"+args[0]+path, nil, nil)
			if err != nil {
				return err
			}
			if !viper.GetBool("json") {
				pterm.Success.Printfln("%s: %s", done, res.Get("data.status").String())
			}
			return nil
		},
	}
}

var templateGenerateCmd = &cobra.Command{
	Use:   "generate <template-id>",
	Short: "Generate OFFERED sessions over a horizon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		horizon, _ := cmd.Flags().GetInt("horizon")
		res, err := c.do(resty.MethodPost, "/templates/"+args[0]+"/generate", map[string]int{"horizon_days": horizon}, nil)
		if err != nil {
			return err
		}
		printSessions(res.Get("data").Array())
		return nil
	},
}

func init() {
	templateCreateCmd.Flags().StringP("file", "f", "", "template JSON file")
	_ = templateCreateCmd.MarkFlagRequired("file")
	templateListCmd.Flags().String("status", "", "filter by status")
	templateListCmd.Flags().Bool("mine", false, "only templates owned by the current actor")
	templateGenerateCmd.Flags().Int("horizon", 14, "days ahead to generate")

	templateCmd.AddCommand(templateCreateCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateAction("activate", "Activate a DRAFT template", "/activate", "Template activated"))
	templateCmd.AddCommand(templateAction("archive", "Archive a template", "/archive", "Template archived"))
	templateCmd.AddCommand(templateGenerateCmd)
}
