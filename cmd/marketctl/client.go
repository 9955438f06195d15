package main

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
)

// apiClient talks to the marketplace REST API on behalf of one actor.
type apiClient struct {
	http *resty.Client
}

func newAPIClient() (*apiClient, error) {
	actorID := viper.GetString("actor-id")
	role := viper.GetString("role")
	if actorID == "" || role == "" {
		return nil, fmt.Errorf("actor not configured: pass --actor-id and --role or set MARKETCTL_ACTOR_ID / MARKETCTL_ROLE")
	}
	c := resty.New().
		SetBaseURL(viper.GetString("server")+"/api/v1").
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Actor-ID", actorID).
		SetHeader("X-Actor-Role", role).
		SetHeader("X-Actor-Status", viper.GetString("status"))
	if token := viper.GetString("identity-token"); token != "" {
		c.SetHeader("X-Identity-Token", token)
	}
	return &apiClient{http: c}, nil
}

// do sends the request and returns the parsed envelope. Error envelopes
// become Go errors carrying the server's code and message.
func (c *apiClient) do(method, path string, body any, query map[string]string) (gjson.Result, error) {
	req := c.http.R()
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("request failed: %w", err)
	}
	parsed := gjson.ParseBytes(resp.Body())
	if resp.IsError() || !parsed.Get("success").Bool() {
		code := parsed.Get("code").String()
		msg := parsed.Get("message").String()
		if msg == "" {
			msg = resp.Status()
		}
		if details := parsed.Get("details.fields"); details.Exists() {
			msg += " " + details.Raw
		}
		return parsed, fmt.Errorf("%s: %s", code, msg)
	}
	if viper.GetBool("json") {
		fmt.Println(parsed.Get("data").Raw)
	}
	return parsed, nil
}

func printSessions(rows []gjson.Result) {
	if viper.GetBool("json") {
		return
	}
	if len(rows) == 0 {
		pterm.Info.Println("No sessions found.")
		return
	}
	data := pterm.TableData{{"ID", "CODE", "DATE", "STATUS", "ASSIGNED TO"}}
	for _, s := range rows {
		data = append(data, []string{
			s.Get("id").String(),
			s.Get("session_code").String(),
			s.Get("scheduled_date").String(),
			s.Get("status").String(),
			s.Get("assigned_to").String(),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printSession(s gjson.Result) {
	if viper.GetBool("json") {
		return
	}
	pterm.Success.Printfln("%s %s is %s at %.2f", s.Get("session_code").String(), s.Get("id").String(), s.Get("status").String(), s.Get("effective_price").Float())
}

func printCompletion(c gjson.Result) {
	if viper.GetBool("json") {
		return
	}
	pterm.Info.Printfln("steps %d/%d, checklist %d/%d, %d%% complete",
		c.Get("steps_completed").Int(), c.Get("steps_total").Int(),
		c.Get("items_checked").Int(), c.Get("items_total").Int(),
		c.Get("percent").Int())
}
