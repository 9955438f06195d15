package main

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "marketctl",
	Short: "Job marketplace CLI",
	Long: "-------------------------------------------------------------------\n" +
		"                     Job marketplace CLI\n" +
		"-------------------------------------------------------------------",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	cobra.EnableCommandSorting = false

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.marketctl.yaml)")
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "API base URL (or MARKETCTL_SERVER)")
	rootCmd.PersistentFlags().String("actor-id", "", "actor id forwarded as X-Actor-ID (or MARKETCTL_ACTOR_ID)")
	rootCmd.PersistentFlags().String("role", "", "actor role: EMPLOYER, EMPLOYEE, CUSTOMER (or MARKETCTL_ROLE)")
	rootCmd.PersistentFlags().String("status", "ACTIVE", "actor account status (or MARKETCTL_STATUS)")
	rootCmd.PersistentFlags().String("identity-token", "", "shared identity token (or MARKETCTL_IDENTITY_TOKEN)")
	rootCmd.PersistentFlags().Bool("json", false, "print raw JSON responses")

	for _, name := range []string{"server", "actor-id", "role", "status", "identity-token", "json"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(checklistCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(eventsCmd)
}

func initConfig() error {
	if path, _ := rootCmd.PersistentFlags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".marketctl")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("MARKETCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			pterm.Warning.Printfln("Could not read config: %v", err)
		}
	}
	return nil
}
