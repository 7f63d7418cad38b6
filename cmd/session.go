package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	webmodels "github.com/ellavondegurechaff/gohye-trades/backend/models"
	webservices "github.com/ellavondegurechaff/gohye-trades/backend/services"
)

// sessionCMD mints a session token signed with web.session_key, for local
// development against the API.
var sessionCMD = &cobra.Command{
	Use:   "session",
	Short: "issue a development session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		username, _ := cmd.Flags().GetString("username")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		token, err := webservices.NewSessionService(cfg.Web.SessionKey).Encode(&webmodels.UserSession{
			DiscordID: user,
			Username:  username,
			ExpiresAt: time.Now().Add(ttl),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	sessionCMD.Flags().String("user", "", "party id carried by the session")
	sessionCMD.Flags().String("username", "", "display name")
	sessionCMD.Flags().Duration("ttl", 24*time.Hour, "session lifetime")
	mustMark(sessionCMD, "user")
	rootCmd.AddCommand(sessionCMD)
}
