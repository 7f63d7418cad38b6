package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/decks"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database/models"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database/repositories"
	"github.com/ellavondegurechaff/gohye-trades/internal/logger"
)

// Operator commands for seeding ownership and decks. Trades never go
// through these.
var instancesCMD = &cobra.Command{
	Use:   "instances",
	Short: "manage card instance ownership",
}

var instancesGrantCMD = &cobra.Command{
	Use:   "grant",
	Short: "create a card instance owned by a party",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		cardID, _ := cmd.Flags().GetInt64("card")
		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			id = uuid.NewString()
		}

		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		instance := &models.CardInstance{ID: id, CardID: cardID, OwnerID: owner}
		if err := repositories.NewOwnershipRepository(db.BunDB()).Create(cmd.Context(), instance); err != nil {
			return err
		}
		logger.LogSystem("Card instance granted", "instance_id", id, "owner_id", owner, "card_id", cardID)
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var instancesListCMD = &cobra.Command{
	Use:   "list",
	Short: "list the card instances a party owns",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")

		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		instances, err := repositories.NewOwnershipRepository(db.BunDB()).ListByOwner(cmd.Context(), owner)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "INSTANCE\tCARD\tUPDATED")
		for _, i := range instances {
			fmt.Fprintf(w, "%s\t%d\t%s\n", i.ID, i.CardID, i.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var decksCMD = &cobra.Command{
	Use:   "decks",
	Short: "manage decks",
}

var decksCreateCMD = &cobra.Command{
	Use:   "create",
	Short: "create a deck for a party",
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		name, _ := cmd.Flags().GetString("name")

		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		deck := &decks.Deck{ID: uuid.NewString(), OwnerID: owner, Name: name}
		if err := repositories.NewDeckRepository(db.BunDB()).Create(cmd.Context(), deck); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), deck.ID)
		return nil
	},
}

var decksAddCMD = &cobra.Command{
	Use:   "add",
	Short: "add a card instance to a deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		deckID, _ := cmd.Flags().GetString("deck")
		instanceID, _ := cmd.Flags().GetString("instance")

		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return repositories.NewDeckRepository(db.BunDB()).AddInstance(cmd.Context(), deckID, instanceID)
	},
}

func init() {
	instancesGrantCMD.Flags().String("owner", "", "owning party id")
	instancesGrantCMD.Flags().Int64("card", 0, "catalog card id")
	instancesGrantCMD.Flags().String("id", "", "instance id, generated when empty")
	mustMark(instancesGrantCMD, "owner", "card")

	instancesListCMD.Flags().String("owner", "", "owning party id")
	mustMark(instancesListCMD, "owner")

	decksCreateCMD.Flags().String("owner", "", "owning party id")
	decksCreateCMD.Flags().String("name", "", "deck name")
	mustMark(decksCreateCMD, "owner", "name")

	decksAddCMD.Flags().String("deck", "", "deck id")
	decksAddCMD.Flags().String("instance", "", "card instance id")
	mustMark(decksAddCMD, "deck", "instance")

	instancesCMD.AddCommand(instancesGrantCMD, instancesListCMD)
	decksCMD.AddCommand(decksCreateCMD, decksAddCMD)
	rootCmd.AddCommand(instancesCMD, decksCMD)
}

func mustMark(cmd *cobra.Command, flags ...string) {
	for _, name := range flags {
		if err := cmd.MarkFlagRequired(name); err != nil {
			fmt.Fprintf(os.Stderr, "flag %s: %v\n", name, err)
			os.Exit(2)
		}
	}
}
