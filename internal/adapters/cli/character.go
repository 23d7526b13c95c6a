package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/eve-pi-go/internal/application/account"
)

// NewCharacterCommand creates the character command with subcommands
func NewCharacterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Link and list EVE characters",
		Long: `Manage the characters whose colonies pi-daemon keeps in sync.

Examples:
  pi character add --id 90000001 --name "Pilot One" --token <esi-token>
  pi character list`,
	}

	cmd.AddCommand(newCharacterAddCommand())
	cmd.AddCommand(newCharacterListCommand())

	return cmd
}

func newCharacterAddCommand() *cobra.Command {
	var (
		characterID int64
		name        string
		token       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Link a character to the current user",
		Long: `Link a character to the current user.

The access token is used as the bearer token for ESI colony requests. When --token
is omitted it is read from PI_ACCESS_TOKEN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if characterID <= 0 {
				return fmt.Errorf("--id flag is required")
			}
			if name == "" {
				return fmt.Errorf("--name flag is required")
			}
			if token == "" {
				token = os.Getenv("PI_ACCESS_TOKEN")
			}

			user, err := resolveUserID()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(a.context(), &account.AddCharacterCommand{
				CharacterID: characterID,
				Name:        name,
				UserID:      user,
				AccessToken: token,
			})
			if err != nil {
				return fmt.Errorf("failed to link character: %w", err)
			}
			result := response.(*account.AddCharacterResponse)

			fmt.Println("✓ Character linked")
			fmt.Printf("  Character: %s (%d)\n", result.Character.Name, result.Character.ID.Value())
			fmt.Printf("  User:      %d\n", result.Character.UserID)
			fmt.Println("\nColonies appear after the next sync. Run now with: pi sync now")
			return nil
		},
	}

	cmd.Flags().Int64Var(&characterID, "id", 0, "EVE character ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Character name (required)")
	cmd.Flags().StringVar(&token, "token", "", "ESI access token")

	return cmd
}

func newCharacterListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List linked characters",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &account.ListCharactersQuery{}
			if !all {
				user, err := resolveUserID()
				if err != nil {
					return err
				}
				query.UserID = user
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(a.context(), query)
			if err != nil {
				return err
			}
			characters := response.(*account.ListCharactersResponse).Characters
			if len(characters) == 0 {
				fmt.Println("No characters linked")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tUSER\tLAST SYNC")
			for _, c := range characters {
				lastSync := "never"
				if c.LastSyncedAt != nil {
					lastSync = c.LastSyncedAt.Local().Format(time.DateTime)
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", c.ID.Value(), c.Name, c.UserID, lastSync)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List characters of every user")

	return cmd
}
