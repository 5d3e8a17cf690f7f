package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nestingglobal/nestview/internal/nestapi"
)

const contactsTimeout = 15 * time.Second

func newContactsCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List submitted contacts and inquiries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := g.client()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), contactsTimeout)
			defer cancel()
			contacts, err := client.FetchContacts(ctx)
			if err != nil {
				return fmt.Errorf("fetch contacts: %w", err)
			}
			if asJSON {
				return writeContactsJSON(cmd.OutOrStdout(), contacts)
			}
			return writeContactsTable(cmd.OutOrStdout(), contacts)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print contacts as JSON")
	return cmd
}

func writeContactsJSON(w io.Writer, contacts []nestapi.Contact) error {
	if contacts == nil {
		contacts = []nestapi.Contact{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(contacts)
}

func writeContactsTable(w io.Writer, contacts []nestapi.Contact) error {
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(w, "No contacts.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tPROPERTY\tDATE")
	for _, c := range contacts {
		date := "-"
		if !c.CreatedAt.IsZero() {
			date = c.CreatedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			orDash(c.ShortID()), orDash(c.FullName), orDash(c.Email), orDash(c.PhoneNumber), orDash(c.PropertyID), date)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
