package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nestingglobal/nestview/internal/nestapi"
)

func newInquireCmd(g *globals) *cobra.Command {
	var in nestapi.Inquiry
	cmd := &cobra.Command{
		Use:   "inquire",
		Short: "Send an inquiry about a property",
		Long: `Send an inquiry to the agency, optionally about one property.

Without --name and --email an interactive form asks for the details. Flags
that are set prefill the form.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Validate() != nil {
				if err := inquiryForm(&in).RunWithContext(cmd.Context()); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.OutOrStdout(), "Inquiry cancelled.")
						return nil
					}
					return err
				}
			}
			return g.submitInquiry(cmd.Context(), cmd, trimInquiry(in))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in.PropertyID, "property", "", "property id the inquiry is about")
	flags.StringVar(&in.FullName, "name", "", "your full name")
	flags.StringVar(&in.Email, "email", "", "your email address")
	flags.StringVar(&in.PhoneNumber, "phone", "", "your phone number")
	flags.StringVar(&in.Message, "message", "", "message to the agent")
	return cmd
}

func inquiryForm(in *nestapi.Inquiry) *huh.Form {
	title := "Apply Now"
	if in.PropertyID != "" {
		title += " · " + in.PropertyID
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(title).
				Description("Begin your journey to securing a world-class property."),
			huh.NewInput().
				Title("Full Name").
				Placeholder("Jane Doe").
				Value(&in.FullName).
				Validate(nestapi.ValidateName),
			huh.NewInput().
				Title("Email Address").
				Placeholder("jane@example.com").
				Value(&in.Email).
				Validate(nestapi.ValidateEmail),
			huh.NewInput().
				Title("Phone Number").
				Placeholder("+971 50 000 0000").
				Value(&in.PhoneNumber),
			huh.NewText().
				Title("Message").
				Value(&in.Message),
		),
	).WithTheme(huh.ThemeCharm())
}

func trimInquiry(in nestapi.Inquiry) nestapi.Inquiry {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Message = strings.TrimSpace(in.Message)
	in.PropertyID = strings.TrimSpace(in.PropertyID)
	return in
}

func (g *globals) submitInquiry(ctx context.Context, cmd *cobra.Command, in nestapi.Inquiry) error {
	if err := in.Validate(); err != nil {
		return err
	}
	client, err := g.client()
	if err != nil {
		return err
	}
	if err := client.SubmitInquiry(ctx, in); err != nil {
		return fmt.Errorf("submit inquiry: %w", err)
	}
	g.logger.Info("inquiry submitted", "property", in.PropertyID)
	fmt.Fprintln(cmd.OutOrStdout(), "Application Sent! A member of our team will contact you shortly.")
	return nil
}
