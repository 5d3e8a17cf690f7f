package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nestingglobal/nestview/internal/app"
)

func newBrowseCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "browse",
		Short:       "Open the interactive catalog (default)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{tuiAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.browse(cmd.Context())
		},
	}
	addBrowseFlags(cmd.Flags(), g)
	return cmd
}

func (g *globals) browse(ctx context.Context) error {
	return app.Run(ctx, app.Options{
		Config:       g.cfg,
		PrefsPath:    g.prefsPath,
		PushEndpoint: g.pushEndpoint,
	})
}
