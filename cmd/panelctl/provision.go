package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	provisionSubject string
	provisionMaster  string
	provisionGuest   string
)

func provisionCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "provision",
		Short: "Create a subject with its master and guest codes",
		Args:  cobra.ExactArgs(0),
		RunE:  runProvision,
	}
	cmd.Flags().StringVar(&provisionSubject, "subject", "", "subject id")
	cmd.Flags().StringVar(&provisionMaster, "master", "", "master code (digits)")
	cmd.Flags().StringVar(&provisionGuest, "guest", "", "guest code (digits)")
	for _, f := range []string{"subject", "master", "guest"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return &cmd
}

func runProvision(cmd *cobra.Command, _ []string) error {
	_, lg, client, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx, stop := listenStop()
	defer stop()

	subj, err := client.Provision(ctx, provisionSubject, provisionMaster, provisionGuest)
	if err != nil {
		return fmt.Errorf("provision %q: %w", provisionSubject, err)
	}
	lg.Infow("subject provisioned", "subject_id", subj.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "provisioned %s\n", subj.ID)
	return nil
}
