package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/stillwater/internal/auth"
	"github.com/harrylevesque/stillwater/internal/config"
	"github.com/harrylevesque/stillwater/internal/files"
	"github.com/harrylevesque/stillwater/internal/models"
)

// tokenCmd mints a session token signed with the server master key, for local
// development and for the terminal client.
func tokenCmd() *cobra.Command {
	var (
		user models.User
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			key, err := files.ReadMasterKey(cfg.Auth.MasterKeyFile)
			if err != nil {
				return fmt.Errorf("master key: %w", err)
			}
			tokens, err := auth.NewTokenService(key)
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL.Std()
			}
			tok, err := tokens.Issue(user, ttl)
			if err != nil {
				return fmt.Errorf("issuing token for %q: %w", user.Subject, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user.Subject, "subject", "", "stable user id")
	cmd.Flags().StringVar(&user.GivenName, "name", "", "given name shown in the greeting")
	cmd.Flags().StringVar(&user.PictureURL, "picture", "", "avatar URL")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
