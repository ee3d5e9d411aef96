package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sam-evolv/property-assistant-sub010/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var (
	flagServer  string
	flagTenant  string
	flagUser    string
	flagDev     string
	flagRaw     bool
	flagTimeout time.Duration
)

func main() {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "ask",
		Short:         "Talk to the property assistant from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:"+cfg.App.Port, "assistant base URL")

	chat := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask one question and stream the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := devToken(cfg.Auth.JWTSecret, flagTenant, flagUser)
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), chatOptions{
				server:        flagServer,
				token:         token,
				developmentID: flagDev,
				question:      args[0],
				raw:           flagRaw,
				timeout:       flagTimeout,
			}, cmd.OutOrStdout())
		},
	}
	chat.Flags().StringVar(&flagTenant, "tenant", "", "tenant id for the signed dev token")
	chat.Flags().StringVar(&flagUser, "user", "00000000-0000-4000-8000-000000000001", "user id for the signed dev token")
	chat.Flags().StringVar(&flagDev, "development", "", "development id to scope the question to")
	chat.Flags().BoolVar(&flagRaw, "raw", false, "print frames as received")
	chat.Flags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "request timeout")
	_ = chat.MarkFlagRequired("tenant")

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print completed exchanges as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cfg.App.NatsURL, cfg.Messaging.NatsStream, cmd.OutOrStdout())
		},
	}

	root.AddCommand(chat, watch)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// devToken signs a short-lived token with the server secret. Only useful
// against environments whose secret you hold.
func devToken(secret, tenantID, userID string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"tenant_id": tenantID,
		"user_id":   userID,
		"exp":       time.Now().Add(15 * time.Minute).Unix(),
	}).SignedString([]byte(secret))
}
