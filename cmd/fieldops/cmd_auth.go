/**
 * @description
 * Authentication commands: OTP login, logout and the current-user lookup.
 */

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <phone>",
	Short: "Log in with a phone number and OTP",
	Long: `Request a one-time code for the given phone number, then prompt for it
and exchange it for a session. The session persists across runs until you
log out or it expires.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		phone := strings.TrimSpace(args[0])

		challenge, err := sessions.SendLoginOTP(cmd.Context(), phone)
		if err != nil {
			return fmt.Errorf("failed to send OTP: %w", err)
		}
		fmt.Printf("OTP sent to %s (valid for %ds, resend allowed after %ds)\n",
			phone, challenge.ExpiresIn, challenge.ResendAfter)

		fmt.Print("Enter code: ")
		reader := bufio.NewReader(os.Stdin)
		code, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read code: %w", err)
		}

		user, err := sessions.Login(cmd.Context(), phone, strings.TrimSpace(code))
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		fmt.Printf("Logged in as %s (%s, role %s)\n", user.FullName, user.Phone, user.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear local credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sessions.IsAuthenticated() {
			fmt.Println("Not logged in.")
			return nil
		}
		if err := sessions.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		user := sessions.CurrentUser()
		fmt.Printf("User:    %s (%s)\n", user.FullName, user.Phone)
		fmt.Printf("Role:    %s\n", user.Role)
		fmt.Printf("Device:  %s\n", sessions.DeviceID())
		if expiry, ok := sessions.ExpiresAt(); ok {
			fmt.Printf("Token:   expires %s\n", humanize.Time(expiry))
		}
		return nil
	},
}
