/**
 * @description
 * Profile, availability and wallet commands. The profile shown depends on the
 * logged-in role: partners see the business profile and wallet balance,
 * agents see their field statistics.
 */

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/flipcashindia/fieldops/internal/domain"
	"github.com/flipcashindia/fieldops/pkg/marketclient"
)

var (
	walletLimit   int
	updateBizName string
	updateGSTIN   string
	areaCity      string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		user := sessions.CurrentUser()

		switch {
		case user.HasRole(domain.RolePartner):
			profile, err := partnerProfiles.Profile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Business: %s\n", profile.BusinessName)
			if profile.GSTIN != "" {
				fmt.Printf("GSTIN:    %s\n", profile.GSTIN)
			}
			fmt.Printf("KYC:      %s\n", yesNo(profile.KYCComplete, "complete", "incomplete"))
			fmt.Printf("Status:   %s\n", yesNo(profile.Available, "accepting leads", "paused"))
			fmt.Printf("Wallet:   ₹%s\n", humanize.Comma(profile.WalletBalance))
			if len(profile.ServiceAreas) > 0 {
				fmt.Print("Areas:    ")
				for i, area := range profile.ServiceAreas {
					if i > 0 {
						fmt.Print(", ")
					}
					fmt.Print(area.Pincode)
				}
				fmt.Println()
			}

		case user.HasRole(domain.RoleAgent):
			profile, err := agentProfiles.Profile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Agent:     %s\n", user.FullName)
			fmt.Printf("Partner:   %s\n", profile.PartnerID)
			fmt.Printf("Status:    %s\n", yesNo(profile.Available, "available", "unavailable"))
			fmt.Printf("Active:    %d visits\n", profile.ActiveVisits)
			fmt.Printf("Completed: %d visits\n", profile.CompletedVisits)

		default:
			return fmt.Errorf("role %q has no profile surface in this client", user.Role)
		}
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit the partner business profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		if updateBizName == "" && updateGSTIN == "" {
			return fmt.Errorf("nothing to update; pass --business-name or --gstin")
		}
		profile, err := svc.UpdatePartnerProfile(cmd.Context(), marketclient.UpdatePartnerProfileRequest{
			BusinessName: updateBizName,
			GSTIN:        updateGSTIN,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Profile updated: %s\n", profile.BusinessName)
		return nil
	},
}

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List the pincodes you serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		areas, err := svc.ServiceAreas(cmd.Context())
		if err != nil {
			return err
		}
		if len(areas) == 0 {
			fmt.Println("No service areas configured.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPINCODE\tCITY")
		for _, area := range areas {
			fmt.Fprintf(w, "%s\t%s\t%s\n", area.ID, area.Pincode, area.City)
		}
		return w.Flush()
	},
}

var areasAddCmd = &cobra.Command{
	Use:   "add <pincode>",
	Short: "Register a pincode you serve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		area, err := svc.AddServiceArea(cmd.Context(), args[0], areaCity)
		if err != nil {
			return err
		}
		fmt.Printf("Now serving %s (%s).\n", area.Pincode, area.ID)
		return nil
	},
}

var areasRemoveCmd = &cobra.Command{
	Use:   "remove <area-id>",
	Short: "Stop serving a pincode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		if err := svc.DeleteServiceArea(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Service area removed.")
		return nil
	},
}

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage payout bank accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		accounts, err := svc.BankAccounts(cmd.Context())
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No bank accounts registered.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tBANK\tACCOUNT\tPRIMARY\tVERIFIED")
		for _, account := range accounts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				account.ID, account.BankName, account.AccountNumber,
				yesNo(account.IsPrimary, "yes", ""), yesNo(account.IsVerified, "yes", "pending"))
		}
		return w.Flush()
	},
}

var bankSetPrimaryCmd = &cobra.Command{
	Use:   "set-primary <account-id>",
	Short: "Mark an account as the payout default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		if err := svc.SetPrimaryBankAccount(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Primary account updated.")
		return nil
	},
}

var bankVerifyCmd = &cobra.Command{
	Use:   "verify <account-id>",
	Short: "Start penny-drop verification for an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		account, err := svc.VerifyBankAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Verification started for %s (%s).\n", account.BankName, account.AccountNumber)
		return nil
	},
}

var bankDeleteCmd = &cobra.Command{
	Use:   "delete <account-id>",
	Short: "Remove a payout account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		if err := svc.DeleteBankAccount(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Bank account removed.")
		return nil
	},
}

var availabilityCmd = &cobra.Command{
	Use:       "availability <on|off>",
	Short:     "Toggle whether you receive new leads or assignments",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		available := args[0] == "on"
		user := sessions.CurrentUser()

		var err error
		switch {
		case user.HasRole(domain.RolePartner):
			err = client.SetPartnerAvailability(cmd.Context(), available)
		case user.HasRole(domain.RoleAgent):
			err = client.SetAgentAvailability(cmd.Context(), available)
		default:
			return fmt.Errorf("role %q cannot set availability", user.Role)
		}
		if err != nil {
			return err
		}
		views.CommandDone("set_availability")
		fmt.Printf("Availability set to %s.\n", args[0])
		return nil
	},
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show the wallet transaction history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		transactions, err := svc.Transactions(cmd.Context(), marketclient.TransactionListOptions{Limit: walletLimit})
		if err != nil {
			return err
		}
		if len(transactions) == 0 {
			fmt.Println("No transactions.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tTYPE\tAMOUNT\tBALANCE\tDESCRIPTION")
		for _, tx := range transactions {
			sign := "+"
			if tx.Type == domain.TransactionDebit {
				sign = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s₹%s\t₹%s\t%s\n",
				humanize.Time(tx.CreatedAt),
				tx.Type,
				sign, humanize.Comma(tx.Amount),
				humanize.Comma(tx.Balance),
				tx.Description)
		}
		return w.Flush()
	},
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

func init() {
	walletCmd.Flags().IntVar(&walletLimit, "limit", 20, "maximum rows to list")
	profileUpdateCmd.Flags().StringVar(&updateBizName, "business-name", "", "new business name")
	profileUpdateCmd.Flags().StringVar(&updateGSTIN, "gstin", "", "new GSTIN")
	areasAddCmd.Flags().StringVar(&areaCity, "city", "", "city for the pincode")

	areasCmd.AddCommand(areasAddCmd)
	areasCmd.AddCommand(areasRemoveCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(areasCmd)

	bankCmd.AddCommand(bankSetPrimaryCmd)
	bankCmd.AddCommand(bankVerifyCmd)
	bankCmd.AddCommand(bankDeleteCmd)
}
