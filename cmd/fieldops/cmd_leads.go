/**
 * @description
 * Partner lead commands: browse available leads, inspect one, and claim it
 * after confirming the wallet deduction.
 */

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/flipcashindia/fieldops/internal/app"
	"github.com/flipcashindia/fieldops/internal/domain"
	"github.com/flipcashindia/fieldops/pkg/marketclient"
)

var (
	leadsPincode string
	leadsLimit   int
	claimYes     bool
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Browse and claim trade-in leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		leads, err := svc.AvailableLeads(cmd.Context(), marketclient.LeadListOptions{
			Pincode: leadsPincode,
			Limit:   leadsLimit,
		})
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			fmt.Println("No leads available.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDEVICE\tPINCODE\tESTIMATE\tFEE\tPOSTED")
		for _, lead := range leads {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t₹%s\t₹%s\t%s\n",
				lead.ID,
				lead.Device.Brand, lead.Device.Model,
				lead.PickupAddress.Pincode,
				humanize.Comma(lead.EstimatedPrice),
				humanize.Comma(lead.ClaimFee),
				humanize.Time(lead.CreatedAt))
		}
		return w.Flush()
	},
}

var leadsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your claimed leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		assignments, err := svc.MyLeads(cmd.Context(), marketclient.LeadListOptions{
			Pincode: leadsPincode,
			Limit:   leadsLimit,
		})
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			fmt.Println("No claimed leads.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDEVICE\tSTATUS\tUPDATED")
		for _, a := range assignments {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n",
				a.ID,
				a.Lead.Device.Brand, a.Lead.Device.Model,
				a.Status,
				humanize.Time(a.UpdatedAt))
		}
		return w.Flush()
	},
}

var leadsShowCmd = &cobra.Command{
	Use:   "show <lead-id>",
	Short: "Show one lead with the claim deduction preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		preview, err := svc.PreviewClaim(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printClaimPreview(*preview)
		return nil
	},
}

var leadsClaimCmd = &cobra.Command{
	Use:   "claim <lead-id>",
	Short: "Claim a lead (deducts the estimate plus claim fee from your wallet)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}

		assignment, err := svc.ConfirmAndClaim(cmd.Context(), args[0], func(p domain.ClaimPreview) bool {
			printClaimPreview(p)
			if claimYes {
				return true
			}
			fmt.Print("Proceed with the claim? [y/N]: ")
			reader := bufio.NewReader(os.Stdin)
			answer, err := reader.ReadString('\n')
			if err != nil {
				return false
			}
			answer = strings.ToLower(strings.TrimSpace(answer))
			return answer == "y" || answer == "yes"
		})
		if err != nil {
			if err == app.ErrClaimCancelled {
				fmt.Println("Claim cancelled; nothing was charged.")
				return nil
			}
			return err
		}
		fmt.Printf("Lead claimed. Assignment %s is now %s.\n", assignment.ID, assignment.Status)
		return nil
	},
}

func printClaimPreview(p domain.ClaimPreview) {
	fmt.Printf("Lead %s\n", p.LeadID)
	fmt.Printf("  Estimated price: ₹%s (reserved)\n", humanize.Comma(p.EstimatedPrice))
	fmt.Printf("  Claim fee:       ₹%s (non-refundable)\n", humanize.Comma(p.ClaimFee))
	fmt.Printf("  Total deduction: ₹%s\n", humanize.Comma(p.TotalDeduction))
}

func init() {
	leadsListCmd.Flags().StringVar(&leadsPincode, "pincode", "", "filter by pickup pincode")
	leadsListCmd.Flags().IntVar(&leadsLimit, "limit", 0, "maximum rows to list")
	leadsMineCmd.Flags().StringVar(&leadsPincode, "pincode", "", "filter by pickup pincode")
	leadsMineCmd.Flags().IntVar(&leadsLimit, "limit", 0, "maximum rows to list")
	leadsClaimCmd.Flags().BoolVarP(&claimYes, "yes", "y", false, "skip the confirmation prompt")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsMineCmd)
	leadsCmd.AddCommand(leadsShowCmd)
	leadsCmd.AddCommand(leadsClaimCmd)
}
