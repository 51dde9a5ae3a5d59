/**
 * @description
 * Agent workflow commands. "assignments" lists and shows assignments with the
 * projected next step; "assignment" groups the per-assignment actions that
 * move a visit through the workflow: accept, start the journey, check in,
 * verify the visit code, run the inspection, price the device and close or
 * cancel the deal.
 */

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/flipcashindia/fieldops/internal/domain"
	"github.com/flipcashindia/fieldops/internal/workflow"
	"github.com/flipcashindia/fieldops/pkg/marketclient"
)

var (
	assignmentStatus string
	rejectReason     string
	cancelReason     string
	checkInLat       float64
	checkInLng       float64
	checkInAccuracy  float64
	answerDeduction  int64
	finalPrice       int64
	priceNotes       string
)

var assignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "List and inspect your assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		opts := marketclient.AssignmentListOptions{Status: domain.AssignmentStatus(assignmentStatus)}
		assignments, err := svc.Assignments(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			fmt.Println("No assignments.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDEVICE\tSTATUS\tNEXT\tUPDATED")
		for _, a := range assignments {
			projection := workflow.ProjectAssignment(a)
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
				a.ID,
				a.Lead.Device.Brand, a.Lead.Device.Model,
				a.Status,
				formatActions(projection),
				humanize.Time(a.UpdatedAt))
		}
		return w.Flush()
	},
}

var assignmentsShowCmd = &cobra.Command{
	Use:   "show <assignment-id>",
	Short: "Show one assignment with its projected next step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		a, err := svc.Assignment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAssignment(*a)

		logs, err := svc.ActivityLogs(cmd.Context(), a.ID)
		if err == nil && len(logs) > 0 {
			fmt.Println("Activity:")
			for _, entry := range logs {
				fmt.Printf("  %s  %s", humanize.Time(entry.CreatedAt), entry.Action)
				if entry.Note != "" {
					fmt.Printf(" (%s)", entry.Note)
				}
				fmt.Println()
			}
		}
		return nil
	},
}

var assignmentCmd = &cobra.Command{
	Use:   "assignment",
	Short: "Act on one assignment",
}

var assignmentAcceptCmd = &cobra.Command{
	Use:   "accept <assignment-id>",
	Short: "Accept a newly assigned lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		a, err := svc.AcceptAssignment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

var assignmentRejectCmd = &cobra.Command{
	Use:   "reject <assignment-id>",
	Short: "Reject a newly assigned lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		a, err := svc.RejectAssignment(cmd.Context(), args[0], rejectReason)
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

var assignmentStartCmd = &cobra.Command{
	Use:   "start <assignment-id>",
	Short: "Start the journey to the pickup address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		a, err := svc.StartJourney(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

var assignmentCheckInCmd = &cobra.Command{
	Use:   "checkin <assignment-id>",
	Short: "Check in at the pickup address with your current position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		if !positionProvided(cmd.Flags()) {
			return fmt.Errorf("check-in requires a position; pass --lat and --lng")
		}
		a, err := svc.CheckIn(cmd.Context(), args[0], domain.Position{
			Latitude:  checkInLat,
			Longitude: checkInLng,
			Accuracy:  checkInAccuracy,
		})
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

// positionProvided checks flag presence, not value: (0, 0) is a valid
// coordinate.
func positionProvided(flags *pflag.FlagSet) bool {
	return flags.Changed("lat") && flags.Changed("lng")
}

var assignmentVerifyCmd = &cobra.Command{
	Use:   "verify <assignment-id> <code>",
	Short: "Verify the customer's visit code",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		a, err := svc.VerifyCode(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Run the device inspection",
}

var inspectStartCmd = &cobra.Command{
	Use:   "start <assignment-id>",
	Short: "Start (or resume) the inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		draft, err := svc.BeginInspection(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Inspection in progress (%d answers recorded, %d photos staged).\n",
			len(draft.Answers), len(draft.Photos))
		return nil
	},
}

var inspectAnswerCmd = &cobra.Command{
	Use:   "answer <assignment-id> <question-id> <answer>",
	Short: "Record a checklist answer",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		answer := domain.ChecklistAnswer{
			QuestionID: args[1],
			Answer:     args[2],
			Deduction:  answerDeduction,
		}
		if err := svc.RecordAnswer(args[0], answer); err != nil {
			return err
		}
		draft, _ := svc.Draft(args[0])
		fmt.Printf("Recorded. %d answers, running deduction ₹%s.\n",
			len(draft.Answers), humanize.Comma(draft.TotalDeduction()))
		return nil
	},
}

var inspectNoteCmd = &cobra.Command{
	Use:   "note <assignment-id> <notes...>",
	Short: "Attach free-form notes to the inspection",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		return svc.SetInspectionNotes(args[0], strings.Join(args[1:], " "))
	},
}

var inspectPhotoCmd = &cobra.Command{
	Use:   "photo <assignment-id> <label> <file>",
	Short: "Stage a captured photo for upload on submission",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		data, err := os.ReadFile(args[2])
		if err != nil {
			return fmt.Errorf("failed to read photo: %w", err)
		}
		photo := domain.InspectionPhoto{
			Label:    args[1],
			Filename: filepath.Base(args[2]),
			Data:     data,
		}
		if err := svc.AttachPhoto(args[0], photo); err != nil {
			return err
		}
		fmt.Printf("Staged %s (%s).\n", photo.Filename, humanize.Bytes(uint64(len(data))))
		return nil
	},
}

var inspectSubmitCmd = &cobra.Command{
	Use:   "submit <assignment-id>",
	Short: "Upload staged photos and submit the checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		a, err := svc.SubmitInspection(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

var inspectDiscardCmd = &cobra.Command{
	Use:   "discard <assignment-id>",
	Short: "Throw away the local inspection draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc.DiscardInspection(args[0])
		fmt.Println("Draft discarded.")
		return nil
	},
}

var assignmentPriceCmd = &cobra.Command{
	Use:   "price <assignment-id>",
	Short: "Show the computed price breakdown and submit a final price",
	Long: `Ask the server to price the inspected device from the recorded checklist
answers. Without --final the breakdown is only displayed; with --final the
given price is submitted as the offer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		adj, err := svc.PriceBreakdown(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Original price: ₹%s\n", humanize.Comma(adj.OriginalPrice))
		for _, d := range adj.Deductions {
			fmt.Printf("  - ₹%s  %s\n", humanize.Comma(d.Amount), d.Reason)
		}
		fmt.Printf("Computed price: ₹%s\n", humanize.Comma(adj.ComputedPrice()))

		if finalPrice <= 0 {
			return nil
		}
		adj.FinalPrice = finalPrice
		if svc.DeviationWarning(*adj) {
			fmt.Printf("Warning: ₹%s deviates more than the advisory limit from the computed price.\n",
				humanize.Comma(finalPrice))
		}
		a, err := svc.SubmitFinalPrice(cmd.Context(), args[0], *adj, priceNotes)
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

var assignmentOfferCmd = &cobra.Command{
	Use:   "offer <lead-id> <price>",
	Short: "Submit a price offer for a claimed lead",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		price, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || price <= 0 {
			return fmt.Errorf("invalid price %q", args[1])
		}
		a, err := svc.CreateOffer(cmd.Context(), args[0], price, priceNotes)
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

var assignmentSignatureCmd = &cobra.Command{
	Use:   "signature <assignment-id> <file>",
	Short: "Upload the customer's signature image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read signature: %w", err)
		}
		file := marketclient.UploadFile{Name: filepath.Base(args[1]), Content: data}
		if err := svc.UploadSignature(cmd.Context(), args[0], file); err != nil {
			return err
		}
		fmt.Println("Signature uploaded.")
		return nil
	},
}

var assignmentCompleteCmd = &cobra.Command{
	Use:   "complete <assignment-id>",
	Short: "Finalize the trade-in after customer acceptance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		a, err := svc.CompleteDeal(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

var assignmentCancelCmd = &cobra.Command{
	Use:   "cancel <assignment-id>",
	Short: "Cancel an in-progress assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		a, err := svc.CancelAssignment(cmd.Context(), args[0], cancelReason)
		if err != nil {
			return err
		}
		printAssignment(*a)
		return nil
	},
}

func printAssignment(a domain.Assignment) {
	projection := workflow.ProjectAssignment(a)

	fmt.Printf("Assignment %s\n", a.ID)
	fmt.Printf("  Device:   %s %s", a.Lead.Device.Brand, a.Lead.Device.Model)
	if a.Lead.Device.Variant != "" {
		fmt.Printf(" (%s)", a.Lead.Device.Variant)
	}
	fmt.Println()
	fmt.Printf("  Customer: %s, %s\n", a.Lead.Customer.Name, a.Lead.Customer.Phone)
	fmt.Printf("  Address:  %s, %s %s\n", a.Lead.PickupAddress.Line1, a.Lead.PickupAddress.City, a.Lead.PickupAddress.Pincode)
	fmt.Printf("  Status:   %s\n", a.Status)
	if a.FinalPrice != nil {
		fmt.Printf("  Price:    ₹%s\n", humanize.Comma(*a.FinalPrice))
	}
	if projection.Terminal {
		fmt.Println("  Workflow finished.")
		return
	}
	fmt.Printf("  Next:     %s\n", formatActions(projection))
	if projection.NeedsPosition {
		fmt.Println("            (requires --lat/--lng)")
	}
}

func formatActions(p workflow.Projection) string {
	if len(p.Actions) == 0 {
		if p.Screen == workflow.ScreenAwaitingResponse {
			return "awaiting customer"
		}
		return "-"
	}
	parts := make([]string, len(p.Actions))
	for i, action := range p.Actions {
		parts[i] = string(action)
	}
	return strings.Join(parts, ", ")
}

func init() {
	assignmentsCmd.Flags().StringVar(&assignmentStatus, "status", "", "filter by status")
	assignmentRejectCmd.Flags().StringVar(&rejectReason, "reason", "", "rejection reason")
	assignmentCancelCmd.Flags().StringVar(&cancelReason, "reason", "", "cancellation reason")
	assignmentCheckInCmd.Flags().Float64Var(&checkInLat, "lat", 0, "latitude of the check-in fix")
	assignmentCheckInCmd.Flags().Float64Var(&checkInLng, "lng", 0, "longitude of the check-in fix")
	assignmentCheckInCmd.Flags().Float64Var(&checkInAccuracy, "accuracy", 0, "fix accuracy in meters")
	inspectAnswerCmd.Flags().Int64Var(&answerDeduction, "deduction", 0, "deduction for this answer in rupees")
	assignmentPriceCmd.Flags().Int64Var(&finalPrice, "final", 0, "submit this final price")
	assignmentPriceCmd.Flags().StringVar(&priceNotes, "notes", "", "notes attached to the price")
	assignmentOfferCmd.Flags().StringVar(&priceNotes, "notes", "", "notes attached to the offer")

	assignmentsCmd.AddCommand(assignmentsShowCmd)

	inspectCmd.AddCommand(inspectStartCmd)
	inspectCmd.AddCommand(inspectAnswerCmd)
	inspectCmd.AddCommand(inspectNoteCmd)
	inspectCmd.AddCommand(inspectPhotoCmd)
	inspectCmd.AddCommand(inspectSubmitCmd)
	inspectCmd.AddCommand(inspectDiscardCmd)

	assignmentCmd.AddCommand(assignmentAcceptCmd)
	assignmentCmd.AddCommand(assignmentRejectCmd)
	assignmentCmd.AddCommand(assignmentStartCmd)
	assignmentCmd.AddCommand(assignmentCheckInCmd)
	assignmentCmd.AddCommand(assignmentVerifyCmd)
	assignmentCmd.AddCommand(inspectCmd)
	assignmentCmd.AddCommand(assignmentPriceCmd)
	assignmentCmd.AddCommand(assignmentOfferCmd)
	assignmentCmd.AddCommand(assignmentSignatureCmd)
	assignmentCmd.AddCommand(assignmentCompleteCmd)
	assignmentCmd.AddCommand(assignmentCancelCmd)
}
