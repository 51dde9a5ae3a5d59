/**
 * @description
 * Watch mode: keeps the process running with the background scheduler active,
 * so the access token stays fresh, the availability heartbeat keeps the agent
 * online, and new assignments are announced as the poll picks them up.
 */

package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flipcashindia/fieldops/internal/app"
	"github.com/flipcashindia/fieldops/internal/domain"
	"github.com/flipcashindia/fieldops/internal/session"
	"github.com/flipcashindia/fieldops/internal/workflow"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay online and announce new assignments",
	Long: `Run the background scheduler until interrupted. While watching, the
client refreshes the access token before it expires, sends the availability
heartbeat, and polls for assignment changes, printing any assignment whose
status moved since the previous poll.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		user := sessions.CurrentUser()
		if !user.HasRole(domain.RoleAgent) {
			return fmt.Errorf("watch mode is for agents; logged in as %s", user.Role)
		}

		jobs := app.NewJobs(sessions, client, logger, cfg)
		jobs.OnAssignments(announceChanges())

		scheduler := app.NewScheduler(jobs, logger, cfg)
		scheduler.Start()
		fmt.Println("Watching for assignments. Press Ctrl+C to stop.")

		// Logout elsewhere (or a failed refresh) ends the watch too.
		done := make(chan struct{})
		unsubscribe := sessions.Subscribe(func(e session.Event) {
			if e.Type == session.EventLogout {
				close(done)
			}
		})
		defer unsubscribe()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-done:
			fmt.Println("Session ended; stopping watch.")
		}

		stopped := scheduler.Stop()
		<-stopped.Done()
		return nil
	},
}

// announceChanges returns a poll callback that prints assignments whose
// status changed between polls.
func announceChanges() func([]domain.Assignment) {
	var mu sync.Mutex
	last := make(map[string]domain.AssignmentStatus)

	return func(assignments []domain.Assignment) {
		mu.Lock()
		defer mu.Unlock()
		for _, a := range assignments {
			prev, seen := last[a.ID]
			last[a.ID] = a.Status
			if seen && prev == a.Status {
				continue
			}
			projection := workflow.ProjectAssignment(a)
			fmt.Printf("[%s] %s %s is now %s (next: %s)\n",
				a.ID, a.Lead.Device.Brand, a.Lead.Device.Model, a.Status, formatActions(projection))
		}
	}
}
