package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the workspace audit trail",
}

var auditTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show recorded events, newest last",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close()

		events, err := services.Audit.GetTimeline()
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No events recorded yet.")
			return nil
		}

		start := 0
		if auditLimit > 0 && len(events) > auditLimit {
			start = len(events) - auditLimit
		}
		for _, e := range events[start:] {
			fmt.Printf("%s  %-22s  %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Actor)
			for k, v := range e.Metadata {
				fmt.Printf("    %s: %v\n", k, v)
			}
		}
		return nil
	},
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the hash chain of the audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close()

		violations, err := services.Audit.VerifyIntegrity()
		if err != nil {
			return err
		}
		if len(violations) == 0 {
			fmt.Println("Audit trail intact.")
			return nil
		}
		fmt.Printf("Found %d violation(s):\n", len(violations))
		for _, v := range violations {
			fmt.Printf("  - %s\n", v)
		}
		return fmt.Errorf("audit trail verification failed")
	},
}

func init() {
	auditTimelineCmd.Flags().IntVar(&auditLimit, "limit", 20, "show only the most recent N events (0 for all)")
	auditCmd.AddCommand(auditTimelineCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	RootCmd.AddCommand(auditCmd)
}
