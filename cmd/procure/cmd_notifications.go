package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	notifUnreadOnly bool
	notifMarkRead   string
	notifMarkAll    bool
	notifDelete     string
)

// notificationsCmd lists and mutates the notification inbox without
// entering the interactive UI.
var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "List or act on notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		switch {
		case notifMarkAll:
			if err := client.MarkAllNotificationsRead(ctx); err != nil {
				return err
			}
			fmt.Println("All notifications marked read.")
			return nil

		case notifMarkRead != "":
			if err := client.MarkNotificationRead(ctx, notifMarkRead); err != nil {
				return err
			}
			fmt.Println("Marked read:", notifMarkRead)
			return nil

		case notifDelete != "":
			if err := client.DeleteNotification(ctx, notifDelete); err != nil {
				return err
			}
			fmt.Println("Deleted:", notifDelete)
			return nil
		}

		notifications, err := client.ListNotifications(ctx)
		if err != nil {
			return err
		}

		unread := 0
		for _, n := range notifications {
			if notifUnreadOnly && n.Read {
				continue
			}
			marker := " "
			if !n.Read {
				marker = "*"
				unread++
			}
			fmt.Printf("%s %-38s %-20s %s\n",
				marker, n.ID, n.Type, n.Title)
		}
		fmt.Printf("\n%d notifications, %d unread\n", len(notifications), unread)
		return nil
	},
}

func init() {
	notificationsCmd.Flags().BoolVar(&notifUnreadOnly, "unread", false,
		"show unread notifications only")
	notificationsCmd.Flags().StringVar(&notifMarkRead, "read", "",
		"mark one notification read by id")
	notificationsCmd.Flags().BoolVar(&notifMarkAll, "read-all", false,
		"mark every notification read")
	notificationsCmd.Flags().StringVar(&notifDelete, "delete", "",
		"delete one notification by id")
}
