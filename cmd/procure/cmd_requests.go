package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procurehq/console/internal/api"
	"github.com/procurehq/console/internal/model"
)

var (
	reqStatus     string
	reqDepartment string
	reqQuery      string
)

// requestsCmd works the purchase request list and approval workflow.
var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List purchase requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		page, err := client.ListRequests(ctx, api.RequestListOptions{
			Status:     reqStatus,
			Department: reqDepartment,
			Query:      reqQuery,
			PageSize:   100,
		})
		if err != nil {
			return err
		}

		for _, r := range page.Items {
			fmt.Printf("%-14s P%d %-10s %10.2f  %s\n",
				r.Number, r.Priority, r.Status, r.Total, r.Title)
		}
		fmt.Printf("\n%d of %d requests\n", len(page.Items), page.Total)
		return nil
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one purchase request with its line items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		r, err := client.GetRequest(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s %s [%s] P%d\n", r.Number, r.Title, r.Status, r.Priority)
		fmt.Printf("Requester:  %s\n", r.Requester)
		fmt.Printf("Department: %s\n", r.Department)
		fmt.Printf("Category:   %s\n", r.Category)
		if r.Description != "" {
			fmt.Printf("\n%s\n", r.Description)
		}
		fmt.Println()
		for _, item := range r.Items {
			fmt.Printf("  %3d x %-40s %10.2f\n",
				item.Quantity, item.Description, item.Subtotal())
		}
		fmt.Printf("\n  Total: %.2f\n", r.Total)
		return nil
	},
}

var requestSubmitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Submit a draft request for approval",
	Args:  cobra.ExactArgs(1),
	RunE:  requestTransition("submitted", func(ctx cmdCtx, id string) (*model.PurchaseRequest, error) {
		return ctx.client.SubmitRequest(ctx.ctx, id)
	}),
}

var approveComment string

var requestApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a submitted request",
	Args:  cobra.ExactArgs(1),
	RunE: requestTransition("approved", func(ctx cmdCtx, id string) (*model.PurchaseRequest, error) {
		return ctx.client.ApproveRequest(ctx.ctx, id, approveComment)
	}),
}

var rejectReason string

var requestRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a submitted request",
	Args:  cobra.ExactArgs(1),
	RunE: requestTransition("rejected", func(ctx cmdCtx, id string) (*model.PurchaseRequest, error) {
		return ctx.client.RejectRequest(ctx.ctx, id, rejectReason)
	}),
}

var orderStatusFilter string

// ordersCmd lists purchase orders and advances their fulfilment state.
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List purchase orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		orders, err := client.ListOrders(ctx, orderStatusFilter)
		if err != nil {
			return err
		}

		for _, o := range orders {
			due := ""
			if o.ExpectedAt != nil {
				due = "due " + o.ExpectedAt.Format("2006-01-02")
			}
			fmt.Printf("%-14s %-10s %10.2f  %-24s %s\n",
				o.Number, o.Status, o.Total, o.SupplierName, due)
		}
		fmt.Printf("\n%d orders\n", len(orders))
		return nil
	},
}

var orderSetStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Advance an order's fulfilment state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		o, err := client.UpdateOrderStatus(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", o.Number, o.Status)
		return nil
	},
}

// cmdCtx bundles what a workflow transition closure needs.
type cmdCtx struct {
	ctx    context.Context
	client *api.Client
}

// requestTransition builds a RunE for the submit/approve/reject verbs.
func requestTransition(
	verb string,
	call func(ctx cmdCtx, id string) (*model.PurchaseRequest, error),
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		r, err := call(cmdCtx{ctx: ctx, client: client}, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", r.Number, verb)
		return nil
	}
}

func init() {
	requestsCmd.Flags().StringVar(&reqStatus, "status", "",
		"filter by lifecycle status")
	requestsCmd.Flags().StringVar(&reqDepartment, "department", "",
		"filter by department")
	requestsCmd.Flags().StringVarP(&reqQuery, "query", "q", "",
		"free-text search")

	requestApproveCmd.Flags().StringVar(&approveComment, "comment", "",
		"approval comment")
	requestRejectCmd.Flags().StringVar(&rejectReason, "reason", "",
		"rejection reason")

	requestsCmd.AddCommand(requestShowCmd)
	requestsCmd.AddCommand(requestSubmitCmd)
	requestsCmd.AddCommand(requestApproveCmd)
	requestsCmd.AddCommand(requestRejectCmd)

	ordersCmd.Flags().StringVar(&orderStatusFilter, "status", "",
		"filter by fulfilment status")
	ordersCmd.AddCommand(orderSetStatusCmd)
}
