package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/procurehq/console/internal/model"
)

// suppliersCmd lists the supplier register.
var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "List suppliers",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		suppliers, err := client.ListSuppliers(ctx)
		if err != nil {
			return err
		}

		for _, s := range suppliers {
			state := "active"
			if !s.Active {
				state = "inactive"
			}
			fmt.Printf("%-38s %-28s %-16s %.1f %s\n",
				s.ID, s.Name, s.Category, s.Rating, state)
		}
		return nil
	},
}

var budgetDepartment string

// budgetsCmd shows per-department budget utilization.
var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "List budgets and their utilization",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		budgets, err := client.ListBudgets(ctx, budgetDepartment)
		if err != nil {
			return err
		}

		for _, b := range budgets {
			fmt.Printf("%-20s %-10s %12.2f allocated %12.2f remaining %5.1f%%\n",
				b.Department, b.Period, b.Allocated, b.Remaining(),
				b.Utilization()*100)
		}
		return nil
	},
}

var setRoleValue string

// usersCmd administers accounts; the backend enforces the admin role.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		users, err := client.ListUsers(ctx)
		if err != nil {
			return err
		}

		for _, u := range users {
			fmt.Printf("%-38s %-10s %-24s %s\n", u.ID, u.Role, u.Email, u.Name)
		}
		return nil
	},
}

var userSetRoleCmd = &cobra.Command{
	Use:   "set-role <id>",
	Short: "Change an account's role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		u, err := client.SetUserRole(ctx, args[0], model.Role(setRoleValue))
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", u.Email, u.Role)
		return nil
	},
}

var contractWindowDays int

// directoryCmd groups the reference data listings.
var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "List departments, categories, and contracts",
}

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "List departments",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		departments, err := client.ListDepartments(ctx)
		if err != nil {
			return err
		}
		for _, d := range departments {
			fmt.Printf("%-28s head: %s\n", d.Name, d.Head)
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List spending categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		categories, err := client.ListCategories(ctx)
		if err != nil {
			return err
		}
		for _, c := range categories {
			fmt.Println(c.Name)
		}
		return nil
	},
}

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List supplier contracts, flagging ones expiring soon",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		contracts, err := client.ListContracts(ctx)
		if err != nil {
			return err
		}

		now := time.Now()
		window := time.Duration(contractWindowDays) * 24 * time.Hour
		for _, c := range contracts {
			flag := ""
			if c.ExpiresWithin(now, window) {
				flag = " [expiring]"
			}
			fmt.Printf("%-14s %-28s %12.2f  ends %s%s\n",
				c.Number, c.Supplier, c.Value,
				c.EndsAt.Format("2006-01-02"), flag)
		}
		return nil
	},
}

var reportPeriod string

// reportCmd prints the aggregated spending summary.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the spending report for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		if _, err := requireSession(ctx, client); err != nil {
			return err
		}

		report, err := client.SpendingReport(ctx, reportPeriod)
		if err != nil {
			return err
		}

		fmt.Printf("Spending for %s\n\n", report.Period)
		fmt.Printf("Total spent: %.2f across %d requests, %d orders\n\n",
			report.TotalSpent, report.RequestCount, report.OrderCount)

		fmt.Println("By department:")
		printBreakdown(report.ByDepartment)
		fmt.Println("\nBy category:")
		printBreakdown(report.ByCategory)
		return nil
	},
}

// printBreakdown prints a label/amount map in descending amount order.
func printBreakdown(amounts map[string]float64) {
	labels := make([]string, 0, len(amounts))
	for label := range amounts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if amounts[labels[i]] != amounts[labels[j]] {
			return amounts[labels[i]] > amounts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	for _, label := range labels {
		fmt.Printf("  %-28s %12.2f\n", label, amounts[label])
	}
}

func init() {
	budgetsCmd.Flags().StringVar(&budgetDepartment, "department", "",
		"filter to one department")

	userSetRoleCmd.Flags().StringVar(&setRoleValue, "role", "",
		"new role (admin, approver, requester, viewer)")
	_ = userSetRoleCmd.MarkFlagRequired("role")
	usersCmd.AddCommand(userSetRoleCmd)

	contractsCmd.Flags().IntVar(&contractWindowDays, "expiring-within", 30,
		"days ahead to flag expiring contracts")

	directoryCmd.AddCommand(departmentsCmd)
	directoryCmd.AddCommand(categoriesCmd)
	directoryCmd.AddCommand(contractsCmd)

	reportCmd.Flags().StringVar(&reportPeriod, "period", "",
		"reporting period (e.g., 2026-Q2); empty means current")
}
