package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"distill/internal/jobs"
)

func newJobsCommand(cmdCtx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect past pipeline runs",
	}
	jobsCmd.AddCommand(newJobsListCommand(cmdCtx))
	jobsCmd.AddCommand(newJobsShowCommand(cmdCtx))
	jobsCmd.AddCommand(newJobsClearCommand(cmdCtx))
	return jobsCmd
}

func openStore(cmdCtx *commandContext) (*jobs.Store, error) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := jobs.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open jobs store: %w", err)
	}
	return store, nil
}

func newJobsListCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmdCtx)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListJobs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				encoded, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return fmt.Errorf("encode jobs: %w", err)
				}
				fmt.Fprintln(out, string(encoded))
				return nil
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}

			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.ID,
					record.SourcePath,
					colorStatus(string(record.Status), colorize),
					record.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Source", "Status", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit jobs as JSON")
	return cmd
}

func newJobsShowCommand(cmdCtx *commandContext) *cobra.Command {
	var showReport bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job's state and report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmdCtx)
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := store.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", record.ID)
			fmt.Fprintf(out, "Source:  %s\n", record.SourcePath)
			fmt.Fprintf(out, "Status:  %s\n", record.Status)
			fmt.Fprintf(out, "Created: %s\n", record.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Updated: %s\n", record.UpdatedAt.Local().Format(time.DateTime))
			if record.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:   %s\n", record.ErrorMessage)
			}
			if showReport {
				if strings.TrimSpace(record.ReportJSON) == "" {
					fmt.Fprintln(out, "No report recorded")
				} else {
					fmt.Fprintln(out)
					fmt.Fprintln(out, record.ReportJSON)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showReport, "report", false, "Print the full report JSON")
	return cmd
}

func newJobsClearCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmdCtx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed "+strconv.FormatInt(removed, 10)+" jobs")
			return nil
		},
	}
}
