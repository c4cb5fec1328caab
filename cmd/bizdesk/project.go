package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/bizdesk/internal/core"
	"github.com/jmylchreest/bizdesk/internal/directory"
	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

const deadlineLayout = "2006-01-02"

var projectOpts struct {
	name        string
	description string
	client      string
	status      string
	deadline    string
	tags        []string
}

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a project",
	Example: `  bizdesk project add --name Website --client <client-id> --deadline 2027-01-31`,
	Args:    cobra.NoArgs,
	RunE:    runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects, oldest first",
	Args:    cobra.NoArgs,
	RunE:    runProjectList,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <id|prefix|index>",
	Short: "Change a project; --tag adds to the existing tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUpdate,
}

var projectRmCmd = &cobra.Command{
	Use:     "rm <id|prefix|index>...",
	Aliases: []string{"delete"},
	Short:   "Delete projects",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runProjectRm,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectUpdateCmd, projectRmCmd)

	for _, c := range []*cobra.Command{projectAddCmd, projectUpdateCmd} {
		c.Flags().StringVar(&projectOpts.name, "name", "", "Project name")
		c.Flags().StringVar(&projectOpts.description, "description", "", "Description")
		c.Flags().StringVar(&projectOpts.client, "client", "", "Client id")
		c.Flags().StringVar(&projectOpts.status, "status", "",
			"Status (planned, active, on_hold, completed)")
		c.Flags().StringVar(&projectOpts.deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
		c.Flags().StringSliceVarP(&projectOpts.tags, "tag", "t", nil, "Tag (repeatable)")
	}
	projectListCmd.Flags().StringVar(&projectOpts.client, "client", "", "Only projects for this client")
	projectListCmd.Flags().StringVar(&listOpts.status, "status", "", "Only projects with this status")
	addListFlags(projectListCmd)
}

func parseDeadline(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(deadlineLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q (want YYYY-MM-DD): %w", s, err)
	}
	return &t, nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	deadline, err := parseDeadline(projectOpts.deadline)
	if err != nil {
		return err
	}
	status, err := core.ParseStatus(projectOpts.status)
	if err != nil {
		return err
	}

	_, err = projects.Create(cmd.Context(), directory.ProjectInput{
		Name:        projectOpts.name,
		Description: projectOpts.description,
		ClientID:    clientRef(cmd, projectOpts.client),
		Status:      status,
		Tags:        projectOpts.tags,
		Deadline:    deadline,
	})
	return err
}

func runProjectList(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	var list []model.Project
	if projectOpts.client != "" {
		list, err = projects.ListForClient(cmd.Context(), resolveClientID(cmd.Context(), projectOpts.client))
	} else {
		list, err = projects.List(cmd.Context())
	}
	if err != nil {
		return toast.Fail(cmd.Context(), err, directory.Message(err, "project"))
	}
	list, err = sortAndFilterProjects(list)
	if err != nil {
		return err
	}
	return formatter.FormatProjects(cmd.OutOrStdout(), list)
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	var u directory.ProjectUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		u.Name = &projectOpts.name
	}
	if flags.Changed("description") {
		u.Description = &projectOpts.description
	}
	if flags.Changed("client") {
		clientID := clientRef(cmd, projectOpts.client)
		u.ClientID = &clientID
	}
	if flags.Changed("status") {
		status, err := core.ParseStatus(projectOpts.status)
		if err != nil {
			return err
		}
		u.Status = &status
	}
	if flags.Changed("deadline") {
		deadline, err := parseDeadline(projectOpts.deadline)
		if err != nil {
			return err
		}
		u.Deadline = deadline
	}
	u.AddTags = projectOpts.tags

	_, err := projects.Update(cmd.Context(), resolveProjectID(cmd.Context(), args[0]), u)
	return err
}

func runProjectRm(cmd *cobra.Command, args []string) error {
	var firstErr error
	for _, id := range args {
		if err := projects.Delete(cmd.Context(), resolveProjectID(cmd.Context(), id)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
