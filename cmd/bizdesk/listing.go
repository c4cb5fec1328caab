package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/bizdesk/internal/core"
	"github.com/jmylchreest/bizdesk/internal/model"
)

var listOpts struct {
	sortBy    string
	sortOrder string
	since     string
	tag       string
	status    string
	limit     int
}

func addListFlags(c *cobra.Command) {
	c.Flags().StringVar(&listOpts.sortBy, "sort", "created",
		"Sort by field (created, updated, name, status, deadline)")
	c.Flags().StringVar(&listOpts.sortOrder, "order", "asc",
		"Sort order (asc, desc)")
	c.Flags().StringVar(&listOpts.since, "since", "",
		"Only entries created within this duration (e.g., 48h, 7d, 2w)")
	c.Flags().StringVar(&listOpts.tag, "tag", "", "Only entries with this tag")
	c.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of entries to show (0=unlimited)")
}

// listFilter builds filter and sort options from the list flags.
func listFilter() (core.FilterOptions, core.SortOptions, error) {
	since, err := core.ParseDuration(listOpts.since)
	if err != nil {
		return core.FilterOptions{}, core.SortOptions{}, err
	}
	status, err := core.ParseStatus(listOpts.status)
	if err != nil {
		return core.FilterOptions{}, core.SortOptions{}, err
	}

	filter := core.FilterOptions{
		Since:  since,
		Tag:    listOpts.tag,
		Status: status,
		Limit:  listOpts.limit,
	}
	sort := core.SortOptions{
		Field: core.ParseSortField(listOpts.sortBy),
		Order: core.ParseSortOrder(listOpts.sortOrder),
	}
	return filter, sort, nil
}

// resolveClientID turns an id, id prefix or list index into a client id.
// Unresolvable references are passed through so the service reports them.
func resolveClientID(ctx context.Context, ref string) string {
	list, err := clients.List(ctx)
	if err != nil {
		return ref
	}
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return resolveOr(ids, ref)
}

// resolveProjectID turns an id, id prefix or list index into a project id.
func resolveProjectID(ctx context.Context, ref string) string {
	list, err := projects.List(ctx)
	if err != nil {
		return ref
	}
	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	return resolveOr(ids, ref)
}

// clientRef resolves ref when it is set.
func clientRef(cmd *cobra.Command, ref string) string {
	if ref == "" {
		return ""
	}
	return resolveClientID(cmd.Context(), ref)
}

func resolveOr(ids []string, ref string) string {
	id, err := core.ResolveID(ids, ref)
	if err != nil {
		logger.Debug("could not resolve reference", "ref", ref, "error", err)
		return ref
	}
	return id
}

func sortAndFilterClients(list []model.Client) ([]model.Client, error) {
	filter, sort, err := listFilter()
	if err != nil {
		return nil, err
	}
	core.SortClients(list, sort)
	return core.FilterClients(list, filter), nil
}

func sortAndFilterProjects(list []model.Project) ([]model.Project, error) {
	filter, sort, err := listFilter()
	if err != nil {
		return nil, err
	}
	core.SortProjects(list, sort)
	return core.FilterProjects(list, filter), nil
}
