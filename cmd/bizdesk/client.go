package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/bizdesk/internal/directory"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

var clientOpts struct {
	name    string
	email   string
	phone   string
	company string
	tags    []string
}

var clientCmd = &cobra.Command{
	Use:     "client",
	Aliases: []string{"clients"},
	Short:   "Manage clients",
}

var clientAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a client",
	Example: `  bizdesk client add --name "Acme Corp" --email ops@acme.test --tag vip --tag retail`,
	Args:    cobra.NoArgs,
	RunE:    runClientAdd,
}

var clientListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List clients, oldest first",
	Args:    cobra.NoArgs,
	RunE:    runClientList,
}

var clientUpdateCmd = &cobra.Command{
	Use:   "update <id|prefix|index>",
	Short: "Change a client; --tag adds to the existing tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientUpdate,
}

var clientRmCmd = &cobra.Command{
	Use:     "rm <id|prefix|index>...",
	Aliases: []string{"delete"},
	Short:   "Delete clients",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runClientRm,
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientAddCmd, clientListCmd, clientUpdateCmd, clientRmCmd)

	for _, c := range []*cobra.Command{clientAddCmd, clientUpdateCmd} {
		c.Flags().StringVar(&clientOpts.name, "name", "", "Client name")
		c.Flags().StringVar(&clientOpts.email, "email", "", "Contact email")
		c.Flags().StringVar(&clientOpts.phone, "phone", "", "Contact phone")
		c.Flags().StringVar(&clientOpts.company, "company", "", "Company name")
		c.Flags().StringSliceVarP(&clientOpts.tags, "tag", "t", nil, "Tag (repeatable)")
	}
	addListFlags(clientListCmd)
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	_, err := clients.Create(cmd.Context(), directory.ClientInput{
		Name:    clientOpts.name,
		Email:   clientOpts.email,
		Phone:   clientOpts.phone,
		Company: clientOpts.company,
		Tags:    clientOpts.tags,
	})
	return err
}

func runClientList(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}

	list, err := clients.List(cmd.Context())
	if err != nil {
		return toast.Fail(cmd.Context(), err, directory.Message(err, "client"))
	}
	list, err = sortAndFilterClients(list)
	if err != nil {
		return err
	}
	return formatter.FormatClients(cmd.OutOrStdout(), list)
}

func runClientUpdate(cmd *cobra.Command, args []string) error {
	var u directory.ClientUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		u.Name = &clientOpts.name
	}
	if flags.Changed("email") {
		u.Email = &clientOpts.email
	}
	if flags.Changed("phone") {
		u.Phone = &clientOpts.phone
	}
	if flags.Changed("company") {
		u.Company = &clientOpts.company
	}
	u.AddTags = clientOpts.tags

	_, err := clients.Update(cmd.Context(), resolveClientID(cmd.Context(), args[0]), u)
	return err
}

func runClientRm(cmd *cobra.Command, args []string) error {
	var firstErr error
	for _, id := range args {
		if err := clients.Delete(cmd.Context(), resolveClientID(cmd.Context(), id)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
