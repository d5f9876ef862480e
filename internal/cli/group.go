package cli

import (
	"github.com/bcnelson/yatube/internal/service"
	"github.com/spf13/cobra"
)

func newGroupCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage post groups",
	}
	cmd.AddCommand(
		newGroupCreateCommand(a),
		newGroupListCommand(a),
		newGroupDeleteCommand(a),
	)
	return cmd
}

func newGroupCreateCommand(a *app) *cobra.Command {
	var title, slug, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		Long: `Create a group posts can be filed under.

The slug defaults to the title transliterated to ASCII.

Examples:
  yatubectl group create --title "Cats"
  yatubectl group create --title "Котики" --slug cats --description "All about cats"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			group, err := service.NewGroupService(store).CreateGroup(cmd.Context(), title, slug, description)
			if err != nil {
				return err
			}

			out(cmd).Success("Created group %q at /group/%s/", group.Title, group.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Group title")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug (derived from the title when empty)")
	cmd.Flags().StringVar(&description, "description", "", "Group description")
	cmd.MarkFlagRequired("title")
	return cmd
}

func newGroupListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			groups, err := service.NewGroupService(store).ListGroups(cmd.Context())
			if err != nil {
				return err
			}

			p := out(cmd)
			if len(groups) == 0 {
				p.Info("No groups yet")
				return nil
			}

			rows := make([][]string, len(groups))
			for i, g := range groups {
				rows[i] = []string{g.Slug, g.Title, g.Description}
			}
			p.Table([]string{"SLUG", "TITLE", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

func newGroupDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a group",
		Long:  `Delete a group. Its posts stay published without a group.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := service.NewGroupService(store).DeleteGroup(cmd.Context(), args[0]); err != nil {
				return err
			}

			out(cmd).Success("Deleted group %s", args[0])
			return nil
		},
	}
}
