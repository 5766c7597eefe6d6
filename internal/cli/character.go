package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newCharacterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "character",
		Aliases: []string{"char"},
		Short:   "Character commands",
	}

	cmd.AddCommand(newCharacterListCmd())
	cmd.AddCommand(newCharacterGetCmd())
	cmd.AddCommand(newCharacterCreateCmd())
	cmd.AddCommand(newCharacterUpdateCmd())
	cmd.AddCommand(newCharacterAssignCmd())
	cmd.AddCommand(newCharacterDeleteCmd())

	return cmd
}

func newCharacterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the characters visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CharacterList

			if err := client.Get(cmd.Context(), "/api/v1/characters", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCharacterGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a character sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Character

			if err := client.Get(cmd.Context(), characterPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func characterPath(id string) string {
	return "/api/v1/characters/" + url.PathEscape(id)
}

// sheetFlags are the sheet values shared by create and update
type sheetFlags struct {
	height, weight, path, form int
}

func (f *sheetFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.height, "height", 0, "Height in centimetres")
	cmd.Flags().IntVar(&f.weight, "weight", 0, "Weight in kilograms")
	cmd.Flags().IntVar(&f.path, "path-focus", 0, "Path focus (0-4)")
	cmd.Flags().IntVar(&f.form, "form-focus", 0, "Form focus (0-10)")
}

// apply copies only the flags the user set, so the server leaves the rest alone
func (f *sheetFlags) apply(cmd *cobra.Command, req map[string]any) {
	set := map[string]struct {
		field string
		value int
	}{
		"height":     {"height", f.height},
		"weight":     {"weight", f.weight},
		"path-focus": {"path_focus", f.path},
		"form-focus": {"form_focus", f.form},
	}
	for flag, v := range set {
		if cmd.Flags().Changed(flag) {
			req[v.field] = v.value
		}
	}
}

func newCharacterCreateCmd() *cobra.Command {
	var (
		name  string
		known bool
		sheet sheetFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a character",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"name":     name,
				"is_known": known,
			}
			sheet.apply(cmd, req)

			var result Character
			if err := client.Post(cmd.Context(), "/api/v1/characters", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Character name (required)")
	cmd.Flags().BoolVar(&known, "known", false, "Make the character visible to every player")
	sheet.register(cmd)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCharacterUpdateCmd() *cobra.Command {
	var (
		name  string
		sheet sheetFlags
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a character you control",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if cmd.Flags().Changed("name") {
				req["name"] = name
			}
			sheet.apply(cmd, req)

			var result Character
			if err := client.Patch(cmd.Context(), characterPath(args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New character name")
	sheet.register(cmd)

	return cmd
}

func newCharacterAssignCmd() *cobra.Command {
	var (
		user  string
		known bool
	)

	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Hand a character to a player, or release it (masters only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"is_known": known}
			if user != "" {
				req["control_user_id"] = user
			}

			var result Character
			if err := client.Put(cmd.Context(), characterPath(args[0])+"/control", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User id to hand control to; omit to release the character")
	cmd.Flags().BoolVar(&known, "known", false, "Make the character visible to every player")

	return cmd
}

func newCharacterDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a character you control",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), characterPath(args[0])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Deleted character %s", args[0]))
			return nil
		},
	}
}
