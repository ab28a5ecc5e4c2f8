package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meetfeed/meetfeed-client/internal/app"
	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/internal/screens"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
	Long: `Profile commands.

Examples:
  meetfeed profile show
  meetfeed profile update --bio "Climber" --interest music --interest hiking
  meetfeed profile update --field "Job=Pilot" --hide-bio`,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit your profile; only the flags given change",
	RunE:  runProfileUpdate,
}

func init() {
	f := profileUpdateCmd.Flags()
	f.String("name", "", "display name")
	f.Int("age", 0, "age")
	f.String("bio", "", "bio")
	f.String("gender", "", "gender")
	f.String("photo", "", "photo URL")
	f.StringArray("interest", nil, "interest (repeatable, replaces the list)")
	f.StringArray("field", nil, "custom field as title=value (repeatable, replaces the list)")
	f.Bool("hide-bio", false, "hide the bio section")
	f.Bool("show-bio", false, "show the bio section")
	f.Bool("hide-interests", false, "hide the interests section")
	f.Bool("show-interests", false, "show the interests section")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	rootCmd.AddCommand(profileCmd)
}

func loadProfile(ctx context.Context, client *app.Client) (*screens.ProfileEditor, error) {
	editor := screens.NewProfileEditor(client.Deps())
	if err := editor.Load(ctx); err != nil {
		editor.Unmount()
		return nil, err
	}
	return editor, nil
}

func printProfile(p domain.Profile) error {
	if jsonOut {
		return printJSON(p)
	}
	fmt.Printf("Name:      %s\n", orDash(p.Name))
	if p.Age > 0 {
		fmt.Printf("Age:       %d\n", p.Age)
	}
	fmt.Printf("Gender:    %s\n", orDash(p.Gender))
	if p.ShowBio {
		fmt.Printf("Bio:       %s\n", orDash(p.Bio))
	}
	if p.ShowInterests {
		names := make([]string, 0, len(p.Interests))
		for _, it := range p.Interests {
			names = append(names, it.Name)
		}
		fmt.Printf("Interests: %s\n", orDash(strings.Join(names, ", ")))
	}
	for _, f := range p.CustomFields {
		fmt.Printf("%s: %s\n", orDash(f.Title), orDash(f.Value))
	}
	return nil
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		editor, err := loadProfile(ctx, client)
		if err != nil {
			return err
		}
		defer editor.Unmount()
		return printProfile(editor.State().Profile)
	})
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	fields, _ := flags.GetStringArray("field")
	parsedFields := make([][2]string, 0, len(fields))
	for _, raw := range fields {
		title, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("custom field %q must be title=value", raw)
		}
		parsedFields = append(parsedFields, [2]string{strings.TrimSpace(title), strings.TrimSpace(value)})
	}

	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		editor, err := loadProfile(ctx, client)
		if err != nil {
			return err
		}
		defer editor.Unmount()

		editor.BeginEdit()
		editor.Edit(func(p *domain.Profile) {
			if flags.Changed("name") {
				p.Name, _ = flags.GetString("name")
			}
			if flags.Changed("age") {
				p.Age, _ = flags.GetInt("age")
			}
			if flags.Changed("bio") {
				p.Bio, _ = flags.GetString("bio")
			}
			if flags.Changed("gender") {
				p.Gender, _ = flags.GetString("gender")
			}
			if flags.Changed("photo") {
				p.Photo, _ = flags.GetString("photo")
			}
		})

		if flags.Changed("interest") {
			for _, it := range editor.State().Profile.Interests {
				editor.RemoveInterest(it.Name)
			}
			interests, _ := flags.GetStringArray("interest")
			for _, name := range interests {
				editor.AddInterest(name)
			}
		}

		if flags.Changed("field") {
			for _, f := range editor.State().Profile.CustomFields {
				editor.RemoveCustomField(f.ID)
			}
			for _, kv := range parsedFields {
				id := editor.AddCustomField()
				if err := editor.UpdateCustomField(id, screens.CustomFieldTitle, kv[0]); err != nil {
					return err
				}
				if err := editor.UpdateCustomField(id, screens.CustomFieldValue, kv[1]); err != nil {
					return err
				}
			}
		}

		sections := []struct {
			flag    string
			section screens.Section
			visible bool
		}{
			{"hide-bio", screens.SectionBio, false},
			{"show-bio", screens.SectionBio, true},
			{"hide-interests", screens.SectionInterests, false},
			{"show-interests", screens.SectionInterests, true},
		}
		for _, s := range sections {
			if on, _ := flags.GetBool(s.flag); !on {
				continue
			}
			if s.visible {
				err = editor.RestoreSection(s.section)
			} else {
				err = editor.HideSection(s.section)
			}
			if err != nil {
				return err
			}
		}

		if err := editor.Save(ctx); err != nil {
			editor.Cancel()
			return err
		}
		if !jsonOut {
			fmt.Println("Profile saved")
		}
		return printProfile(editor.State().Profile)
	})
}
