package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meetfeed/meetfeed-client/internal/app"
	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/internal/screens"
	"github.com/meetfeed/meetfeed-client/pkg/services"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage your own events",
	Long: `Commands for the events you created.

Examples:
  meetfeed events list
  meetfeed events create --title "Board games" --date 2025-03-01 --time 19:00 --location "Cafe Luna" --max-attendees 6
  meetfeed events update <id> --title "Chess night"
  meetfeed events remove-participant <event-id> <participant-id>`,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your events",
	RunE:  runEventsList,
}

var eventsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one event with its attendees",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsGet,
}

var eventsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event",
	RunE:  runEventsCreate,
}

var eventsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of an event; only the flags given are sent",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsUpdate,
}

var eventsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventsDelete,
}

var eventsRemoveParticipantCmd = &cobra.Command{
	Use:   "remove-participant <event-id> <participant-id>",
	Short: "Remove an attendee from an event",
	Args:  cobra.ExactArgs(2),
	RunE:  runEventsRemoveParticipant,
}

func init() {
	for _, c := range []*cobra.Command{eventsCreateCmd, eventsUpdateCmd} {
		c.Flags().String("title", "", "event title")
		c.Flags().String("location", "", "where the event takes place")
		c.Flags().String("description", "", "free text description")
		c.Flags().String("image", "", "image URL")
	}
	eventsCreateCmd.Flags().String("date", "", "date, YYYY-MM-DD")
	eventsCreateCmd.Flags().String("time", "", "start time, HH:MM")
	eventsCreateCmd.Flags().String("max-attendees", "", "maximum number of attendees")

	eventsUpdateCmd.Flags().String("starts-at", "", "start as YYYY-MM-DDTHH:MM:SS")
	eventsUpdateCmd.Flags().Int("capacity", 0, "maximum number of attendees")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsGetCmd)
	eventsCmd.AddCommand(eventsCreateCmd)
	eventsCmd.AddCommand(eventsUpdateCmd)
	eventsCmd.AddCommand(eventsDeleteCmd)
	eventsCmd.AddCommand(eventsRemoveParticipantCmd)

	rootCmd.AddCommand(eventsCmd)
}

func runEventsList(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		screen := screens.NewEvents(client.Deps())
		defer screen.Unmount()
		if err := screen.Load(ctx); err != nil {
			return err
		}
		return printEvents(screen.State().Events)
	})
}

func printEvents(events []domain.Event) error {
	if jsonOut {
		return printJSON(map[string]any{"events": events, "count": len(events)})
	}
	if len(events) == 0 {
		fmt.Println("No events found")
		return nil
	}
	w := newTable()
	printTableHeader(w, "ID", "TITLE", "DATE", "LOCATION", "ATTENDEES")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\n",
			truncate(e.ID, 12),
			truncate(e.Title, 32),
			orDash(e.Date),
			truncate(orDash(e.Location), 32),
			len(e.Attendees),
			e.MaxAttendees,
		)
	}
	return w.Flush()
}

func printEvent(e domain.Event) error {
	if jsonOut {
		return printJSON(e)
	}
	fmt.Printf("ID:          %s\n", e.ID)
	fmt.Printf("Title:       %s\n", e.Title)
	fmt.Printf("Date:        %s\n", orDash(e.Date))
	fmt.Printf("Location:    %s\n", orDash(e.Location))
	fmt.Printf("Description: %s\n", orDash(e.Description))
	fmt.Printf("Attendees:   %d/%d\n", len(e.Attendees), e.MaxAttendees)
	if e.CreatorProfile != nil {
		fmt.Printf("Creator:     %s\n", orDash(e.CreatorProfile.Name))
	}
	if len(e.Attendees) == 0 {
		return nil
	}
	fmt.Println()
	w := newTable()
	printTableHeader(w, "PARTICIPANT", "NAME", "AGE")
	for _, p := range e.Attendees {
		age := "-"
		if p.Age > 0 {
			age = fmt.Sprint(p.Age)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, orDash(p.Name), age)
	}
	return w.Flush()
}

func runEventsGet(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		screen := screens.NewEvents(client.Deps())
		defer screen.Unmount()
		evt, err := screen.Detail(ctx, args[0])
		if err != nil {
			return err
		}
		return printEvent(evt)
	})
}

func runEventsCreate(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	form := screens.EventForm{}
	form.Title, _ = flags.GetString("title")
	form.Date, _ = flags.GetString("date")
	form.Time, _ = flags.GetString("time")
	form.Location, _ = flags.GetString("location")
	form.MaxAttendees, _ = flags.GetString("max-attendees")
	form.Description, _ = flags.GetString("description")
	form.Image, _ = flags.GetString("image")

	// validate before logging in so a bad form never touches the network
	if verr := form.Validate(); verr != nil {
		return verr
	}

	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		screen := screens.NewCreateEvent(client.Deps())
		screen.SetForm(form)
		evt, err := screen.Submit(ctx)
		if err != nil {
			return err
		}
		if !jsonOut {
			fmt.Println("Event created")
		}
		return printEvent(evt)
	})
}

func runEventsUpdate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	patch := services.EventPatch{}
	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	patch.Title = stringFlag("title")
	patch.Location = stringFlag("location")
	patch.Description = stringFlag("description")
	patch.Image = stringFlag("image")
	patch.StartsAt = stringFlag("starts-at")
	if flags.Changed("capacity") {
		n, _ := flags.GetInt("capacity")
		patch.Capacity = &n
	}

	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		evt, err := client.Events().Update(ctx, args[0], patch)
		if err != nil {
			return err
		}
		return printEvent(evt)
	})
}

func runEventsDelete(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		screen := screens.NewEvents(client.Deps())
		defer screen.Unmount()
		if err := screen.Delete(ctx, args[0]); err != nil {
			return err
		}
		if jsonOut {
			return printJSON(map[string]any{"deleted": args[0]})
		}
		fmt.Printf("Event %s deleted\n", args[0])
		return nil
	})
}

func runEventsRemoveParticipant(cmd *cobra.Command, args []string) error {
	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		screen := screens.NewEvents(client.Deps())
		defer screen.Unmount()
		if err := screen.RemoveParticipant(ctx, args[0], args[1]); err != nil {
			return err
		}
		if jsonOut {
			return printJSON(map[string]any{"event_id": args[0], "removed": args[1]})
		}
		fmt.Printf("Participant %s removed from %s\n", args[1], args[0])
		return nil
	})
}
