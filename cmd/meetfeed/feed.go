package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meetfeed/meetfeed-client/internal/app"
	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/internal/screens"
	"github.com/meetfeed/meetfeed-client/pkg/towns"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse and swipe events in a town",
	Long: `Swipe feed commands. The town defaults to DEFAULT_TOWN.

Examples:
  meetfeed feed towns Ка
  meetfeed feed next --town Казань
  meetfeed feed like --town Казань`,
}

var feedNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next candidate event",
	RunE:  runFeedNext,
}

var feedLikeCmd = &cobra.Command{
	Use:   "like",
	Short: "Like the current candidate and show the next one",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFeedAction(cmd, domain.ActionLike)
	},
}

var feedSkipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip the current candidate and show the next one",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFeedAction(cmd, domain.ActionSkip)
	},
}

var feedTownsCmd = &cobra.Command{
	Use:   "towns [prefix]",
	Short: "List towns, or suggest towns starting with prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFeedTowns,
}

func init() {
	for _, c := range []*cobra.Command{feedNextCmd, feedLikeCmd, feedSkipCmd} {
		c.Flags().String("town", "", "town name (defaults to DEFAULT_TOWN)")
	}

	feedCmd.AddCommand(feedNextCmd)
	feedCmd.AddCommand(feedLikeCmd)
	feedCmd.AddCommand(feedSkipCmd)
	feedCmd.AddCommand(feedTownsCmd)

	rootCmd.AddCommand(feedCmd)
}

func openFeed(ctx context.Context, cmd *cobra.Command, client *app.Client) (*screens.Feed, error) {
	town, _ := cmd.Flags().GetString("town")
	if town == "" {
		town = client.DefaultTown()
	}
	feed := screens.NewFeed(client.Deps(), "")
	if err := feed.SetTown(ctx, town); err != nil {
		feed.Unmount()
		return nil, err
	}
	return feed, nil
}

func printCandidate(st screens.FeedState) error {
	if jsonOut {
		return printJSON(map[string]any{
			"town":                st.Town,
			"event":               st.Current,
			"no_events_available": st.NoEventsAvailable,
		})
	}
	if st.Current == nil {
		fmt.Printf("No events available in %s\n", st.Town)
		return nil
	}
	return printEvent(*st.Current)
}

func runFeedNext(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		feed, err := openFeed(ctx, cmd, client)
		if err != nil {
			return err
		}
		defer feed.Unmount()
		return printCandidate(feed.State())
	})
}

func runFeedAction(cmd *cobra.Command, action domain.FeedAction) error {
	return withClient(cmd, func(ctx context.Context, client *app.Client) error {
		feed, err := openFeed(ctx, cmd, client)
		if err != nil {
			return err
		}
		defer feed.Unmount()

		current := feed.State().Current
		if current == nil {
			return printCandidate(feed.State())
		}
		if action == domain.ActionLike {
			err = feed.Like(ctx)
		} else {
			err = feed.Skip(ctx)
		}
		if err != nil {
			return err
		}
		if !jsonOut {
			fmt.Printf("%s: %s\n\n", action, current.Title)
		}
		return printCandidate(feed.State())
	})
}

// runFeedTowns reads the registry only; no login is needed.
func runFeedTowns(_ *cobra.Command, args []string) error {
	path, err := townsFile()
	if err != nil {
		return err
	}
	reg, err := towns.Load(path)
	if err != nil {
		return err
	}
	names := reg.Names()
	if len(args) == 1 {
		names = reg.Suggest(args[0])
	}
	if jsonOut {
		return printJSON(map[string]any{"towns": names, "count": len(names)})
	}
	if len(names) == 0 {
		fmt.Println("No matching towns")
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
