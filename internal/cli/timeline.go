package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	timelines "github.com/anatolykoptev/go-timelines"
)

type fetchFunc func(ctx context.Context, c timelines.Client, args []string, q timelines.PageQuery) (*timelines.Page, error)

func timelineCommand(use, short string, nargs int, fetch fetchFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			return runTimeline(cmd.Context(), args, timelines.PageQuery{Count: count, FirstLoad: true}, fetch)
		},
	}
	cmd.Flags().IntP("count", "n", 20, "Posts per page")
	return cmd
}

func init() {
	RootCmd.AddCommand(
		timelineCommand("home", "Print the home timeline", 0,
			func(ctx context.Context, c timelines.Client, _ []string, q timelines.PageQuery) (*timelines.Page, error) {
				return c.GetHomeTimeline(ctx, q)
			}),
		timelineCommand("mentions", "Print the mentions timeline", 0,
			func(ctx context.Context, c timelines.Client, _ []string, q timelines.PageQuery) (*timelines.Page, error) {
				return c.GetMentionsTimeline(ctx, q)
			}),
		timelineCommand("favorites", "Print favorited posts", 0,
			func(ctx context.Context, c timelines.Client, _ []string, q timelines.PageQuery) (*timelines.Page, error) {
				return c.GetFavoritesTimeline(ctx, q)
			}),
		timelineCommand("list <list-id>", "Print a list timeline", 1,
			func(ctx context.Context, c timelines.Client, args []string, q timelines.PageQuery) (*timelines.Page, error) {
				return c.GetListTimeline(ctx, args[0], q)
			}),
		timelineCommand("search <query>", "Print search results", 1,
			func(ctx context.Context, c timelines.Client, args []string, q timelines.PageQuery) (*timelines.Page, error) {
				return c.GetSearchTimeline(ctx, args[0], q)
			}),
	)
}

func runTimeline(ctx context.Context, args []string, q timelines.PageQuery, fetch fetchFunc) error {
	c, err := openContainer()
	if err != nil {
		return err
	}
	a, err := selectAccount(c)
	if err != nil {
		return err
	}
	page, err := fetch(ctx, a.Client(), args, q)
	if err != nil {
		return err
	}
	writePosts(os.Stdout, page.Posts)
	if page.Bottom == nil {
		fmt.Fprintln(os.Stderr, "(end of timeline)")
	}
	return nil
}
