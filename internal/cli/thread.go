package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	timelines "github.com/anatolykoptev/go-timelines"
)

func init() {
	cmd := &cobra.Command{
		Use:   "thread <post-id>",
		Short: "Print the conversation around a post",
		Args:  cobra.ExactArgs(1),
		RunE:  runThread,
	}
	cmd.Flags().String("network", "twitter", "Network of the id: twitter or misskey")
	RootCmd.AddCommand(cmd)
}

func postIDArg(network, raw string) (timelines.PostID, error) {
	switch strings.ToLower(network) {
	case "twitter", "x":
		return timelines.TwitterStatusID(raw), nil
	case "misskey":
		return timelines.MisskeyNoteID(raw), nil
	}
	return timelines.PostID{}, fmt.Errorf("unknown network %q", network)
}

func runThread(cmd *cobra.Command, args []string) error {
	network, _ := cmd.Flags().GetString("network")
	id, err := postIDArg(network, args[0])
	if err != nil {
		return err
	}
	c, err := openContainer()
	if err != nil {
		return err
	}
	a, ok := c.ForPost(id, accountArg)
	if !ok {
		return fmt.Errorf("no account can read %s: %w", id, timelines.ErrNotSupported)
	}

	ctx := cmd.Context()
	target, err := a.Client().GetPostByID(ctx, id, true)
	if err != nil {
		return err
	}
	related, err := a.Client().GetRelatedPosts(ctx, target, true)
	var partial *timelines.PartialError
	if errors.As(err, &partial) {
		fmt.Fprintf(os.Stderr, "thread incomplete: %v\n", partial.Err)
	} else if err != nil {
		return err
	}
	writePosts(os.Stdout, related)
	return nil
}
