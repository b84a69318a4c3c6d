package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	timelines "github.com/anatolykoptev/go-timelines"
	"github.com/anatolykoptev/go-timelines/quota"
)

var now = time.Now

func writePosts(w io.Writer, posts []*timelines.Post) {
	for _, p := range posts {
		fmt.Fprintln(w, formatPost(p, now()))
	}
}

// formatPost renders one post as a header line and indented text.
func formatPost(p *timelines.Post, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s", p.ScreenName)
	if p.Nickname != "" {
		fmt.Fprintf(&b, " (%s)", p.Nickname)
	}
	fmt.Fprintf(&b, " · %s", humanize.RelTime(p.CreatedAt, at, "ago", "from now"))
	if p.IsRetweet() {
		fmt.Fprintf(&b, " · reshared by @%s", p.RetweetedBy)
	}
	if p.IsReply && p.InReplyToUser != "" {
		fmt.Fprintf(&b, " · reply to @%s", p.InReplyToUser)
	}
	if p.IsFav {
		b.WriteString(" ★")
	}
	b.WriteString("\n")
	for _, line := range strings.Split(p.Text, "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if p.PostURI != "" {
		b.WriteString("    ")
		b.WriteString(p.PostURI)
		b.WriteString("\n")
	}
	return b.String()
}

// writeLimits prints one row per known endpoint. EXHAUSTED is "-" unless the
// endpoint is blocked until its reset.
func writeLimits(out io.Writer, reg *quota.Registry, at time.Time) error {
	snap := reg.Snapshot()
	endpoints := make([]string, 0, len(snap))
	for e := range snap {
		endpoints = append(endpoints, e)
	}
	sort.Strings(endpoints)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENDPOINT\tREMAINING\tLIMIT\tRESET\tEXHAUSTED")
	for _, e := range endpoints {
		l := snap[e]
		until := "-"
		if reg.Exhausted(e) {
			until = "until " + humanize.RelTime(reg.AvailableAt(e), at, "ago", "from now")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e,
			humanize.Comma(int64(l.Remaining)), humanize.Comma(int64(l.Limit)),
			humanize.RelTime(l.ResetAt, at, "ago", "from now"), until)
	}
	return w.Flush()
}
