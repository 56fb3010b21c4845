package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/countdown/internal/server/models"
)

const dateLayout = "2006-01-02 15:04"

// RenderTimers writes one row per timer with its countdown at now.
func RenderTimers(w io.Writer, timers []models.Timer, now time.Time) {
	if len(timers) == 0 {
		fmt.Fprintln(w, "No timers yet. Use 'create' to add one.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDAYS\tREMAINING\tENDS\tID")
	for _, t := range timers {
		remaining := "expired"
		if t.State(now) == models.StateRunning {
			remaining = t.Countdown(now).String()
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", t.Name, t.Days, remaining, t.EndDate.Local().Format(dateLayout), t.ID)
	}
	_ = tw.Flush()
}
