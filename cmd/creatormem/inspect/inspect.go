// Package inspectcmder provides the inspect command, which fetches a user's
// memory from a running creatormem server and renders it in the terminal.
package inspectcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/creatormem/api"
	"github.com/papercomputeco/creatormem/pkg/cliui"
	"github.com/papercomputeco/creatormem/pkg/config"
	"github.com/papercomputeco/creatormem/pkg/record"
	"github.com/papercomputeco/creatormem/pkg/utils"
)

const (
	requestTimeout = 10 * time.Second
	maxValueLen    = 60
)

type inspectCommander struct {
	flags config.FlagSet

	apiTarget string
	showAll   bool
	raw       bool

	client *http.Client
}

var inspectFlags = config.FlagSet{
	config.FlagAPITarget: {
		Name:        "api-target",
		Shorthand:   "a",
		ViperKey:    "client.api_target",
		Description: "creatormem API server URL",
	},
}

const inspectLongDesc string = `Inspect the memory of a user.

Fetches the user record from a running creatormem server and prints the
active facts, the profile summary, recent interactions and the
recommendations derived from the profile.

Examples:
  creatormem inspect u1
  creatormem inspect u1 --all
  creatormem inspect u1 --json --api-target http://localhost:8081`

const inspectShortDesc string = "Inspect the memory of a user"

func NewInspectCmd() *cobra.Command {
	cmder := &inspectCommander{
		flags:  inspectFlags,
		client: &http.Client{Timeout: requestTimeout},
	}

	cmd := &cobra.Command{
		Use:   "inspect <user-id>",
		Short: inspectShortDesc,
		Long:  inspectLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, []string{config.FlagAPITarget})
			cmder.apiTarget = v.GetString("client.api_target")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, cmd.OutOrStdout(), args[0])
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().BoolVar(&cmder.showAll, "all", false, "Include superseded facts and the full history")
	cmd.Flags().BoolVar(&cmder.raw, "json", false, "Print the raw JSON response")

	return cmd
}

func (c *inspectCommander) run(ctx context.Context, w io.Writer, userID string) error {
	var (
		resp *api.GetResponse
		body []byte
	)
	err := cliui.Step(w, "Fetching memory for "+userID, func() error {
		var err error
		resp, body, err = c.fetch(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}

	if c.raw {
		fmt.Fprintln(w, string(body))
		return nil
	}

	return c.render(w, resp)
}

func (c *inspectCommander) fetch(ctx context.Context, userID string) (*api.GetResponse, []byte, error) {
	endpoint, err := url.JoinPath(c.apiTarget, api.UserMemoryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid api target %q: %w", c.apiTarget, err)
	}
	endpoint += "?userId=" + url.QueryEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching user memory: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, nil, fmt.Errorf("server returned HTTP %d: %s", res.StatusCode, apiErr.Error)
		}
		return nil, nil, fmt.Errorf("server returned HTTP %d", res.StatusCode)
	}

	out := &api.GetResponse{}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, nil, fmt.Errorf("decoding response: %w", err)
	}
	if out.User == nil {
		return nil, nil, fmt.Errorf("response carries no user record")
	}
	return out, body, nil
}

func (c *inspectCommander) render(w io.Writer, resp *api.GetResponse) error {
	user := resp.User

	fmt.Fprintf(w, "\n  %s %s\n", cliui.KeyStyle.Render("User"), cliui.ValueStyle.Render(user.UserID))
	fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("created %s, updated %s",
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)))

	fmt.Fprintf(w, "  %s\n", cliui.StepStyle.Render("Facts"))
	shown := 0
	for _, f := range user.Facts {
		if f.Superseded && !c.showAll {
			continue
		}
		shown++
		line := fmt.Sprintf("%s  %s", cliui.KeyStyle.Render(f.Category), cliui.ValueStyle.Render(formatValue(f.Value)))
		if f.Source != nil {
			line += "  " + cliui.DimStyle.Render("from "+*f.Source)
		}
		if f.Superseded {
			line += "  " + cliui.WarnStyle.Render("superseded")
		}
		fmt.Fprintf(w, "    %s\n", line)
	}
	if shown == 0 {
		fmt.Fprintf(w, "    %s\n", cliui.DimStyle.Render("<none>"))
	}

	fmt.Fprintf(w, "\n  %s\n", cliui.StepStyle.Render("Profile"))
	for _, field := range record.ProfileFields {
		fmt.Fprint(w, "  ")
		cliui.KeyValue(w, field, profileValue(user.Profile, field))
	}

	fmt.Fprintf(w, "\n  %s %s\n", cliui.StepStyle.Render("Interactions"),
		cliui.DimStyle.Render(fmt.Sprintf("(%d)", len(user.Interactions))))
	for _, ev := range recent(user.Interactions, c.showAll) {
		fmt.Fprintf(w, "    %s  %s  %s\n",
			cliui.DimStyle.Render(ev.Timestamp.Format(time.RFC3339)),
			cliui.KeyStyle.Render(ev.Type),
			cliui.ValueStyle.Render(formatValue(ev.Data)),
		)
	}

	if c.showAll && len(user.History) > 0 {
		fmt.Fprintf(w, "\n  %s\n", cliui.StepStyle.Render("History"))
		for _, h := range user.History {
			fmt.Fprintf(w, "    %s  %s  %s\n",
				cliui.DimStyle.Render(h.Timestamp.Format(time.RFC3339)),
				cliui.KeyStyle.Render(h.Type),
				cliui.ValueStyle.Render(describeHistory(h)),
			)
		}
	}

	fmt.Fprintln(w)
	if len(resp.Recommendations) == 0 {
		fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render("No recommendations."))
		return nil
	}

	rendered, err := cliui.RenderMarkdown(recommendationsMarkdown(resp.Recommendations))
	if err != nil {
		return fmt.Errorf("rendering recommendations: %w", err)
	}
	fmt.Fprint(w, rendered)
	return nil
}

// recent returns the last five interactions unless all is set.
func recent(events []record.InteractionEvent, all bool) []record.InteractionEvent {
	const n = 5
	if all || len(events) <= n {
		return events
	}
	return events[len(events)-n:]
}

func recommendationsMarkdown(recs []record.Recommendation) string {
	var b strings.Builder
	b.WriteString("## Recommendations\n\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", r.Type, r.Priority, r.Message)
	}
	return b.String()
}

func describeHistory(h record.HistoryEntry) string {
	switch h.Type {
	case record.HistoryFactConflict:
		return fmt.Sprintf("%s: %s -> %s", h.Category, formatValue(h.Old), formatValue(h.New))
	case record.HistoryProfileEvolution:
		fields := make([]string, 0, len(h.Changes))
		for field := range h.Changes {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return strings.Join(fields, ", ")
	}
	return ""
}

func profileValue(p record.ProfileSummary, field string) string {
	switch v := p.Value(field).(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
		return formatValue(v)
	}
	return ""
}

// formatValue renders v as compact JSON, truncated for display.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return utils.Truncate(s, maxValueLen)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return utils.Truncate(string(data), maxValueLen)
}
