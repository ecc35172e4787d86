package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	"geodigest/internal/config"
	"geodigest/internal/email"
	"geodigest/internal/feeds"
	"geodigest/internal/fetch"
	"geodigest/internal/logger"

	"github.com/spf13/cobra"
)

// probeURLs are tried in order by the reachability check; one success passes
var probeURLs = []string{
	"https://www.esri.com/arcgis-blog/overview/",
	"https://arxiv.org/list/cs.AI/recent",
}

const (
	checkFeedCount    = 2
	checkProbeTimeout = 10 * time.Second
)

// selfCheck is one named step of the self-test
type selfCheck struct {
	name string
	run  func(context.Context, io.Writer) error
}

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify SMTP, feed parsing and connectivity",
		Long: `Run the system self-test:
1. SMTP connection, STARTTLS and login
2. Parsing of the first two daily feeds
3. HTTP reachability of a content page
4. A test email (with --send-test)

Examples:
  geodigest check
  geodigest check --send-test`,
		Args: cobra.NoArgs,
		RunE: checkRun,
	}

	cmd.Flags().Bool("send-test", false, "Send a test email after the checks")

	return cmd
}

func checkRun(cmd *cobra.Command, args []string) error {
	sendTest, _ := cmd.Flags().GetBool("send-test")

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	client := fetch.NewClient(cfg.Feeds.UserAgent)
	sender := email.NewSMTPSender(cfg.Email, logger.Component("smtp"))

	checks := []selfCheck{
		{"Email connection", func(ctx context.Context, w io.Writer) error { return sender.Verify(ctx) }},
		{"Feed parsing", func(ctx context.Context, w io.Writer) error { return checkFeeds(ctx, w, cfg, client) }},
		{"Content access", func(ctx context.Context, w io.Writer) error { return checkProbe(ctx, w, client, probeURLs) }},
	}
	if sendTest {
		checks = append(checks, selfCheck{"Test email", func(ctx context.Context, w io.Writer) error {
			return sendTestEmail(ctx, sender)
		}})
	}

	failed := 0
	for _, c := range checks {
		fmt.Fprintf(out, "Testing %s...\n", c.name)
		if err := c.run(ctx, out); err != nil {
			fmt.Fprintf(out, "✗ %s test FAILED: %v\n", c.name, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "✓ %s test PASSED\n", c.name)
	}

	fmt.Fprintf(out, "\n%d/%d checks passed\n", len(checks)-failed, len(checks))
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// checkFeeds passes when at least one of the first daily feeds has entries
func checkFeeds(ctx context.Context, w io.Writer, cfg *config.Config, client *fetch.Client) error {
	srcs := cfg.Digests.Daily.SourceList()
	if len(srcs) > checkFeedCount {
		srcs = srcs[:checkFeedCount]
	}
	if len(srcs) == 0 {
		return fmt.Errorf("no daily sources configured")
	}

	reader := feeds.NewReader(client, cfg.Feeds.TimeoutDuration())
	ok := 0
	for _, src := range srcs {
		entries, err := reader.Read(ctx, src.URL)
		switch {
		case err != nil:
			logger.Warn("Feed check failed", "url", src.URL, "error", err)
			fmt.Fprintf(w, "  ✗ Failed to parse feed '%s': %v\n", src.URL, err)
		case len(entries) == 0:
			fmt.Fprintf(w, "  ✗ Feed '%s' has no entries\n", src.URL)
		default:
			fmt.Fprintf(w, "  ✓ Feed '%s' has %d entries\n", src.URL, len(entries))
			ok++
		}
	}
	if ok == 0 {
		return fmt.Errorf("no feed could be parsed")
	}
	return nil
}

// checkProbe passes on the first URL that answers with a 2xx status
func checkProbe(ctx context.Context, w io.Writer, client *fetch.Client, urls []string) error {
	var lastErr error
	for _, u := range urls {
		if _, err := client.Get(ctx, u, checkProbeTimeout); err != nil {
			fmt.Fprintf(w, "  ✗ Failed to access %s: %v\n", u, err)
			lastErr = err
			continue
		}
		fmt.Fprintf(w, "  ✓ Successfully accessed %s\n", u)
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no probe URLs")
	}
	return lastErr
}

func sendTestEmail(ctx context.Context, sender *email.SMTPSender) error {
	now := time.Now()
	html := fmt.Sprintf(`<html>
<body>
    <h2>Test Email from AI &amp; GIS Daily Digest System</h2>
    <p>This is a test email sent at %s</p>
    <p>If you received this, the email system is working correctly!</p>
</body>
</html>`, now.Format("2006-01-02 15:04:05"))

	msg := sender.NewMessage("Test: AI & GIS Daily Digest System", html)
	msg.Date = now
	return sender.Send(ctx, msg)
}
