package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"chat-client/auth"
	"chat-client/observability"
	"chat-client/projection"
	"chat-client/session"
	"chat-client/transport"
	"chat-client/view"
	"chat-client/workers"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return exitConfig
	}
	if err := run(config); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		return exitRuntime
	}
	return exitOK
}

// run initializes all components, manages the session lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the session and background workers.
func run(config Config) error {
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Resolve who we are
	identity, err := resolveIdentity(config)
	if err != nil {
		return err
	}

	// 3. Session, projection boundary, supervision
	trans := transport.NewWebSocket(config.ServerURL, log)
	sess := session.New(log, trans, identity, config.ReconnectWait, config.SinkTimeout)
	v := view.New(sess)

	sup := workers.NewSupervisor(log)
	sup.Add(sess, observability.NewDiagnosticsWorker(log, sess, config.StatsInterval))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	go renderLoop(ctx, v)
	go noticeLoop(ctx, v)
	// stdin closing (Ctrl-D) ends the chat like a signal would
	go readLoop(ctx, stop, v)

	fmt.Printf("Connected as %s, chatting with %s. Ctrl-D to leave.\n",
		identity.Username, config.OtherUserID)

	// 5. Wait for Stop
	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	sup.Stop()
	select {
	case <-supDone:
	case <-time.After(5 * time.Second):
		log.Warn("Workers did not stop in time")
	}

	printSummary(sess)
	log.Info("Program stopped cleanly")
	return nil
}

// resolveIdentity prefers the login token; explicit env vars are the
// fallback for local development against a relay without auth.
func resolveIdentity(config Config) (transport.Identity, error) {
	local := auth.Identity{UserID: config.UserID, Username: config.Username}
	if config.Token != "" {
		var err error
		if local, err = auth.IdentityFromToken(config.Token); err != nil {
			return transport.Identity{}, err
		}
	} else if err := auth.Validate(local); err != nil {
		return transport.Identity{}, err
	}
	return transport.Identity{
		UserID:      local.UserID,
		OtherUserID: config.OtherUserID,
		Username:    local.Username,
	}, nil
}

// renderLoop prints messages as they arrive, with a colored sender header
// whenever the sender changes, mirroring how the log groups on screen.
func renderLoop(ctx context.Context, v *view.ChatView) {
	printed := 0
	lastSender := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.Changes():
		}

		messages := projection.Flatten(v.GroupedMessages())
		for ; printed < len(messages); printed++ {
			msg := messages[printed]
			if msg.SenderUsername != lastSender {
				lastSender = msg.SenderUsername
				header := fmt.Sprintf("--- %s · %s ---", msg.SenderUsername,
					projection.FormatTimestamp(time.Now(), msg.Timestamp))
				fmt.Println(color.New(color.FgCyan).Render(header))
			}
			fmt.Println(msg.Text)
		}
	}
}

func noticeLoop(ctx context.Context, v *view.ChatView) {
	for {
		select {
		case <-ctx.Done():
			return
		case notice := <-v.Notices():
			warning := fmt.Sprintf("Not sent (%v): %s", notice.Err, notice.Text)
			fmt.Println(color.New(color.FgYellow).Render(warning))
		}
	}
}

func readLoop(ctx context.Context, stop context.CancelFunc, v *view.ChatView) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if err := v.Send(scanner.Text()); err != nil {
			return
		}
	}
	stop()
}

// printSummary renders a per-sender message count table on the way out.
func printSummary(sess *session.Session) {
	counts := projection.CountBySender(sess.Snapshot())
	if len(counts) == 0 {
		return
	}

	senders := make([]string, 0, len(counts))
	for sender := range counts {
		senders = append(senders, sender)
	}
	sort.Strings(senders)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Sender", "Messages"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, sender := range senders {
		table.Append([]string{sender, strconv.Itoa(counts[sender])})
	}
	table.Render()
}
