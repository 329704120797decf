package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pyittinehtaung/pth-client/internal/model/chat"
	"github.com/pyittinehtaung/pth-client/internal/service/send"
	"github.com/pyittinehtaung/pth-client/internal/service/session"
	"github.com/pyittinehtaung/pth-client/internal/service/upload"
	"github.com/pyittinehtaung/pth-client/internal/store"
	"github.com/pyittinehtaung/pth-client/internal/transport"
)

var (
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	strongStyle = lipgloss.NewStyle().Bold(true)
)

var strongRE = regexp.MustCompile(`<strong>(.*?)</strong>`)

// unescaper inverts the renderer's escape step for terminal display.
// The &amp; entity must be handled first so double-escaped text survives.
var unescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// displayText converts the persisted safe-markup form of an assistant
// message back to terminal text: line breaks, bold styling, then entities.
func displayText(s string) string {
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strongRE.ReplaceAllStringFunc(s, func(m string) string {
		return strongStyle.Render(strongRE.FindStringSubmatch(m)[1])
	})
	return unescaper.Replace(s)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Starts an interactive conversation against the backend. Sessions and
messages persist across restarts.

In-chat commands:
  /new             start a fresh session
  /list            list sessions
  /switch <n|id>   activate a session
  /delete [n|id]   delete a session (default: active)
  /upload <path>   analyze a screenshot in this conversation
  /quit            exit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// wsBackend swaps the streaming half of the transport for a websocket.
type wsBackend struct {
	*transport.Client
	ws *transport.WSStreamer
}

func (b wsBackend) ChatStream(ctx context.Context, message string, onFragment func(string)) error {
	return b.ws.ChatStream(ctx, message, onFragment)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	adapter, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer adapter.Close()

	sessions := session.NewStore(adapter)
	sessions.Init(ctx)

	client := newClient(cfg)
	client.SetSessionID(sessions.ActiveID())

	var backend send.Converser = client
	if cfg.Backend.StreamWSURL != "" {
		backend = wsBackend{
			Client: client,
			ws: transport.NewWSStreamer(cfg.Backend.StreamWSURL,
				cfg.Backend.IdleTimeout, cfg.Backend.LangHint, cfg.Backend.AllowAI),
		}
	}

	guard := send.NewGuard(cfg.Send.DuplicateWindow)
	pipe := send.New(sessions, guard, backend, send.Options{
		Streaming: cfg.Send.Streaming,
		LangHint:  cfg.Backend.LangHint,
	})
	uploads := upload.New(sessions, client)

	printSession(sessions)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(userStyle.Render("you> "))
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "/") {
			if quit := runChatCommand(ctx, line, sessions, client, uploads); quit {
				return nil
			}
			continue
		}

		if err := pipe.Send(ctx, line); err != nil {
			if errors.Is(err, send.ErrEmptyMessage) || errors.Is(err, send.ErrSendRejected) {
				continue
			}
			fmt.Println(dimStyle.Render(err.Error()))
			continue
		}
		printLastReply(sessions)
	}
}

func runChatCommand(ctx context.Context, line string, sessions *session.Store, client *transport.Client, uploads *upload.Flow) (quit bool) {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/new":
		id := sessions.CreateSession(ctx)
		client.SetSessionID(id)
		printSession(sessions)
	case "/list":
		for i, sess := range sessions.Sessions() {
			marker := " "
			if sess.ID == sessions.ActiveID() {
				marker = "*"
			}
			fmt.Printf("%s %2d  %s  %s\n", marker, i+1, sess.CreatedAt.Format("2006-01-02 15:04"), sess.Title)
		}
	case "/switch":
		if id, ok := resolveSession(sessions, arg); ok {
			sessions.SetActive(ctx, id)
			client.SetSessionID(id)
			printSession(sessions)
		} else {
			fmt.Println(dimStyle.Render("no such session"))
		}
	case "/delete":
		id := sessions.ActiveID()
		if arg != "" {
			var ok bool
			if id, ok = resolveSession(sessions, arg); !ok {
				fmt.Println(dimStyle.Render("no such session"))
				return false
			}
		}
		sessions.DeleteSession(ctx, id)
		client.SetSessionID(sessions.ActiveID())
		printSession(sessions)
	case "/upload":
		if arg == "" {
			fmt.Println(dimStyle.Render("usage: /upload <path>"))
			return false
		}
		f, err := os.Open(arg)
		if err != nil {
			fmt.Println(dimStyle.Render(err.Error()))
			return false
		}
		err = uploads.Run(ctx, arg, f)
		f.Close()
		if err != nil {
			fmt.Println(dimStyle.Render(err.Error()))
			return false
		}
		printLastReply(sessions)
	default:
		fmt.Println(dimStyle.Render("unknown command " + fields[0]))
	}
	return false
}

// resolveSession accepts a 1-based list index or a session id.
func resolveSession(sessions *session.Store, arg string) (string, bool) {
	all := sessions.Sessions()
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(all) {
			return all[n-1].ID, true
		}
		return "", false
	}
	for _, sess := range all {
		if sess.ID == arg {
			return sess.ID, true
		}
	}
	return "", false
}

func printSession(sessions *session.Store) {
	sess, err := sessions.Session(sessions.ActiveID())
	if err != nil {
		return
	}
	fmt.Println(dimStyle.Render("── " + sess.Title + " ──"))
	for _, msg := range sess.Messages {
		printMessage(msg)
	}
}

func printLastReply(sessions *session.Store) {
	sess, err := sessions.Session(sessions.ActiveID())
	if err != nil || len(sess.Messages) == 0 {
		return
	}
	printMessage(sess.Messages[len(sess.Messages)-1])
}

func printMessage(msg chat.Message) {
	if msg.Role == chat.RoleUser {
		fmt.Println(userStyle.Render("you: ") + msg.Text)
		return
	}
	fmt.Println(botStyle.Render("pth: ") + displayText(msg.Text))
}
